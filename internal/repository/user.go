package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketgo/storefront-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpgradeToSeller(ctx context.Context, id uuid.UUID, storeName, storeDescription string) error
}

type pgUserRepo struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepo{pool: pool}
}

const userColumns = `id, email, password_hash, name, role, active, store_name, store_description, is_verified, created_at, updated_at`

func (r *pgUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.New()
	query := `INSERT INTO users (id, email, password_hash, name, role, active, store_name, store_description, is_verified, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.Password, user.Name, user.Role,
		user.Active, user.StoreName, user.StoreDescription, user.IsVerified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user := &model.User{}
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).Scan(
		&user.ID, &user.Email, &user.Password, &user.Name, &user.Role, &user.Active,
		&user.StoreName, &user.StoreDescription, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email).Scan(
		&user.ID, &user.Email, &user.Password, &user.Name, &user.Role, &user.Active,
		&user.StoreName, &user.StoreDescription, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) UpgradeToSeller(ctx context.Context, id uuid.UUID, storeName, storeDescription string) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, store_name = $3, store_description = $4, updated_at = NOW() WHERE id = $1`,
		id, model.RoleSeller, storeName, storeDescription,
	)
	if err != nil {
		return fmt.Errorf("upgrade to seller: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
