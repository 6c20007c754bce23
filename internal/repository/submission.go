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

type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	// Decide records the moderation outcome; it participates in the approve
	// transaction so the submission update and the product insert commit as one.
	Decide(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.SubmissionStatus, feedback string) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Submission, error)
	ListByStatus(ctx context.Context, status model.SubmissionStatus) ([]model.Submission, error)
	CountsBySeller(ctx context.Context, sellerID uuid.UUID) (pending, approved, rejected int, err error)
}

type pgSubmissionRepo struct{ pool *pgxpool.Pool }

func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &pgSubmissionRepo{pool: pool}
}

const submissionColumns = `s.id, s.seller_id, s.title, s.description, s.price, s.category, s.image, s.stock,
	s.status, s.admin_feedback, s.created_at, s.updated_at, u.name, u.email, u.store_name`

func (r *pgSubmissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	sub.ID = uuid.New()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO submissions (id, seller_id, title, description, price, category, image, stock, status, admin_feedback, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '', NOW(), NOW())
		 RETURNING created_at, updated_at`,
		sub.ID, sub.SellerID, sub.Title, sub.Description, sub.Price,
		sub.Category, sub.Image, sub.Stock, sub.Status,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	s := &model.Submission{}
	err := row.Scan(
		&s.ID, &s.SellerID, &s.Title, &s.Description, &s.Price, &s.Category, &s.Image, &s.Stock,
		&s.Status, &s.AdminFeedback, &s.CreatedAt, &s.UpdatedAt,
		&s.SellerName, &s.SellerEmail, &s.SellerStoreName,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	s, err := scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions s JOIN users u ON u.id = s.seller_id WHERE s.id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return s, nil
}

func (r *pgSubmissionRepo) Decide(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.SubmissionStatus, feedback string) error {
	ct, err := tx.Exec(ctx,
		`UPDATE submissions SET status = $2, admin_feedback = $3, updated_at = NOW() WHERE id = $1`,
		id, status, feedback,
	)
	if err != nil {
		return fmt.Errorf("decide submission: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgSubmissionRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Submission, error) {
	return r.listWhere(ctx, `WHERE s.seller_id = $1`, sellerID)
}

func (r *pgSubmissionRepo) ListByStatus(ctx context.Context, status model.SubmissionStatus) ([]model.Submission, error) {
	return r.listWhere(ctx, `WHERE s.status = $1`, status)
}

func (r *pgSubmissionRepo) listWhere(ctx context.Context, where string, arg any) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions s JOIN users u ON u.id = s.seller_id `+
			where+` ORDER BY s.created_at DESC`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, *s)
	}
	return subs, nil
}

func (r *pgSubmissionRepo) CountsBySeller(ctx context.Context, sellerID uuid.UUID) (pending, approved, rejected int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected')
		 FROM submissions WHERE seller_id = $1`,
		sellerID,
	).Scan(&pending, &approved, &rejected)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("count submissions: %w", err)
	}
	return pending, approved, rejected, nil
}
