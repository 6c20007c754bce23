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

// ErrInsufficientStock is returned when a conditional stock decrement matches
// no row (product missing or stock below the requested quantity).
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Limit    int
	Offset   int
	Search   string
	Category string
	Featured *bool
	SellerID *uuid.UUID
	Sort     string
	Order    string
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	CreateTx(ctx context.Context, tx pgx.Tx, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, f ProductFilter) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountBySeller(ctx context.Context, sellerID uuid.UUID) (int, error)

	DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) error
	// RestoreStock adds quantity back and reports whether the product still
	// exists; a product deleted out-of-band is skipped, not fatal.
	RestoreStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) (bool, error)

	UpsertReview(ctx context.Context, tx pgx.Tx, review *model.Review) error
	RecomputeRating(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (float64, int, error)
	ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, title, description, price, category, image, stock, rating_rate, rating_count,
	is_featured, is_custom, source, seller_id, store_name, submission_id, created_at, updated_at`

const insertProduct = `INSERT INTO products (id, title, description, price, category, image, stock,
	rating_rate, rating_count, is_featured, is_custom, source, seller_id, store_name, submission_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	RETURNING created_at, updated_at`

func (r *pgProductRepo) Create(ctx context.Context, p *model.Product) error {
	p.ID = uuid.New()
	err := r.pool.QueryRow(ctx, insertProduct,
		p.ID, p.Title, p.Description, p.Price, p.Category, p.Image, p.Stock,
		p.RatingRate, p.RatingCount, p.IsFeatured, p.IsCustom, p.Source,
		p.SellerID, p.StoreName, p.SubmissionID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) CreateTx(ctx context.Context, tx pgx.Tx, p *model.Product) error {
	p.ID = uuid.New()
	err := tx.QueryRow(ctx, insertProduct,
		p.ID, p.Title, p.Description, p.Price, p.Category, p.Image, p.Stock,
		p.RatingRate, p.RatingCount, p.IsFeatured, p.IsCustom, p.Source,
		p.SellerID, p.StoreName, p.SubmissionID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.Image, &p.Stock,
		&p.RatingRate, &p.RatingCount, &p.IsFeatured, &p.IsCustom, &p.Source,
		&p.SellerID, &p.StoreName, &p.SubmissionID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context, f ProductFilter) ([]model.Product, int, error) {
	allowedSorts := map[string]bool{"title": true, "price": true, "rating_rate": true, "created_at": true}
	if !allowedSorts[f.Sort] {
		f.Sort = "created_at"
	}
	if f.Order != "asc" && f.Order != "desc" {
		f.Order = "desc"
	}

	where := `WHERE ($1 = '' OR title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		AND ($2 = '' OR category = $2)
		AND ($3::boolean IS NULL OR is_featured = $3)
		AND ($4::uuid IS NULL OR seller_id = $4)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where,
		f.Search, f.Category, f.Featured, f.SellerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY %s %s LIMIT $5 OFFSET $6`,
		productColumns, where, f.Sort, f.Order)

	rows, err := r.pool.Query(ctx, query, f.Search, f.Category, f.Featured, f.SellerID, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, total, nil
}

func (r *pgProductRepo) Update(ctx context.Context, p *model.Product) error {
	query := `UPDATE products SET title=$2, description=$3, price=$4, category=$5, image=$6, stock=$7,
			  is_featured=$8, updated_at=NOW() WHERE id=$1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.Title, p.Description, p.Price, p.Category, p.Image, p.Stock, p.IsFeatured,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) CountBySeller(ctx context.Context, sellerID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE seller_id = $1`, sellerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count seller products: %w", err)
	}
	return count, nil
}

func (r *pgProductRepo) DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) error {
	ct, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productID, ErrInsufficientStock)
	}
	return nil
}

func (r *pgProductRepo) RestoreStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) (bool, error) {
	ct, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return false, fmt.Errorf("restore stock: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgProductRepo) UpsertReview(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	query := `INSERT INTO product_reviews (product_id, user_id, user_name, rating, comment, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			  ON CONFLICT (product_id, user_id)
			  DO UPDATE SET user_name = $3, rating = $4, comment = $5, updated_at = NOW()
			  RETURNING created_at, updated_at`
	err := tx.QueryRow(ctx, query,
		review.ProductID, review.UserID, review.UserName, review.Rating, review.Comment,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	return nil
}

func (r *pgProductRepo) RecomputeRating(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (float64, int, error) {
	var rate float64
	var count int
	err := tx.QueryRow(ctx,
		`UPDATE products SET
			rating_rate = COALESCE((SELECT AVG(rating)::float8 FROM product_reviews WHERE product_id = $1), 0),
			rating_count = (SELECT COUNT(*) FROM product_reviews WHERE product_id = $1),
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING rating_rate, rating_count`,
		productID,
	).Scan(&rate, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("recompute rating: %w", err)
	}
	return rate, count, nil
}

func (r *pgProductRepo) ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, user_id, user_name, rating, comment, created_at, updated_at
		 FROM product_reviews WHERE product_id = $1 ORDER BY created_at DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, nil
}
