package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketgo/storefront-api/internal/model"
)

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Limit  int
	Offset int
	Status model.OrderStatus
	UserID *uuid.UUID
}

// StatusUpdate captures a single status transition and its side fields.
type StatusUpdate struct {
	Status         model.OrderStatus
	ReturnReason   *string
	TrackingNumber *string
	DeliveredAt    *time.Time
}

type OrderRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error
	CreateItemsTx(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, int, error)
	ListAll(ctx context.Context, f OrderFilter) ([]model.Order, int, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, upd StatusUpdate) error
	UpdateStatus(ctx context.Context, id uuid.UUID, upd StatusUpdate) error
	Stats(ctx context.Context) (*model.OrderStats, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

const orderColumns = `id, user_id, status, total_amount, ship_address, ship_city, ship_postal_code, ship_country,
	payment_method, card_last4, return_reason, tracking_number, delivered_at, created_at, updated_at`

func (r *pgOrderRepo) CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	order.ID = uuid.New()
	err := tx.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, status, total_amount, ship_address, ship_city, ship_postal_code, ship_country,
			payment_method, card_last4, return_reason, tracking_number, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, '', '', NOW(), NOW())
		 RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.Status, order.TotalAmount,
		order.Shipping.Address, order.Shipping.City, order.Shipping.PostalCode, order.Shipping.Country,
		order.Payment.Method, order.Payment.CardLast4,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *pgOrderRepo) CreateItemsTx(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	for i := range items {
		items[i].ID = uuid.New()
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, title, price, image, quantity, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
			items[i].ID, items[i].OrderID, items[i].ProductID,
			items[i].Title, items[i].Price, items[i].Image, items[i].Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.TotalAmount,
		&o.Shipping.Address, &o.Shipping.City, &o.Shipping.PostalCode, &o.Shipping.Country,
		&o.Payment.Method, &o.Payment.CardLast4,
		&o.ReturnReason, &o.TrackingNumber, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *pgOrderRepo) loadItems(ctx context.Context, o *model.Order) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, title, price, image, quantity FROM order_items WHERE order_id = $1`, o.ID,
	)
	if err != nil {
		return fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Title, &item.Price, &item.Image, &item.Quantity); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
	}
	return nil
}

func (r *pgOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, int, error) {
	return r.list(ctx, OrderFilter{Limit: limit, Offset: offset, UserID: &userID})
}

func (r *pgOrderRepo) ListAll(ctx context.Context, f OrderFilter) ([]model.Order, int, error) {
	return r.list(ctx, f)
}

func (r *pgOrderRepo) list(ctx context.Context, f OrderFilter) ([]model.Order, int, error) {
	where := `WHERE ($1 = '' OR status = $1) AND ($2::uuid IS NULL OR user_id = $2)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, string(f.Status), f.UserID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders `+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		string(f.Status), f.UserID, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	rows.Close()

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

const updateStatusSQL = `UPDATE orders SET status = $2,
	return_reason = COALESCE($3, return_reason),
	tracking_number = COALESCE($4, tracking_number),
	delivered_at = COALESCE($5, delivered_at),
	updated_at = NOW()
	WHERE id = $1`

func (r *pgOrderRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, upd StatusUpdate) error {
	ct, err := tx.Exec(ctx, updateStatusSQL, id, upd.Status, upd.ReturnReason, upd.TrackingNumber, upd.DeliveredAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, upd StatusUpdate) error {
	ct, err := r.pool.Exec(ctx, updateStatusSQL, id, upd.Status, upd.ReturnReason, upd.TrackingNumber, upd.DeliveredAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgOrderRepo) Stats(ctx context.Context) (*model.OrderStats, error) {
	stats := &model.OrderStats{}

	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders GROUP BY status ORDER BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("order stats by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b model.StatusBucket
		if err := rows.Scan(&b.Status, &b.Count, &b.Revenue); err != nil {
			return nil, fmt.Errorf("scan status bucket: %w", err)
		}
		stats.ByStatus = append(stats.ByStatus, b)
	}
	rows.Close()

	daily, err := r.pool.Query(ctx,
		`SELECT d::date, COALESCE(SUM(o.total_amount), 0)
		 FROM generate_series(CURRENT_DATE - INTERVAL '6 days', CURRENT_DATE, '1 day') AS d
		 LEFT JOIN orders o ON o.created_at::date = d::date AND o.status <> 'cancelled'
		 GROUP BY d ORDER BY d`,
	)
	if err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}
	defer daily.Close()
	for daily.Next() {
		var dr model.DailyRevenue
		if err := daily.Scan(&dr.Day, &dr.Revenue); err != nil {
			return nil, fmt.Errorf("scan daily revenue: %w", err)
		}
		stats.Last7Days = append(stats.Last7Days, dr)
	}
	daily.Close()

	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> 'cancelled'`,
	).Scan(&stats.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("total revenue: %w", err)
	}
	return stats, nil
}
