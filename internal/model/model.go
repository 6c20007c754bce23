package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Principal is the authenticated caller of an operation, resolved once by the
// auth middleware and passed explicitly into services.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool  { return p.Role == RoleAdmin }
func (p Principal) IsSeller() bool { return p.Role == RoleSeller }

type User struct {
	ID               uuid.UUID
	Email            string
	Password         string
	Name             string
	Role             Role
	Active           bool
	StoreName        string
	StoreDescription string
	IsVerified       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type ProductSource string

const (
	SourceDatabase ProductSource = "database"
	SourceFrontend ProductSource = "frontend"
)

var Categories = []string{"electronics", "clothing", "furniture", "beauty", "sports", "books", "toys"}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID           uuid.UUID
	Title        string
	Description  string
	Price        decimal.Decimal
	Category     string
	Image        string
	Stock        int
	RatingRate   float64
	RatingCount  int
	IsFeatured   bool
	IsCustom     bool
	Source       ProductSource
	SellerID     *uuid.UUID
	StoreName    string
	SubmissionID *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Review is one user's review of a product. A user has at most one review per
// product; resubmission overwrites it.
type Review struct {
	ProductID uuid.UUID
	UserID    uuid.UUID
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusReturnRequested OrderStatus = "return-requested"
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturnRequested:
		return true
	}
	return false
}

// Cancellable reports whether a user-initiated cancel is allowed from s.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCOD  PaymentMethod = "cod"
)

// ShippingAddress is snapshotted onto the order at checkout.
type ShippingAddress struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

// Payment holds the masked payment snapshot; only the last four card digits
// are ever stored.
type Payment struct {
	Method    PaymentMethod
	CardLast4 string
}

type Order struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Status         OrderStatus
	TotalAmount    decimal.Decimal
	Items          []OrderItem
	Shipping       ShippingAddress
	Payment        Payment
	ReturnReason   string
	TrackingNumber string
	DeliveredAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem copies title, price and image at order time; they are never
// live-joined back to the product.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Title     string
	Price     decimal.Decimal
	Image     string
	Quantity  int
}

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission is a seller's proposed catalog entry awaiting moderation.
type Submission struct {
	ID            uuid.UUID
	SellerID      uuid.UUID
	Title         string
	Description   string
	Price         decimal.Decimal
	Category      string
	Image         string
	Stock         int
	Status        SubmissionStatus
	AdminFeedback string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Populated for admin/seller listings.
	SellerName      string
	SellerEmail     string
	SellerStoreName string
}

// SubmissionCounts backs the seller dashboard.
type SubmissionCounts struct {
	Pending      int
	Approved     int
	Rejected     int
	LiveProducts int
}

// StatusBucket is one row of the per-status order aggregate.
type StatusBucket struct {
	Status  OrderStatus
	Count   int
	Revenue decimal.Decimal
}

// DailyRevenue is one day of the trailing revenue series.
type DailyRevenue struct {
	Day     time.Time
	Revenue decimal.Decimal
}

type OrderStats struct {
	ByStatus     []StatusBucket
	Last7Days    []DailyRevenue
	TotalRevenue decimal.Decimal // excludes cancelled orders
}

// OrderEvent is published after an order mutation commits; the cache worker
// consumes it to drop stale product cache entries.
type OrderEvent struct {
	ID         uuid.UUID   `json:"id"`
	Type       string      `json:"type"`
	OrderID    uuid.UUID   `json:"order_id"`
	UserID     uuid.UUID   `json:"user_id"`
	ProductIDs []uuid.UUID `json:"product_ids"`
}

const (
	EventOrderPlaced        = "order.placed"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"
)
