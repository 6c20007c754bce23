package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketgo/storefront-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type BecomeSellerRequest struct {
	StoreName        string `json:"store_name" binding:"required"`
	StoreDescription string `json:"store_description"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Role             model.Role `json:"role"`
	StoreName        string     `json:"store_name,omitempty"`
	StoreDescription string     `json:"store_description,omitempty"`
	IsVerified       bool       `json:"is_verified"`
}

// --- Product ---

type CreateProductRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Image       string          `json:"image" binding:"required,url"`
	Stock       int             `json:"stock" binding:"min=0"`
	IsFeatured  bool            `json:"is_featured"`
}

type UpdateProductRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Image       *string          `json:"image"`
	Stock       *int             `json:"stock"`
	IsFeatured  *bool            `json:"is_featured"`
}

type ListProductsRequest struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=20" binding:"min=1,max=100"`
	Search   string `form:"search"`
	Category string `form:"category"`
	Featured *bool  `form:"featured"`
	Sort     string `form:"sort,default=created_at" binding:"oneof=title price rating_rate created_at"`
	Order    string `form:"order,default=desc" binding:"oneof=asc desc"`
}

type RatingResponse struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type ProductResponse struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Category    string              `json:"category"`
	Image       string              `json:"image"`
	Stock       int                 `json:"stock"`
	Rating      RatingResponse      `json:"rating"`
	IsFeatured  bool                `json:"is_featured"`
	Source      model.ProductSource `json:"source"`
	SellerID    *uuid.UUID          `json:"seller_id,omitempty"`
	StoreName   string              `json:"store_name,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type ProductListResponse struct {
	Products    []ProductResponse `json:"products"`
	TotalCount  int               `json:"total_count"`
	PageCount   int               `json:"page_count"`
	CurrentPage int               `json:"current_page"`
}

// --- Reviews ---

// ExternalProduct describes a catalog item not yet persisted; reviewing one
// materializes it with source=frontend.
type ExternalProduct struct {
	Title    string          `json:"title" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Category string          `json:"category" binding:"required"`
	Image    string          `json:"image" binding:"required,url"`
}

type UpsertReviewRequest struct {
	Rating  int              `json:"rating" binding:"required,min=1,max=5"`
	Comment string           `json:"comment"`
	Product *ExternalProduct `json:"product"`
}

type ReviewResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CartResponse struct {
	ID    uuid.UUID          `json:"id"`
	Items []CartItemResponse `json:"items"`
}

type CartItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// --- Order ---

type ShippingRequest struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

type PaymentRequest struct {
	Method    model.PaymentMethod `json:"method" binding:"required,oneof=card cod"`
	CardLast4 string              `json:"card_last4" binding:"omitempty,len=4"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Shipping ShippingRequest    `json:"shipping" binding:"required"`
	Payment  PaymentRequest     `json:"payment" binding:"required"`
}

type RequestReturnRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type AdminUpdateStatusRequest struct {
	Status         model.OrderStatus `json:"status" binding:"required"`
	TrackingNumber *string           `json:"tracking_number"`
}

type ListOrdersRequest struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

type AdminListOrdersRequest struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Status string `form:"status"`
	// UserID is kept as a string because gin's query binder cannot
	// decode a uuid.UUID. The service parses and validates it.
	UserID string `form:"user_id"`
}

type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	UserID         uuid.UUID           `json:"user_id"`
	Status         model.OrderStatus   `json:"status"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	Items          []OrderItemResponse `json:"items"`
	Shipping       ShippingRequest     `json:"shipping"`
	PaymentMethod  model.PaymentMethod `json:"payment_method"`
	CardLast4      string              `json:"card_last4,omitempty"`
	ReturnReason   string              `json:"return_reason,omitempty"`
	TrackingNumber string              `json:"tracking_number,omitempty"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

type OrderListResponse struct {
	Orders      []OrderResponse `json:"orders"`
	TotalCount  int             `json:"total_count"`
	PageCount   int             `json:"page_count"`
	CurrentPage int             `json:"current_page"`
}

type StatusBucketResponse struct {
	Status  model.OrderStatus `json:"status"`
	Count   int               `json:"count"`
	Revenue decimal.Decimal   `json:"revenue"`
}

type DailyRevenueResponse struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

type OrderStatsResponse struct {
	ByStatus     []StatusBucketResponse `json:"by_status"`
	Last7Days    []DailyRevenueResponse `json:"last_7_days"`
	TotalRevenue decimal.Decimal        `json:"total_revenue"`
}

// --- Submissions ---

type SubmitProductRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Image       string          `json:"image" binding:"required,url"`
	Stock       int             `json:"stock" binding:"min=0"`
}

type ApproveSubmissionRequest struct {
	Feedback string `json:"feedback"`
}

type RejectSubmissionRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

type ListSubmissionsRequest struct {
	Status string `form:"status,default=pending" binding:"oneof=pending approved rejected"`
}

type SubmissionResponse struct {
	ID            uuid.UUID              `json:"id"`
	SellerID      uuid.UUID              `json:"seller_id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Price         decimal.Decimal        `json:"price"`
	Category      string                 `json:"category"`
	Image         string                 `json:"image"`
	Stock         int                    `json:"stock"`
	Status        model.SubmissionStatus `json:"status"`
	AdminFeedback string                 `json:"admin_feedback,omitempty"`
	Seller        SubmissionSeller       `json:"seller"`
	CreatedAt     time.Time              `json:"created_at"`
}

type SubmissionSeller struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	StoreName string `json:"store_name,omitempty"`
}

type SellerDashboardResponse struct {
	PendingSubmissions  int `json:"pending_submissions"`
	ApprovedSubmissions int `json:"approved_submissions"`
	RejectedSubmissions int `json:"rejected_submissions"`
	LiveProducts        int `json:"live_products"`
}
