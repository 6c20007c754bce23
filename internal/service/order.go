package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/marketgo/storefront-api/internal/dto"
	"github.com/marketgo/storefront-api/internal/model"
	"github.com/marketgo/storefront-api/internal/repository"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderAccessDenied    = errors.New("access denied")
	ErrOrderNotCancellable  = errors.New("order cannot be cancelled in its current status")
	ErrOrderNotReturnable   = errors.New("only delivered orders can be returned")
	ErrReturnReasonRequired = errors.New("return reason is required")
	ErrInvalidOrderStatus   = errors.New("unknown order status")
	ErrInvalidUserFilter    = errors.New("invalid user filter")
)

const orderEventsQueue = "order.events"

type OrderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	txm         repository.TxManager
	amqpCh      *amqp.Channel
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	txm repository.TxManager,
	amqpCh *amqp.Channel,
) *OrderService {
	return &OrderService{orderRepo: orderRepo, cartRepo: cartRepo, productRepo: productRepo, txm: txm, amqpCh: amqpCh}
}

// PlaceOrder checks and decrements stock for every line item, creates the
// order in state pending and clears the buyer's cart, all in one transaction.
// Any shortfall aborts the whole placement with no stock mutated. The total is
// computed from the snapshotted prices, never trusted from the client.
func (s *OrderService) PlaceOrder(ctx context.Context, principal model.Principal, req dto.PlaceOrderRequest) (*model.Order, error) {
	var total decimal.Decimal
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, li := range req.Items {
		product, err := s.productRepo.GetByID(ctx, li.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return nil, fmt.Errorf("product %s: %w", li.ProductID, ErrProductNotFound)
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(li.Quantity))))
		items = append(items, model.OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  li.Quantity,
		})
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	order := &model.Order{
		UserID:      principal.UserID,
		Status:      model.OrderStatusPending,
		TotalAmount: total,
		Shipping: model.ShippingAddress{
			Address:    req.Shipping.Address,
			City:       req.Shipping.City,
			PostalCode: req.Shipping.PostalCode,
			Country:    req.Shipping.Country,
		},
		Payment: model.Payment{Method: req.Payment.Method, CardLast4: req.Payment.CardLast4},
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, item := range items {
			if err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := s.orderRepo.CreateTx(ctx, tx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := s.orderRepo.CreateItemsTx(ctx, tx, items); err != nil {
			return err
		}
		return s.cartRepo.ClearCartTx(ctx, tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	order.Items = items
	s.publish(ctx, model.EventOrderPlaced, order)
	return order, nil
}

// Cancel restores each line item's stock and marks the order cancelled,
// atomically. Products deleted out-of-band are skipped during restoration.
func (s *OrderService) Cancel(ctx context.Context, principal model.Principal, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, ErrOrderAccessDenied
	}
	if !order.Status.Cancellable() {
		return nil, ErrOrderNotCancellable
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, item := range order.Items {
			if _, err := s.productRepo.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.orderRepo.UpdateStatusTx(ctx, tx, order.ID, repository.StatusUpdate{Status: model.OrderStatusCancelled})
	})
	if err != nil {
		return nil, err
	}

	order.Status = model.OrderStatusCancelled
	s.publish(ctx, model.EventOrderCancelled, order)
	return order, nil
}

// RequestReturn is owner-only and allowed only from delivered. It has no
// stock effect.
func (s *OrderService) RequestReturn(ctx context.Context, principal model.Principal, orderID uuid.UUID, reason string) (*model.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReturnReasonRequired
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != principal.UserID {
		return nil, ErrOrderAccessDenied
	}
	if order.Status != model.OrderStatusDelivered {
		return nil, ErrOrderNotReturnable
	}

	upd := repository.StatusUpdate{Status: model.OrderStatusReturnRequested, ReturnReason: &reason}
	if err := s.orderRepo.UpdateStatus(ctx, orderID, upd); err != nil {
		return nil, err
	}
	order.Status = model.OrderStatusReturnRequested
	order.ReturnReason = reason
	return order, nil
}

// AdminUpdateStatus forces any known status. Stock is reconciled on both
// sides of cancelled: forcing into cancelled restores stock exactly like a
// user cancel, and forcing out of cancelled re-decrements it with the same
// insufficient-stock guard.
func (s *OrderService) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, trackingNumber *string) (*model.Order, error) {
	if !model.ValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	upd := repository.StatusUpdate{Status: status, TrackingNumber: trackingNumber}
	if status == model.OrderStatusDelivered {
		now := time.Now()
		upd.DeliveredAt = &now
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if status == model.OrderStatusCancelled && order.Status != model.OrderStatusCancelled {
			for _, item := range order.Items {
				if _, err := s.productRepo.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		if order.Status == model.OrderStatusCancelled && status != model.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return s.orderRepo.UpdateStatusTx(ctx, tx, orderID, upd)
	})
	if err != nil {
		return nil, err
	}

	order.Status = status
	if trackingNumber != nil {
		order.TrackingNumber = *trackingNumber
	}
	order.DeliveredAt = upd.DeliveredAt
	s.publish(ctx, model.EventOrderStatusChanged, order)
	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, principal model.Principal, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Order, int, error) {
	return s.orderRepo.ListByUser(ctx, userID, limit, (page-1)*limit)
}

func (s *OrderService) AdminList(ctx context.Context, req dto.AdminListOrdersRequest) ([]model.Order, int, error) {
	status := model.OrderStatus(req.Status)
	if req.Status != "" && !model.ValidOrderStatus(status) {
		return nil, 0, ErrInvalidOrderStatus
	}
	filter := repository.OrderFilter{
		Limit:  req.Limit,
		Offset: (req.Page - 1) * req.Limit,
		Status: status,
	}
	if req.UserID != "" {
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, 0, ErrInvalidUserFilter
		}
		filter.UserID = &userID
	}
	return s.orderRepo.ListAll(ctx, filter)
}

func (s *OrderService) Stats(ctx context.Context) (*model.OrderStats, error) {
	return s.orderRepo.Stats(ctx)
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *model.Order) {
	if s.amqpCh == nil {
		return
	}
	productIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	msg, _ := json.Marshal(model.OrderEvent{
		ID:         uuid.New(),
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		ProductIDs: productIDs,
	})
	_ = s.amqpCh.PublishWithContext(ctx, "", orderEventsQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         msg,
		DeliveryMode: amqp.Persistent,
	})
}
