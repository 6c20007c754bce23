package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketgo/storefront-api/internal/dto"
	"github.com/marketgo/storefront-api/internal/middleware"
	"github.com/marketgo/storefront-api/internal/model"
	"github.com/marketgo/storefront-api/internal/repository"
	"github.com/marketgo/storefront-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), principal, req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			fail(c, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, repository.ErrInsufficientStock) {
			fail(c, http.StatusBadRequest, "insufficient stock")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusCreated, gin.H{"order": toOrderResponse(order)})
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	orders, total, err := h.orderService.ListByUser(c.Request.Context(), principal.UserID, req.Page, req.Limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respondOrderList(c, orders, total, req.Page, req.Limit)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), principal, orderID)
	if err != nil {
		h.failOrder(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"order": toOrderResponse(order)})
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), principal, orderID)
	if err != nil {
		h.failOrder(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"order": toOrderResponse(order)})
}

func (h *OrderHandler) RequestReturn(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req dto.RequestReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.RequestReturn(c.Request.Context(), principal, orderID, req.Reason)
	if err != nil {
		h.failOrder(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"order": toOrderResponse(order)})
}

func (h *OrderHandler) AdminList(c *gin.Context) {
	var req dto.AdminListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	orders, total, err := h.orderService.AdminList(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderStatus) {
			fail(c, http.StatusBadRequest, "unknown order status")
			return
		}
		if errors.Is(err, service.ErrInvalidUserFilter) {
			fail(c, http.StatusBadRequest, "invalid user ID")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respondOrderList(c, orders, total, req.Page, req.Limit)
}

func (h *OrderHandler) AdminUpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req dto.AdminUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.AdminUpdateStatus(c.Request.Context(), orderID, req.Status, req.TrackingNumber)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			fail(c, http.StatusBadRequest, "insufficient stock to restore order")
			return
		}
		h.failOrder(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"order": toOrderResponse(order)})
}

func (h *OrderHandler) AdminStats(c *gin.Context) {
	stats, err := h.orderService.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	byStatus := make([]dto.StatusBucketResponse, 0, len(stats.ByStatus))
	for _, b := range stats.ByStatus {
		byStatus = append(byStatus, dto.StatusBucketResponse{Status: b.Status, Count: b.Count, Revenue: b.Revenue})
	}
	daily := make([]dto.DailyRevenueResponse, 0, len(stats.Last7Days))
	for _, d := range stats.Last7Days {
		daily = append(daily, dto.DailyRevenueResponse{Day: d.Day.Format("2006-01-02"), Revenue: d.Revenue})
	}

	respond(c, http.StatusOK, gin.H{"stats": dto.OrderStatsResponse{
		ByStatus:     byStatus,
		Last7Days:    daily,
		TotalRevenue: stats.TotalRevenue,
	}})
}

func (h *OrderHandler) failOrder(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		fail(c, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrOrderAccessDenied):
		fail(c, http.StatusForbidden, "access denied")
	case errors.Is(err, service.ErrOrderNotCancellable):
		fail(c, http.StatusBadRequest, "order cannot be cancelled in its current status")
	case errors.Is(err, service.ErrOrderNotReturnable):
		fail(c, http.StatusBadRequest, "only delivered orders can be returned")
	case errors.Is(err, service.ErrReturnReasonRequired):
		fail(c, http.StatusBadRequest, "return reason is required")
	case errors.Is(err, service.ErrInvalidOrderStatus):
		fail(c, http.StatusBadRequest, "unknown order status")
	default:
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func respondOrderList(c *gin.Context, orders []model.Order, total, page, limit int) {
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i]))
	}
	respond(c, http.StatusOK, gin.H{
		"orders":       items,
		"total_count":  total,
		"page_count":   pageCount(total, limit),
		"current_page": page,
	})
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Image:     item.Image,
			Quantity:  item.Quantity,
		})
	}
	return dto.OrderResponse{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       items,
		Shipping: dto.ShippingRequest{
			Address:    order.Shipping.Address,
			City:       order.Shipping.City,
			PostalCode: order.Shipping.PostalCode,
			Country:    order.Shipping.Country,
		},
		PaymentMethod:  order.Payment.Method,
		CardLast4:      order.Payment.CardLast4,
		ReturnReason:   order.ReturnReason,
		TrackingNumber: order.TrackingNumber,
		DeliveredAt:    order.DeliveredAt,
		CreatedAt:      order.CreatedAt,
	}
}
