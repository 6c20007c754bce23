package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketgo/storefront-api/internal/dto"
	"github.com/marketgo/storefront-api/internal/middleware"
	"github.com/marketgo/storefront-api/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	cart, err := h.cartService.GetCart(c.Request.Context(), principal.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	items := make([]dto.CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, dto.CartItemResponse{
			ID: item.ID, ProductID: item.ProductID, Quantity: item.Quantity,
		})
	}
	respond(c, http.StatusOK, gin.H{"cart": dto.CartResponse{ID: cart.ID, Items: items}})
}

func (h *CartHandler) AddItem(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.cartService.AddItem(c.Request.Context(), principal.UserID, req.ProductID, req.Quantity); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			fail(c, http.StatusNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respond(c, http.StatusCreated, gin.H{"message": "item added"})
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.cartService.UpdateItem(c.Request.Context(), principal.UserID, itemID, req.Quantity); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			fail(c, http.StatusNotFound, "cart item not found")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "item updated"})
}

func (h *CartHandler) DeleteItem(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.cartService.DeleteItem(c.Request.Context(), principal.UserID, itemID); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			fail(c, http.StatusNotFound, "cart item not found")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.Status(http.StatusNoContent)
}
