package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/marketgo/storefront-api/internal/dto"
	"github.com/marketgo/storefront-api/internal/middleware"
	"github.com/marketgo/storefront-api/internal/model"
	"github.com/marketgo/storefront-api/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
	authService    *service.AuthService
}

func NewProductHandler(productService *service.ProductService, authService *service.AuthService) *ProductHandler {
	return &ProductHandler{productService: productService, authService: authService}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			fail(c, http.StatusBadRequest, "unknown category")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusCreated, gin.H{"product": toProductResponse(product)})
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			fail(c, http.StatusNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{"product": toProductResponse(product)})
}

func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), req)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}

	respond(c, http.StatusOK, gin.H{
		"products":     items,
		"total_count":  total,
		"page_count":   pageCount(total, req.Limit),
		"current_page": req.Page,
	})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			fail(c, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, service.ErrInvalidCategory) {
			fail(c, http.StatusBadRequest, "unknown category")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{"product": toProductResponse(product)})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			fail(c, http.StatusNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) UpsertReview(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req dto.UpsertReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	product, err := h.productService.UpsertReview(c.Request.Context(), principal, user.Name, id, req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			fail(c, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, service.ErrInvalidCategory) {
			fail(c, http.StatusBadRequest, "unknown category")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{"product": toProductResponse(product)})
}

func (h *ProductHandler) ListReviews(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product ID")
		return
	}

	reviews, err := h.productService.ListReviews(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			fail(c, http.StatusNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	items := make([]dto.ReviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		items = append(items, dto.ReviewResponse{
			UserID:    rv.UserID,
			UserName:  rv.UserName,
			Rating:    rv.Rating,
			Comment:   rv.Comment,
			CreatedAt: rv.CreatedAt,
		})
	}

	respond(c, http.StatusOK, gin.H{"reviews": items})
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Image:       p.Image,
		Stock:       p.Stock,
		Rating:      dto.RatingResponse{Rate: p.RatingRate, Count: p.RatingCount},
		IsFeatured:  p.IsFeatured,
		Source:      p.Source,
		SellerID:    p.SellerID,
		StoreName:   p.StoreName,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func pageCount(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
