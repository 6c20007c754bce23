package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketgo/storefront-api/internal/dto"
	"github.com/marketgo/storefront-api/internal/middleware"
	"github.com/marketgo/storefront-api/internal/model"
	"github.com/marketgo/storefront-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			fail(c, http.StatusBadRequest, "user already exists")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusCreated, gin.H{"token": resp.Token, "user": resp.User})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if errors.Is(err, service.ErrAccountDisabled) {
			fail(c, http.StatusForbidden, "account disabled")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{"token": resp.Token, "user": resp.User})
}

func (h *AuthHandler) Me(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	user, err := h.authService.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "user not found")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h *AuthHandler) BecomeSeller(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req dto.BecomeSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.BecomeSeller(c.Request.Context(), principal.UserID, req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, service.ErrAlreadySeller) {
			fail(c, http.StatusBadRequest, "user is already a seller")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		Name:             user.Name,
		Role:             user.Role,
		StoreName:        user.StoreName,
		StoreDescription: user.StoreDescription,
		IsVerified:       user.IsVerified,
	}
}
