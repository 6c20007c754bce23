package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketgo/storefront-api/internal/dto"
	"github.com/marketgo/storefront-api/internal/middleware"
	"github.com/marketgo/storefront-api/internal/model"
	"github.com/marketgo/storefront-api/internal/service"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// Submit handles POST /sellers/products/submit.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	var req dto.SubmitProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.submissionService.Submit(c.Request.Context(), principal, req)
	if err != nil {
		if errors.Is(err, service.ErrSellerOnly) {
			fail(c, http.StatusForbidden, "seller only")
			return
		}
		if errors.Is(err, service.ErrInvalidCategory) {
			fail(c, http.StatusBadRequest, "unknown category")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusCreated, gin.H{"submission": toSubmissionResponse(sub)})
}

// ListMine handles GET /sellers/products/submissions.
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	subs, err := h.submissionService.ListBySeller(c.Request.Context(), principal.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{"submissions": toSubmissionResponses(subs)})
}

// Dashboard handles GET /sellers/dashboard.
func (h *SubmissionHandler) Dashboard(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	counts, err := h.submissionService.DashboardCounts(c.Request.Context(), principal.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{"dashboard": dto.SellerDashboardResponse{
		PendingSubmissions:  counts.Pending,
		ApprovedSubmissions: counts.Approved,
		RejectedSubmissions: counts.Rejected,
		LiveProducts:        counts.LiveProducts,
	}})
}

// AdminList handles GET /admin/product-submissions.
func (h *SubmissionHandler) AdminList(c *gin.Context) {
	var req dto.ListSubmissionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	subs, err := h.submissionService.ListByStatus(c.Request.Context(), model.SubmissionStatus(req.Status))
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{"submissions": toSubmissionResponses(subs)})
}

// Approve handles POST /admin/product-submissions/:id/approve.
func (h *SubmissionHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid submission ID")
		return
	}

	// Feedback is optional; an empty body means "approve with the default note".
	var req dto.ApproveSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, product, err := h.submissionService.Approve(c.Request.Context(), id, req.Feedback)
	if err != nil {
		h.failSubmission(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"submission": toSubmissionResponse(sub),
		"product":    toProductResponse(product),
	})
}

// Reject handles POST /admin/product-submissions/:id/reject.
func (h *SubmissionHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid submission ID")
		return
	}

	var req dto.RejectSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.submissionService.Reject(c.Request.Context(), id, req.Feedback)
	if err != nil {
		h.failSubmission(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"submission": toSubmissionResponse(sub)})
}

func (h *SubmissionHandler) failSubmission(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		fail(c, http.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAlreadyApproved):
		fail(c, http.StatusBadRequest, "submission already approved")
	case errors.Is(err, service.ErrAlreadyRejected):
		fail(c, http.StatusBadRequest, "submission already rejected")
	case errors.Is(err, service.ErrFeedbackRequired):
		fail(c, http.StatusBadRequest, "feedback is required")
	default:
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func toSubmissionResponses(subs []model.Submission) []dto.SubmissionResponse {
	items := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		items = append(items, toSubmissionResponse(&subs[i]))
	}
	return items
}

func toSubmissionResponse(s *model.Submission) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		ID:            s.ID,
		SellerID:      s.SellerID,
		Title:         s.Title,
		Description:   s.Description,
		Price:         s.Price,
		Category:      s.Category,
		Image:         s.Image,
		Stock:         s.Stock,
		Status:        s.Status,
		AdminFeedback: s.AdminFeedback,
		Seller: dto.SubmissionSeller{
			Name:      s.SellerName,
			Email:     s.SellerEmail,
			StoreName: s.SellerStoreName,
		},
		CreatedAt: s.CreatedAt,
	}
}
