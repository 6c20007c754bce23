package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/marketgo/storefront-api/internal/dto"
	"github.com/marketgo/storefront-api/internal/model"
	"github.com/marketgo/storefront-api/internal/repository"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSellerOnly         = errors.New("only sellers can submit products")
	ErrAlreadyApproved    = errors.New("submission already approved")
	ErrAlreadyRejected    = errors.New("submission already rejected")
	ErrFeedbackRequired   = errors.New("feedback is required")
	ErrInvalidCategory    = errors.New("unknown category")
)

const defaultApprovalFeedback = "Approved. Your product is now live in the catalog."

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	productRepo    repository.ProductRepository
	userRepo       repository.UserRepository
	txm            repository.TxManager
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	txm repository.TxManager,
) *SubmissionService {
	return &SubmissionService{submissionRepo: submissionRepo, productRepo: productRepo, userRepo: userRepo, txm: txm}
}

// Submit persists a new pending submission owned by the calling seller.
func (s *SubmissionService) Submit(ctx context.Context, principal model.Principal, req dto.SubmitProductRequest) (*model.Submission, error) {
	if !principal.IsSeller() {
		return nil, ErrSellerOnly
	}
	if !model.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	sub := &model.Submission{
		SellerID:    principal.UserID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
		Stock:       req.Stock,
		Status:      model.SubmissionPending,
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Approve materializes the submission into a catalog product and marks the
// submission approved; both writes commit as one transaction. The product
// keeps a back-reference to its originating submission.
func (s *SubmissionService) Approve(ctx context.Context, submissionID uuid.UUID, feedback string) (*model.Submission, *model.Product, error) {
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, nil, fmt.Errorf("get submission: %w", err)
	}
	if sub == nil {
		return nil, nil, ErrSubmissionNotFound
	}
	if sub.Status == model.SubmissionApproved {
		return nil, nil, ErrAlreadyApproved
	}

	seller, err := s.userRepo.GetByID(ctx, sub.SellerID)
	if err != nil {
		return nil, nil, fmt.Errorf("get seller: %w", err)
	}
	storeName := ""
	if seller != nil {
		storeName = seller.StoreName
		if storeName == "" {
			storeName = seller.Name
		}
	}

	if strings.TrimSpace(feedback) == "" {
		feedback = defaultApprovalFeedback
	}

	product := &model.Product{
		Title:        sub.Title,
		Description:  sub.Description,
		Price:        sub.Price,
		Category:     sub.Category,
		Image:        sub.Image,
		Stock:        sub.Stock,
		IsCustom:     true,
		Source:       model.SourceDatabase,
		SellerID:     &sub.SellerID,
		StoreName:    storeName,
		SubmissionID: &sub.ID,
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.productRepo.CreateTx(ctx, tx, product); err != nil {
			return err
		}
		return s.submissionRepo.Decide(ctx, tx, sub.ID, model.SubmissionApproved, feedback)
	})
	if err != nil {
		return nil, nil, err
	}

	sub.Status = model.SubmissionApproved
	sub.AdminFeedback = feedback
	return sub, product, nil
}

// Reject records the decision with mandatory feedback. No product is created.
func (s *SubmissionService) Reject(ctx context.Context, submissionID uuid.UUID, feedback string) (*model.Submission, error) {
	if strings.TrimSpace(feedback) == "" {
		return nil, ErrFeedbackRequired
	}

	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	if sub.Status == model.SubmissionRejected {
		return nil, ErrAlreadyRejected
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.submissionRepo.Decide(ctx, tx, sub.ID, model.SubmissionRejected, feedback)
	})
	if err != nil {
		return nil, err
	}

	sub.Status = model.SubmissionRejected
	sub.AdminFeedback = feedback
	return sub, nil
}

func (s *SubmissionService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Submission, error) {
	return s.submissionRepo.ListBySeller(ctx, sellerID)
}

func (s *SubmissionService) ListByStatus(ctx context.Context, status model.SubmissionStatus) ([]model.Submission, error) {
	return s.submissionRepo.ListByStatus(ctx, status)
}

// DashboardCounts returns the seller's submissions grouped by status plus the
// count of their live catalog products.
func (s *SubmissionService) DashboardCounts(ctx context.Context, sellerID uuid.UUID) (*model.SubmissionCounts, error) {
	pending, approved, rejected, err := s.submissionRepo.CountsBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	live, err := s.productRepo.CountBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return &model.SubmissionCounts{
		Pending:      pending,
		Approved:     approved,
		Rejected:     rejected,
		LiveProducts: live,
	}, nil
}
