package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgo/storefront-api/internal/dto"
	"github.com/marketgo/storefront-api/internal/model"
)

type mockSubmissionRepo struct {
	subs map[uuid.UUID]*model.Submission
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{subs: make(map[uuid.UUID]*model.Submission)}
}

func (m *mockSubmissionRepo) Create(_ context.Context, sub *model.Submission) error {
	sub.ID = uuid.New()
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = time.Now()
	m.subs[sub.ID] = sub
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Submission, error) {
	return m.subs[id], nil
}

func (m *mockSubmissionRepo) Decide(_ context.Context, _ pgx.Tx, id uuid.UUID, status model.SubmissionStatus, feedback string) error {
	sub, ok := m.subs[id]
	if !ok {
		return pgx.ErrNoRows
	}
	sub.Status = status
	sub.AdminFeedback = feedback
	return nil
}

func (m *mockSubmissionRepo) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]model.Submission, error) {
	var out []model.Submission
	for _, s := range m.subs {
		if s.SellerID == sellerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSubmissionRepo) ListByStatus(_ context.Context, status model.SubmissionStatus) ([]model.Submission, error) {
	var out []model.Submission
	for _, s := range m.subs {
		if s.Status == status {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSubmissionRepo) CountsBySeller(_ context.Context, sellerID uuid.UUID) (int, int, int, error) {
	var pending, approved, rejected int
	for _, s := range m.subs {
		if s.SellerID != sellerID {
			continue
		}
		switch s.Status {
		case model.SubmissionPending:
			pending++
		case model.SubmissionApproved:
			approved++
		case model.SubmissionRejected:
			rejected++
		}
	}
	return pending, approved, rejected, nil
}

func submitRequest() dto.SubmitProductRequest {
	return dto.SubmitProductRequest{
		Title: "Walnut Side Table", Description: "Solid walnut, oiled finish",
		Price: decimal.NewFromFloat(149.00), Category: "furniture",
		Image: "https://cdn.example.com/table.jpg", Stock: 8,
	}
}

func TestSubmissionService_Submit(t *testing.T) {
	svc := NewSubmissionService(newMockSubmissionRepo(), newMockProductRepo(), newMockUserRepo(), mockTxManager{})
	seller := model.Principal{UserID: uuid.New(), Role: model.RoleSeller}

	sub, err := svc.Submit(context.Background(), seller, submitRequest())
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionPending, sub.Status)
	assert.Equal(t, seller.UserID, sub.SellerID)
}

func TestSubmissionService_Submit_NotSeller(t *testing.T) {
	svc := NewSubmissionService(newMockSubmissionRepo(), newMockProductRepo(), newMockUserRepo(), mockTxManager{})
	customer := model.Principal{UserID: uuid.New(), Role: model.RoleCustomer}

	_, err := svc.Submit(context.Background(), customer, submitRequest())
	assert.ErrorIs(t, err, ErrSellerOnly)
}

func TestSubmissionService_Submit_UnknownCategory(t *testing.T) {
	svc := NewSubmissionService(newMockSubmissionRepo(), newMockProductRepo(), newMockUserRepo(), mockTxManager{})
	seller := model.Principal{UserID: uuid.New(), Role: model.RoleSeller}

	req := submitRequest()
	req.Category = "antiques"
	_, err := svc.Submit(context.Background(), seller, req)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestSubmissionService_Approve(t *testing.T) {
	userRepo := newMockUserRepo()
	seller := &model.User{Email: "seller@example.com", Name: "Jordan Reyes", Role: model.RoleSeller, StoreName: "Reyes Goods"}
	require.NoError(t, userRepo.Create(context.Background(), seller))

	subRepo := newMockSubmissionRepo()
	productRepo := newMockProductRepo()
	svc := NewSubmissionService(subRepo, productRepo, userRepo, mockTxManager{})

	sub, err := svc.Submit(context.Background(), model.Principal{UserID: seller.ID, Role: model.RoleSeller}, submitRequest())
	require.NoError(t, err)

	approved, product, err := svc.Approve(context.Background(), sub.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionApproved, approved.Status)
	assert.NotEmpty(t, approved.AdminFeedback)

	require.NotNil(t, product)
	assert.True(t, product.IsCustom)
	assert.Equal(t, model.SourceDatabase, product.Source)
	assert.Equal(t, "Reyes Goods", product.StoreName)
	require.NotNil(t, product.SellerID)
	assert.Equal(t, seller.ID, *product.SellerID)
	require.NotNil(t, product.SubmissionID)
	assert.Equal(t, sub.ID, *product.SubmissionID)

	// A second approval must not create a second product.
	_, _, err = svc.Approve(context.Background(), sub.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyApproved)
	assert.Len(t, productRepo.products, 1)
}

func TestSubmissionService_Approve_StoreNameFallback(t *testing.T) {
	userRepo := newMockUserRepo()
	seller := &model.User{Email: "seller@example.com", Name: "Jordan Reyes", Role: model.RoleSeller}
	require.NoError(t, userRepo.Create(context.Background(), seller))

	svc := NewSubmissionService(newMockSubmissionRepo(), newMockProductRepo(), userRepo, mockTxManager{})
	sub, err := svc.Submit(context.Background(), model.Principal{UserID: seller.ID, Role: model.RoleSeller}, submitRequest())
	require.NoError(t, err)

	_, product, err := svc.Approve(context.Background(), sub.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, "Jordan Reyes", product.StoreName)
}

func TestSubmissionService_Reject(t *testing.T) {
	svc := NewSubmissionService(newMockSubmissionRepo(), newMockProductRepo(), newMockUserRepo(), mockTxManager{})
	seller := model.Principal{UserID: uuid.New(), Role: model.RoleSeller}

	sub, err := svc.Submit(context.Background(), seller, submitRequest())
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), sub.ID, "  ")
	assert.ErrorIs(t, err, ErrFeedbackRequired)

	rejected, err := svc.Reject(context.Background(), sub.ID, "blurry product image")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionRejected, rejected.Status)
	assert.Equal(t, "blurry product image", rejected.AdminFeedback)

	_, err = svc.Reject(context.Background(), sub.ID, "again")
	assert.ErrorIs(t, err, ErrAlreadyRejected)
}

func TestSubmissionService_ApproveAfterReject(t *testing.T) {
	userRepo := newMockUserRepo()
	seller := &model.User{Email: "seller@example.com", Name: "Jordan Reyes", Role: model.RoleSeller}
	require.NoError(t, userRepo.Create(context.Background(), seller))

	svc := NewSubmissionService(newMockSubmissionRepo(), newMockProductRepo(), userRepo, mockTxManager{})
	sub, err := svc.Submit(context.Background(), model.Principal{UserID: seller.ID, Role: model.RoleSeller}, submitRequest())
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), sub.ID, "fix the price")
	require.NoError(t, err)

	// A rejected submission can still be approved after the seller appeals.
	approved, product, err := svc.Approve(context.Background(), sub.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionApproved, approved.Status)
	assert.NotNil(t, product)
}

func TestSubmissionService_Approve_NotFound(t *testing.T) {
	svc := NewSubmissionService(newMockSubmissionRepo(), newMockProductRepo(), newMockUserRepo(), mockTxManager{})
	_, _, err := svc.Approve(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionService_DashboardCounts(t *testing.T) {
	userRepo := newMockUserRepo()
	seller := &model.User{Email: "seller@example.com", Name: "Jordan Reyes", Role: model.RoleSeller}
	require.NoError(t, userRepo.Create(context.Background(), seller))

	subRepo := newMockSubmissionRepo()
	productRepo := newMockProductRepo()
	svc := NewSubmissionService(subRepo, productRepo, userRepo, mockTxManager{})
	principal := model.Principal{UserID: seller.ID, Role: model.RoleSeller}

	first, err := svc.Submit(context.Background(), principal, submitRequest())
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), principal, submitRequest())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), principal, submitRequest())
	require.NoError(t, err)

	_, _, err = svc.Approve(context.Background(), first.ID, "")
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), second.ID, "duplicate listing")
	require.NoError(t, err)

	counts, err := svc.DashboardCounts(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Pending)
	assert.Equal(t, 1, counts.Approved)
	assert.Equal(t, 1, counts.Rejected)
	assert.Equal(t, 1, counts.LiveProducts)
}
