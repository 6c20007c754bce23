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
	"github.com/marketgo/storefront-api/internal/repository"
)

// mockTxManager runs the closure without a real transaction; repositories in
// these tests ignore the tx handle.
type mockTxManager struct{}

func (mockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

type mockProductRepo struct {
	products map[uuid.UUID]*model.Product
	reviews  map[uuid.UUID]map[uuid.UUID]*model.Review
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		reviews:  make(map[uuid.UUID]map[uuid.UUID]*model.Review),
	}
}

func (m *mockProductRepo) Create(_ context.Context, p *model.Product) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) CreateTx(ctx context.Context, _ pgx.Tx, p *model.Product) error {
	return m.Create(ctx, p)
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return m.products[id], nil
}

func (m *mockProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]model.Product, int, error) {
	var all []model.Product
	for _, p := range m.products {
		all = append(all, *p)
	}
	return all, len(all), nil
}

func (m *mockProductRepo) Update(_ context.Context, p *model.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) CountBySeller(_ context.Context, sellerID uuid.UUID) (int, error) {
	count := 0
	for _, p := range m.products {
		if p.SellerID != nil && *p.SellerID == sellerID {
			count++
		}
	}
	return count, nil
}

func (m *mockProductRepo) DecrementStock(_ context.Context, _ pgx.Tx, productID uuid.UUID, quantity int) error {
	p, ok := m.products[productID]
	if !ok || p.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (m *mockProductRepo) RestoreStock(_ context.Context, _ pgx.Tx, productID uuid.UUID, quantity int) (bool, error) {
	p, ok := m.products[productID]
	if !ok {
		return false, nil
	}
	p.Stock += quantity
	return true, nil
}

func (m *mockProductRepo) UpsertReview(_ context.Context, _ pgx.Tx, review *model.Review) error {
	if m.reviews[review.ProductID] == nil {
		m.reviews[review.ProductID] = make(map[uuid.UUID]*model.Review)
	}
	review.CreatedAt = time.Now()
	review.UpdatedAt = time.Now()
	m.reviews[review.ProductID][review.UserID] = review
	return nil
}

func (m *mockProductRepo) RecomputeRating(_ context.Context, _ pgx.Tx, productID uuid.UUID) (float64, int, error) {
	sum, count := 0, 0
	for _, r := range m.reviews[productID] {
		sum += r.Rating
		count++
	}
	rate := 0.0
	if count > 0 {
		rate = float64(sum) / float64(count)
	}
	if p, ok := m.products[productID]; ok {
		p.RatingRate = rate
		p.RatingCount = count
	}
	return rate, count, nil
}

func (m *mockProductRepo) ListReviews(_ context.Context, productID uuid.UUID) ([]model.Review, error) {
	var out []model.Review
	for _, r := range m.reviews[productID] {
		out = append(out, *r)
	}
	return out, nil
}

func TestProductService_Create(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), mockTxManager{}, nil)
	product, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Title: "Mechanical Keyboard", Price: decimal.NewFromFloat(79.99),
		Category: "electronics", Stock: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mechanical Keyboard", product.Title)
	assert.Equal(t, model.SourceDatabase, product.Source)
	assert.Equal(t, 25, product.Stock)
}

func TestProductService_Create_UnknownCategory(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), mockTxManager{}, nil)
	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Title: "Widget", Price: decimal.NewFromInt(1), Category: "gadgets",
	})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), mockTxManager{}, nil)
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Update_PartialPatch(t *testing.T) {
	repo := newMockProductRepo()
	id := uuid.New()
	repo.products[id] = &model.Product{
		ID: id, Title: "Old Title", Price: decimal.NewFromInt(10),
		Category: "books", Stock: 5,
	}
	svc := NewProductService(repo, mockTxManager{}, nil)

	newStock := 12
	product, err := svc.Update(context.Background(), id, dto.UpdateProductRequest{Stock: &newStock})
	require.NoError(t, err)
	assert.Equal(t, 12, product.Stock)
	assert.Equal(t, "Old Title", product.Title)
}

func TestProductService_Update_UnknownCategory(t *testing.T) {
	repo := newMockProductRepo()
	id := uuid.New()
	repo.products[id] = &model.Product{ID: id, Category: "books"}
	svc := NewProductService(repo, mockTxManager{}, nil)

	bad := "gadgets"
	_, err := svc.Update(context.Background(), id, dto.UpdateProductRequest{Category: &bad})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestProductService_Delete(t *testing.T) {
	repo := newMockProductRepo()
	id := uuid.New()
	repo.products[id] = &model.Product{ID: id}
	svc := NewProductService(repo, mockTxManager{}, nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.Empty(t, repo.products)
}

func TestProductService_UpsertReview_AggregatesRating(t *testing.T) {
	repo := newMockProductRepo()
	id := uuid.New()
	repo.products[id] = &model.Product{ID: id, Title: "Novel", Category: "books"}
	svc := NewProductService(repo, mockTxManager{}, nil)

	alice := model.Principal{UserID: uuid.New(), Role: model.RoleCustomer}
	bob := model.Principal{UserID: uuid.New(), Role: model.RoleCustomer}

	_, err := svc.UpsertReview(context.Background(), alice, "Alice", id, dto.UpsertReviewRequest{Rating: 5})
	require.NoError(t, err)
	product, err := svc.UpsertReview(context.Background(), bob, "Bob", id, dto.UpsertReviewRequest{Rating: 3})
	require.NoError(t, err)

	assert.Equal(t, 2, product.RatingCount)
	assert.InDelta(t, 4.0, product.RatingRate, 0.001)

	// Resubmitting overwrites the earlier review instead of adding one.
	product, err = svc.UpsertReview(context.Background(), alice, "Alice", id, dto.UpsertReviewRequest{Rating: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, product.RatingCount)
	assert.InDelta(t, 2.0, product.RatingRate, 0.001)
}

func TestProductService_UpsertReview_MaterializesExternalProduct(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, mockTxManager{}, nil)

	principal := model.Principal{UserID: uuid.New(), Role: model.RoleCustomer}
	product, err := svc.UpsertReview(context.Background(), principal, "Alice", uuid.New(), dto.UpsertReviewRequest{
		Rating: 4,
		Product: &dto.ExternalProduct{
			Title: "Imported Lamp", Price: decimal.NewFromFloat(34.50),
			Category: "furniture", Image: "https://cdn.example.com/lamp.jpg",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.SourceFrontend, product.Source)
	assert.Equal(t, 1, product.RatingCount)
	assert.Len(t, repo.products, 1)
}

func TestProductService_UpsertReview_UnknownProduct(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), mockTxManager{}, nil)
	principal := model.Principal{UserID: uuid.New(), Role: model.RoleCustomer}
	_, err := svc.UpsertReview(context.Background(), principal, "Alice", uuid.New(), dto.UpsertReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, ErrProductNotFound)
}
