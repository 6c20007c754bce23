package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgo/storefront-api/internal/model"
)

type mockCartRepo struct {
	carts  map[uuid.UUID]*model.Cart
	byUser map[uuid.UUID]uuid.UUID
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{
		carts:  make(map[uuid.UUID]*model.Cart),
		byUser: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockCartRepo) GetOrCreateCart(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	if cartID, ok := m.byUser[userID]; ok {
		return m.carts[cartID], nil
	}
	cart := &model.Cart{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}
	m.carts[cart.ID] = cart
	m.byUser[userID] = cart.ID
	return cart, nil
}

func (m *mockCartRepo) GetCartWithItems(_ context.Context, cartID uuid.UUID) (*model.Cart, error) {
	return m.carts[cartID], nil
}

func (m *mockCartRepo) AddItem(_ context.Context, item *model.CartItem) error {
	cart, ok := m.carts[item.CartID]
	if !ok {
		return pgx.ErrNoRows
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			return nil
		}
	}
	item.ID = uuid.New()
	cart.Items = append(cart.Items, *item)
	return nil
}

func (m *mockCartRepo) UpdateItem(_ context.Context, item *model.CartItem) error {
	for _, cart := range m.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == item.ID {
				cart.Items[i].Quantity = item.Quantity
				return nil
			}
		}
	}
	return pgx.ErrNoRows
}

func (m *mockCartRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	for _, cart := range m.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
	}
	return pgx.ErrNoRows
}

func (m *mockCartRepo) ClearCartTx(_ context.Context, _ pgx.Tx, cartID uuid.UUID) error {
	if cart, ok := m.carts[cartID]; ok {
		cart.Items = nil
	}
	return nil
}

func TestCartService_AddItem(t *testing.T) {
	productRepo := newMockProductRepo()
	productID := uuid.New()
	productRepo.products[productID] = &model.Product{ID: productID, Stock: 10}
	cartRepo := newMockCartRepo()
	svc := NewCartService(cartRepo, productRepo)

	userID := uuid.New()
	require.NoError(t, svc.AddItem(context.Background(), userID, productID, 2))

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// Same product again merges into the existing line.
	require.NoError(t, svc.AddItem(context.Background(), userID, productID, 3))
	cart, err = svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCartService_AddItem_UnknownProduct(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockProductRepo())
	err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_UpdateItem_NotOwned(t *testing.T) {
	productRepo := newMockProductRepo()
	productID := uuid.New()
	productRepo.products[productID] = &model.Product{ID: productID}
	cartRepo := newMockCartRepo()
	svc := NewCartService(cartRepo, productRepo)

	owner := uuid.New()
	require.NoError(t, svc.AddItem(context.Background(), owner, productID, 1))
	cart, err := svc.GetCart(context.Background(), owner)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	err = svc.UpdateItem(context.Background(), uuid.New(), itemID, 5)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	require.NoError(t, svc.UpdateItem(context.Background(), owner, itemID, 5))
	cart, err = svc.GetCart(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCartService_DeleteItem(t *testing.T) {
	productRepo := newMockProductRepo()
	productID := uuid.New()
	productRepo.products[productID] = &model.Product{ID: productID}
	cartRepo := newMockCartRepo()
	svc := NewCartService(cartRepo, productRepo)

	userID := uuid.New()
	require.NoError(t, svc.AddItem(context.Background(), userID, productID, 1))
	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteItem(context.Background(), userID, cart.Items[0].ID))
	cart, err = svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
