package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/marketgo/storefront-api/internal/dto"
	"github.com/marketgo/storefront-api/internal/model"
)

type mockUserRepo struct {
	users map[string]*model.User
	byID  map[uuid.UUID]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User), byID: make(map[uuid.UUID]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m.byID[id], nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.users[email], nil
}

func (m *mockUserRepo) UpgradeToSeller(_ context.Context, id uuid.UUID, storeName, storeDescription string) error {
	user, ok := m.byID[id]
	if !ok {
		return nil
	}
	user.Role = model.RoleSeller
	user.StoreName = storeName
	user.StoreDescription = storeDescription
	return nil
}

func TestAuthService_Register(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Password: "password123", Name: "Jordan Reyes",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "test@example.com", resp.User.Email)
	assert.Equal(t, model.RoleCustomer, resp.User.Role)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	repo.users["test@example.com"] = &model.User{Email: "test@example.com"}

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Password: "password123", Name: "Jordan Reyes",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	repo.users["test@example.com"] = &model.User{
		ID: uuid.New(), Email: "test@example.com", Password: string(hashed),
		Role: model.RoleCustomer, Active: true,
	}

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "test@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	repo.users["test@example.com"] = &model.User{
		ID: uuid.New(), Email: "test@example.com", Password: string(hashed), Active: true,
	}

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "test@example.com", Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_Disabled(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	repo.users["test@example.com"] = &model.User{
		ID: uuid.New(), Email: "test@example.com", Password: string(hashed), Active: false,
	}

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "test@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthService_BecomeSeller(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	user := &model.User{Email: "seller@example.com", Role: model.RoleCustomer, Active: true}
	require.NoError(t, repo.Create(context.Background(), user))

	upgraded, err := svc.BecomeSeller(context.Background(), user.ID, dto.BecomeSellerRequest{
		StoreName: "Reyes Goods", StoreDescription: "Handmade furniture",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleSeller, upgraded.Role)
	assert.Equal(t, "Reyes Goods", upgraded.StoreName)

	_, err = svc.BecomeSeller(context.Background(), user.ID, dto.BecomeSellerRequest{StoreName: "Again"})
	assert.ErrorIs(t, err, ErrAlreadySeller)
}

func TestAuthService_EnsureAdmin_Idempotent(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "bootstrap-pw", "Admin"))
	require.Len(t, repo.users, 1)
	assert.Equal(t, model.RoleAdmin, repo.users["admin@example.com"].Role)

	firstID := repo.users["admin@example.com"].ID
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "bootstrap-pw", "Admin"))
	assert.Len(t, repo.users, 1)
	assert.Equal(t, firstID, repo.users["admin@example.com"].ID)
}
