package auth

import (
	"banking-backend/internal/config"
	"banking-backend/internal/domain/admin"
	"banking-backend/internal/domain/customer"
	"banking-backend/internal/pkg/apperrors"
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, cust *customer.Customer) (*customer.Customer, error) {
	args := m.Called(ctx, cust)
	if created, ok := args.Get(0).(*customer.Customer); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	args := m.Called(ctx, email)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, adm *admin.Admin) (*admin.Admin, error) {
	args := m.Called(ctx, adm)
	if created, ok := args.Get(0).(*admin.Admin); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminRepository) FindByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	args := m.Called(ctx, email)
	if adm, ok := args.Get(0).(*admin.Admin); ok {
		return adm, args.Error(1)
	}
	return nil, args.Error(1)
}

func newServiceUnderTest(t *testing.T) (AuthService, *MockCustomerRepository, *MockAdminRepository, *TokenIssuer) {
	t.Helper()
	customers := new(MockCustomerRepository)
	admins := new(MockAdminRepository)
	issuer, err := NewTokenIssuer(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	assert.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewAuthService(customers, admins, issuer, logger), customers, admins, issuer
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := HashPassword(password)
	assert.NoError(t, err)
	return hash
}

func TestRegisterCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("should hash the password and persist the customer", func(t *testing.T) {
		service, customers, _, _ := newServiceUnderTest(t)

		customers.On("Create", ctx, mock.AnythingOfType("*customer.Customer")).
			Run(func(args mock.Arguments) {
				cust := args.Get(1).(*customer.Customer)
				assert.NotEqual(t, "password1", cust.PasswordHash)
				assert.True(t, CheckPassword("password1", cust.PasswordHash))
			}).
			Return(&customer.Customer{ID: 1, Name: "Alice", Email: "alice@example.com", Age: 30}, nil)

		created, err := service.RegisterCustomer(ctx, RegisterInput{
			Name: "Alice", Email: "alice@example.com", Password: "password1", Age: 30,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		customers.AssertExpectations(t)
	})

	t.Run("should reject an underage applicant", func(t *testing.T) {
		service, customers, _, _ := newServiceUnderTest(t)

		_, err := service.RegisterCustomer(ctx, RegisterInput{
			Name: "Kid", Email: "kid@example.com", Password: "password1", Age: 17,
		})
		assert.Error(t, err)
		var validationErr *apperrors.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "age", validationErr.Field)
		customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("should reject an empty password", func(t *testing.T) {
		service, _, _, _ := newServiceUnderTest(t)

		_, err := service.RegisterCustomer(ctx, RegisterInput{
			Name: "Bob", Email: "bob@example.com", Password: "  ", Age: 25,
		})
		assert.Error(t, err)
	})

	t.Run("should surface a duplicate email as conflict", func(t *testing.T) {
		service, customers, _, _ := newServiceUnderTest(t)

		customers.On("Create", ctx, mock.AnythingOfType("*customer.Customer")).
			Return(nil, apperrors.ErrConflict)

		_, err := service.RegisterCustomer(ctx, RegisterInput{
			Name: "Alice", Email: "alice@example.com", Password: "password1", Age: 30,
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Contains(t, err.Error(), "email already registered")
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("should issue a customer token for valid credentials", func(t *testing.T) {
		service, customers, _, issuer := newServiceUnderTest(t)

		customers.On("FindByEmail", ctx, "alice@example.com").
			Return(&customer.Customer{ID: 1, Email: "alice@example.com", PasswordHash: mustHash(t, "password1")}, nil)

		token, err := service.Login(ctx, "Alice@Example.com", "password1", false)
		assert.NoError(t, err)

		claims, err := issuer.Verify(token)
		assert.NoError(t, err)
		assert.Equal(t, "alice@example.com", claims.Subject)
		assert.False(t, claims.IsAdmin)
	})

	t.Run("should issue an admin token against the admin table", func(t *testing.T) {
		service, customers, admins, issuer := newServiceUnderTest(t)

		admins.On("FindByEmail", ctx, "root@example.com").
			Return(&admin.Admin{ID: 1, Email: "root@example.com", PasswordHash: mustHash(t, "admin-pass")}, nil)

		token, err := service.Login(ctx, "root@example.com", "admin-pass", true)
		assert.NoError(t, err)

		claims, err := issuer.Verify(token)
		assert.NoError(t, err)
		assert.True(t, claims.IsAdmin)
		customers.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("should not reveal whether the email exists", func(t *testing.T) {
		service, customers, _, _ := newServiceUnderTest(t)

		customers.On("FindByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

		_, errUnknown := service.Login(ctx, "ghost@example.com", "whatever", false)
		assert.ErrorIs(t, errUnknown, apperrors.ErrUnauthorized)

		customers.On("FindByEmail", ctx, "alice@example.com").
			Return(&customer.Customer{Email: "alice@example.com", PasswordHash: mustHash(t, "password1")}, nil)

		_, errWrongPass := service.Login(ctx, "alice@example.com", "wrong", false)
		assert.ErrorIs(t, errWrongPass, apperrors.ErrUnauthorized)

		assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	})
}

func TestCurrentCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("should resolve a customer token to the account", func(t *testing.T) {
		service, customers, _, issuer := newServiceUnderTest(t)

		token, err := issuer.Issue("alice@example.com", false)
		assert.NoError(t, err)

		customers.On("FindByEmail", ctx, "alice@example.com").
			Return(&customer.Customer{ID: 1, Email: "alice@example.com"}, nil)

		cust, err := service.CurrentCustomer(ctx, token)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), cust.ID)
	})

	t.Run("should forbid an admin token", func(t *testing.T) {
		service, customers, _, issuer := newServiceUnderTest(t)

		token, err := issuer.Issue("root@example.com", true)
		assert.NoError(t, err)

		_, err = service.CurrentCustomer(ctx, token)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		customers.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("should treat an unknown account as unauthorized", func(t *testing.T) {
		service, customers, _, issuer := newServiceUnderTest(t)

		token, err := issuer.Issue("deleted@example.com", false)
		assert.NoError(t, err)

		customers.On("FindByEmail", ctx, "deleted@example.com").Return(nil, apperrors.ErrNotFound)

		_, err = service.CurrentCustomer(ctx, token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("should treat a garbage token as unauthorized", func(t *testing.T) {
		service, _, _, _ := newServiceUnderTest(t)

		_, err := service.CurrentCustomer(ctx, "garbage")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestCurrentAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("should resolve an admin token to the account", func(t *testing.T) {
		service, _, admins, issuer := newServiceUnderTest(t)

		token, err := issuer.Issue("root@example.com", true)
		assert.NoError(t, err)

		admins.On("FindByEmail", ctx, "root@example.com").
			Return(&admin.Admin{ID: 1, Email: "root@example.com"}, nil)

		adm, err := service.CurrentAdmin(ctx, token)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), adm.ID)
	})

	t.Run("should forbid a customer token", func(t *testing.T) {
		service, _, admins, issuer := newServiceUnderTest(t)

		token, err := issuer.Issue("alice@example.com", false)
		assert.NoError(t, err)

		_, err = service.CurrentAdmin(ctx, token)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		admins.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}
