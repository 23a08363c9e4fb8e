package middleware

import (
	"banking-backend/internal/auth"
	"banking-backend/internal/domain/admin"
	"banking-backend/internal/domain/customer"
	"banking-backend/internal/pkg/apperrors"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) RegisterCustomer(ctx context.Context, input auth.RegisterInput) (*customer.Customer, error) {
	args := m.Called(ctx, input)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, isAdmin bool) (string, error) {
	args := m.Called(ctx, email, password, isAdmin)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) CurrentCustomer(ctx context.Context, token string) (*customer.Customer, error) {
	args := m.Called(ctx, token)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) CurrentAdmin(ctx context.Context, token string) (*admin.Admin, error) {
	args := m.Called(ctx, token)
	if adm, ok := args.Get(0).(*admin.Admin); ok {
		return adm, args.Error(1)
	}
	return nil, args.Error(1)
}

var testLogger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

func TestRequireCustomer(t *testing.T) {
	t.Run("injects the resolved customer into the context", func(t *testing.T) {
		mockService := new(MockAuthService)
		cust := &customer.Customer{ID: 1, Email: "alice@example.com"}
		mockService.On("CurrentCustomer", mock.Anything, "valid-token").Return(cust, nil)

		var seen *customer.Customer
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = CustomerFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/customers/me", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()

		RequireCustomer(mockService, testLogger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, cust, seen)
	})

	t.Run("returns 401 without an Authorization header", func(t *testing.T) {
		mockService := new(MockAuthService)
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/customers/me", nil)
		rec := httptest.NewRecorder()

		RequireCustomer(mockService, testLogger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		assert.Contains(t, rec.Body.String(), "could not validate credentials")
		mockService.AssertNotCalled(t, "CurrentCustomer", mock.Anything, mock.Anything)
	})

	t.Run("returns 401 for a malformed Authorization header", func(t *testing.T) {
		mockService := new(MockAuthService)
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/customers/me", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()

		RequireCustomer(mockService, testLogger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns 403 with the role message for an admin token", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("CurrentCustomer", mock.Anything, "admin-token").
			Return(nil, fmt.Errorf("%w: not authorized for customer access", apperrors.ErrForbidden))

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/customers/me", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		rec := httptest.NewRecorder()

		RequireCustomer(mockService, testLogger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"not authorized for customer access"}}`, rec.Body.String())
	})

	t.Run("collapses invalid tokens into a generic 401", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("CurrentCustomer", mock.Anything, "expired-token").
			Return(nil, apperrors.ErrUnauthorized)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/customers/me", nil)
		req.Header.Set("Authorization", "Bearer expired-token")
		rec := httptest.NewRecorder()

		RequireCustomer(mockService, testLogger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "could not validate credentials")
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("injects the resolved admin into the context", func(t *testing.T) {
		mockService := new(MockAuthService)
		adm := &admin.Admin{ID: 1, Email: "root@example.com"}
		mockService.On("CurrentAdmin", mock.Anything, "admin-token").Return(adm, nil)

		var seen *admin.Admin
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = AdminFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/admins/loans", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		rec := httptest.NewRecorder()

		RequireAdmin(mockService, testLogger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, adm, seen)
	})

	t.Run("returns 403 with the role message for a customer token", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("CurrentAdmin", mock.Anything, "customer-token").
			Return(nil, fmt.Errorf("%w: not authorized for admin access", apperrors.ErrForbidden))

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/admins/loans", nil)
		req.Header.Set("Authorization", "Bearer customer-token")
		rec := httptest.NewRecorder()

		RequireAdmin(mockService, testLogger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"not authorized for admin access"}}`, rec.Body.String())
	})
}
