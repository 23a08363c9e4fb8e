package middleware

import (
	"banking-backend/internal/auth"
	"banking-backend/internal/domain/admin"
	"banking-backend/internal/domain/customer"
	"banking-backend/internal/pkg/apperrors"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const (
	customerContextKey contextKey = "authenticatedCustomer"
	adminContextKey    contextKey = "authenticatedAdmin"
)

// CustomerFromContext returns the principal resolved by RequireCustomer.
// Handlers never re-derive identity from raw claims.
func CustomerFromContext(ctx context.Context) (*customer.Customer, bool) {
	cust, ok := ctx.Value(customerContextKey).(*customer.Customer)
	return cust, ok
}

func AdminFromContext(ctx context.Context) (*admin.Admin, bool) {
	adm, ok := ctx.Value(adminContextKey).(*admin.Admin)
	return adm, ok
}

func WithCustomer(ctx context.Context, cust *customer.Customer) context.Context {
	return context.WithValue(ctx, customerContextKey, cust)
}

func WithAdmin(ctx context.Context, adm *admin.Admin) context.Context {
	return context.WithValue(ctx, adminContextKey, adm)
}

// RequireCustomer resolves the bearer token into a customer principal and
// stores it in the request context. Role mismatch is Forbidden; anything
// else (missing/invalid token, unknown account) is Unauthorized.
func RequireCustomer(authService auth.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r, logger)
			if !ok {
				respondAuthError(w, apperrors.ErrUnauthorized)
				return
			}

			cust, err := authService.CurrentCustomer(r.Context(), token)
			if err != nil {
				logger.Warn("Customer gate rejected request", "error", err)
				respondAuthError(w, err)
				return
			}

			ctx := WithCustomer(r.Context(), cust)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin mirrors RequireCustomer for the admin role.
func RequireAdmin(authService auth.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r, logger)
			if !ok {
				respondAuthError(w, apperrors.ErrUnauthorized)
				return
			}

			adm, err := authService.CurrentAdmin(r.Context(), token)
			if err != nil {
				logger.Warn("Admin gate rejected request", "error", err)
				respondAuthError(w, err)
				return
			}

			ctx := WithAdmin(r.Context(), adm)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request, logger *slog.Logger) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.Warn("Missing Authorization header")
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		logger.Warn("Invalid Authorization header format")
		return "", false
	}
	return parts[1], true
}

func respondAuthError(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	message := apperrors.ErrUnauthorized.Error()

	if errors.Is(err, apperrors.ErrForbidden) {
		status = http.StatusForbidden
		message = apperrors.Detail(err, apperrors.ErrForbidden)
	} else {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"message": message,
		},
	})
}
