package auth

import (
	"banking-backend/internal/domain/admin"
	"banking-backend/internal/domain/customer"
	"banking-backend/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	msgBadLogin          = "incorrect email or password"
	msgNotCustomerAccess = "not authorized for customer access"
	msgNotAdminAccess    = "not authorized for admin access"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
	Phone    *string
	Address  *string
}

// AuthService composes the credential verifier and the token service: it
// registers customers, authenticates either principal type, and resolves a
// bearer token into an authenticated principal of a required role.
type AuthService interface {
	RegisterCustomer(ctx context.Context, input RegisterInput) (*customer.Customer, error)

	// Login verifies credentials for the requested principal type and
	// issues a signed access token. A mismatch of any kind surfaces as
	// one uniform Unauthorized error.
	Login(ctx context.Context, email, password string, isAdmin bool) (string, error)

	// CurrentCustomer is the customer gate: Forbidden for an admin token,
	// Unauthorized for an invalid token or an unknown account.
	CurrentCustomer(ctx context.Context, token string) (*customer.Customer, error)

	// CurrentAdmin mirrors CurrentCustomer for the admin role.
	CurrentAdmin(ctx context.Context, token string) (*admin.Admin, error)
}

type authService struct {
	customers customer.Repository
	admins    admin.Repository
	tokens    *TokenIssuer
	logger    *slog.Logger
}

var _ AuthService = (*authService)(nil)

func NewAuthService(customers customer.Repository, admins admin.Repository, tokens *TokenIssuer, logger *slog.Logger) AuthService {
	if customers == nil || admins == nil {
		panic("auth service repositories cannot be nil")
	}
	if tokens == nil {
		panic("token issuer cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	return &authService{
		customers: customers,
		admins:    admins,
		tokens:    tokens,
		logger:    logger.With(slog.String("component", "authService")),
	}
}

func (s *authService) RegisterCustomer(ctx context.Context, input RegisterInput) (*customer.Customer, error) {
	s.logger.InfoContext(ctx, "Registering new customer")

	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewValidationError("password", "password cannot be empty")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to hash password", apperrors.ErrInternalServer)
	}

	cust, err := customer.NewCustomer(input.Name, input.Email, hash, input.Age, input.Phone, input.Address)
	if err != nil {
		s.logger.WarnContext(ctx, "Customer registration failed validation", slog.Any("error", err))
		return nil, err
	}

	created, err := s.customers.Create(ctx, cust)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.logger.WarnContext(ctx, "Registration rejected: email already registered")
			return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
		}
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	s.logger.InfoContext(ctx, "Customer registered", "customerID", created.ID)
	return created, nil
}

func (s *authService) Login(ctx context.Context, email, password string, isAdmin bool) (string, error) {
	s.logger.InfoContext(ctx, "Authenticating principal", "isAdmin", isAdmin)
	email = strings.TrimSpace(strings.ToLower(email))

	var hash string
	if isAdmin {
		adm, err := s.admins.FindByEmail(ctx, email)
		if err != nil {
			return "", s.loginFailure(ctx, err)
		}
		hash = adm.PasswordHash
	} else {
		cust, err := s.customers.FindByEmail(ctx, email)
		if err != nil {
			return "", s.loginFailure(ctx, err)
		}
		hash = cust.PasswordHash
	}

	if !CheckPassword(password, hash) {
		s.logger.WarnContext(ctx, "Login rejected: password mismatch")
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, msgBadLogin)
	}

	token, err := s.tokens.Issue(email, isAdmin)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to issue access token", slog.Any("error", err))
		return "", fmt.Errorf("%w: failed to issue token", apperrors.ErrInternalServer)
	}

	s.logger.InfoContext(ctx, "Login succeeded", "isAdmin", isAdmin)
	return token, nil
}

func (s *authService) loginFailure(ctx context.Context, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "Login rejected: unknown email")
		return fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, msgBadLogin)
	}
	s.logger.ErrorContext(ctx, "Repository error during login", slog.Any("error", err))
	return fmt.Errorf("failed to look up principal: %w", err)
}

func (s *authService) CurrentCustomer(ctx context.Context, token string) (*customer.Customer, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.IsAdmin {
		s.logger.WarnContext(ctx, "Admin token presented at customer gate")
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, msgNotCustomerAccess)
	}

	cust, err := s.customers.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Valid token for unknown customer account")
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve customer principal: %w", err)
	}
	return cust, nil
}

func (s *authService) CurrentAdmin(ctx context.Context, token string) (*admin.Admin, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin {
		s.logger.WarnContext(ctx, "Customer token presented at admin gate")
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, msgNotAdminAccess)
	}

	adm, err := s.admins.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Valid token for unknown admin account")
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve admin principal: %w", err)
	}
	return adm, nil
}
