package customer

import "context"

type Repository interface {
	// Create persists a new customer. Returns apperrors.ErrConflict when
	// the email is already registered.
	Create(ctx context.Context, cust *Customer) (*Customer, error)

	// FindByEmail returns apperrors.ErrNotFound when no customer owns the
	// given email.
	FindByEmail(ctx context.Context, email string) (*Customer, error)
}
