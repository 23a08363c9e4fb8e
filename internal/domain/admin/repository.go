package admin

import "context"

type Repository interface {
	// Create persists a new admin. Returns apperrors.ErrConflict when the
	// username or email is already taken.
	Create(ctx context.Context, adm *Admin) (*Admin, error)

	// FindByEmail returns apperrors.ErrNotFound when no admin owns the
	// given email.
	FindByEmail(ctx context.Context, email string) (*Admin, error)
}
