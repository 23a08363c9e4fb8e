package loan

import "context"

type Repository interface {
	CreateLoan(ctx context.Context, newLoan *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID int64) (*Loan, error)

	ListByCustomer(ctx context.Context, customerID int64) ([]Loan, error)

	ListByStatus(ctx context.Context, status Status) ([]Loan, error)

	// DecideLoan locks the loan row, verifies it is still pending and
	// persists the transition in one transaction, so concurrent decisions
	// against the same loan serialize: the first writer wins and the
	// second observes apperrors.ErrLoanNotPending. Returns
	// apperrors.ErrNotFound for an unknown loan ID.
	DecideLoan(ctx context.Context, loanID int64, target Status) (*Loan, error)
}
