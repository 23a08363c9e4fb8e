package loan

import (
	"banking-backend/internal/event"
	"banking-backend/internal/infrastructure/monitoring"
	"banking-backend/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

type LoanService interface {
	// Apply creates a new pending loan owned by the customer. EMI is nil
	// until an admin approves the loan.
	Apply(ctx context.Context, customerID int64, loanType string, amount float64, tenureMonths int, interestRate float64) (*Loan, error)

	// ListPending returns every loan waiting for review (admin view).
	ListPending(ctx context.Context) ([]Loan, error)

	// ListForCustomer returns all loans owned by the customer, in every
	// status.
	ListForCustomer(ctx context.Context, customerID int64) ([]Loan, error)

	// GetForCustomer returns one loan owned by the customer. A loan owned
	// by someone else surfaces as not found, so the endpoint does not leak
	// which loan IDs exist.
	GetForCustomer(ctx context.Context, customerID, loanID int64) (*Loan, error)

	// Decide transitions a pending loan to approved or rejected.
	Decide(ctx context.Context, loanID int64, target Status) (*Loan, error)
}

type loanService struct {
	repo   Repository
	pub    event.Publisher
	logger *slog.Logger
}

var _ LoanService = (*loanService)(nil)

func NewLoanService(repo Repository, pub event.Publisher, logger *slog.Logger) LoanService {
	if repo == nil {
		panic("loan repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewLoanService, using default stderr handler")
	}

	return &loanService{
		repo:   repo,
		pub:    pub,
		logger: logger.With(slog.String("component", "loanService")),
	}
}

func (s *loanService) Apply(ctx context.Context, customerID int64, loanType string, amount float64, tenureMonths int, interestRate float64) (*Loan, error) {
	s.logger.InfoContext(ctx, "Creating new loan application", "customerID", customerID, "loanType", loanType)

	newLoan, err := NewLoan(customerID, loanType, amount, tenureMonths, interestRate)
	if err != nil {
		s.logger.WarnContext(ctx, "Loan application failed validation", slog.Any("error", err))
		return nil, err
	}

	created, err := s.repo.CreateLoan(ctx, newLoan)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save loan application", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save loan application: %w", err)
	}

	monitoring.RecordLoanApplication()
	s.publish(ctx, event.RoutingKeyLoanApplied, created)
	s.logger.InfoContext(ctx, "Loan application created", "loanID", created.ID, "customerID", customerID)
	return created, nil
}

func (s *loanService) ListPending(ctx context.Context) ([]Loan, error) {
	s.logger.InfoContext(ctx, "Listing loans pending review")

	loans, err := s.repo.ListByStatus(ctx, StatusPending)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing pending loans", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list pending loans: %w", err)
	}
	return loans, nil
}

func (s *loanService) ListForCustomer(ctx context.Context, customerID int64) ([]Loan, error) {
	s.logger.InfoContext(ctx, "Listing loans for customer", "customerID", customerID)

	loans, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customer loans", "customerID", customerID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loans for customer %d: %w", customerID, err)
	}
	return loans, nil
}

func (s *loanService) GetForCustomer(ctx context.Context, customerID, loanID int64) (*Loan, error) {
	s.logger.InfoContext(ctx, "Fetching loan for customer", "customerID", customerID, "loanID", loanID)

	found, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Repository error fetching loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch loan %d: %w", loanID, err)
	}
	if found.CustomerID != customerID {
		s.logger.WarnContext(ctx, "Customer requested a loan they do not own", "customerID", customerID, "loanID", loanID)
		return nil, apperrors.ErrNotFound
	}
	return found, nil
}

func (s *loanService) Decide(ctx context.Context, loanID int64, target Status) (*Loan, error) {
	logCtx := s.logger.With("loanID", loanID, "target", string(target))
	logCtx.InfoContext(ctx, "Deciding loan")

	if target != StatusApproved && target != StatusRejected {
		logCtx.WarnContext(ctx, "Rejecting unknown target status")
		return nil, apperrors.NewValidationError("status", "status must be 'approved' or 'rejected'")
	}

	decided, err := s.repo.DecideLoan(ctx, loanID, target)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logCtx.WarnContext(ctx, "Loan not found")
		case errors.Is(err, apperrors.ErrLoanNotPending):
			logCtx.WarnContext(ctx, "Loan already decided")
		default:
			logCtx.ErrorContext(ctx, "Repository error deciding loan", slog.Any("error", err))
		}
		return nil, err
	}

	monitoring.RecordLoanDecision(string(target))
	routingKey := event.RoutingKeyLoanApproved
	if target == StatusRejected {
		routingKey = event.RoutingKeyLoanRejected
	}
	s.publish(ctx, routingKey, decided)

	logCtx.InfoContext(ctx, "Loan decided", "status", string(decided.Status))
	return decided, nil
}

// publish is best-effort: a broker outage must not fail the request.
func (s *loanService) publish(ctx context.Context, routingKey string, l *Loan) {
	if s.pub == nil {
		return
	}
	evt := event.NewLoanEvent(l.ID, l.CustomerID, l.LoanType, l.Amount, l.TenureMonths, l.InterestRate, l.EMI, string(l.Status))
	if err := s.pub.PublishLoanEvent(ctx, routingKey, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish loan event", "routingKey", routingKey, slog.Any("error", err))
	}
}
