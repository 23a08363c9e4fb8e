package batch

import (
	"banking-backend/internal/domain/loan"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan) (*loan.Loan, error) {
	args := m.Called(ctx, newLoan)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) ListByCustomer(ctx context.Context, customerID int64) ([]loan.Loan, error) {
	args := m.Called(ctx, customerID)
	if loans, ok := args.Get(0).([]loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) ListByStatus(ctx context.Context, status loan.Status) ([]loan.Loan, error) {
	args := m.Called(ctx, status)
	if loans, ok := args.Get(0).([]loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) DecideLoan(ctx context.Context, loanID int64, target loan.Status) (*loan.Loan, error) {
	args := m.Called(ctx, loanID, target)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func newJobLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestPendingReviewJobRun(t *testing.T) {
	ctx := context.Background()

	t.Run("completes with an empty queue", func(t *testing.T) {
		mockRepo := new(MockLoanRepository)
		mockRepo.On("ListByStatus", ctx, loan.StatusPending).Return([]loan.Loan{}, nil)

		job := NewPendingReviewJob(mockRepo, 72*time.Hour, newJobLogger())
		assert.NoError(t, job.Run(ctx))
		mockRepo.AssertExpectations(t)
	})

	t.Run("flags applications older than the maximum age", func(t *testing.T) {
		mockRepo := new(MockLoanRepository)
		now := time.Now()
		pending := []loan.Loan{
			{ID: 1, AppliedAt: now.Add(-100 * time.Hour), Status: loan.StatusPending},
			{ID: 2, AppliedAt: now.Add(-1 * time.Hour), Status: loan.StatusPending},
		}
		mockRepo.On("ListByStatus", ctx, loan.StatusPending).Return(pending, nil)

		job := NewPendingReviewJob(mockRepo, 72*time.Hour, newJobLogger())
		assert.NoError(t, job.Run(ctx))
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		mockRepo := new(MockLoanRepository)
		mockRepo.On("ListByStatus", ctx, loan.StatusPending).Return(nil, errors.New("connection refused"))

		job := NewPendingReviewJob(mockRepo, 72*time.Hour, newJobLogger())
		assert.Error(t, job.Run(ctx))
	})

	t.Run("defaults a non-positive maximum age", func(t *testing.T) {
		mockRepo := new(MockLoanRepository)
		job := NewPendingReviewJob(mockRepo, 0, newJobLogger())
		assert.Equal(t, 72*time.Hour, job.maxAge)
	})
}
