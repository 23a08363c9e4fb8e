package loan

import (
	"banking-backend/internal/pkg/apperrors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseDecision maps a requested target status onto the two legal
// transitions. Anything else is a validation error, including "pending".
func ParseDecision(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", apperrors.NewValidationError("status", "status must be 'approved' or 'rejected'")
	}
}

// Loan is a single application moving through pending -> approved/rejected.
// EMI is populated exactly once, when the loan is approved.
type Loan struct {
	ID           int64
	CustomerID   int64
	LoanType     string
	Amount       float64
	TenureMonths int
	InterestRate float64
	EMI          *float64
	Status       Status
	AppliedAt    time.Time
	UpdatedAt    *time.Time
}

func NewLoan(customerID int64, loanType string, amount float64, tenureMonths int, interestRate float64) (*Loan, error) {
	loanType = strings.TrimSpace(loanType)
	if loanType == "" {
		return nil, apperrors.NewValidationError("loan_type", "loan type cannot be empty")
	}
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount", "amount must be greater than zero")
	}
	if tenureMonths <= 0 {
		return nil, apperrors.NewValidationError("tenure_months", "tenure must be a positive number of months")
	}
	if interestRate < 0 {
		return nil, apperrors.NewValidationError("interest_rate", "interest rate cannot be negative")
	}

	return &Loan{
		CustomerID:   customerID,
		LoanType:     loanType,
		Amount:       amount,
		TenureMonths: tenureMonths,
		InterestRate: interestRate,
		EMI:          nil,
		Status:       StatusPending,
	}, nil
}

func (l *Loan) IsTerminal() bool {
	return l.Status == StatusApproved || l.Status == StatusRejected
}

// Decide applies the single allowed transition. Approval computes and sets
// the EMI from the stored terms; rejection leaves it nil. Both stamp
// UpdatedAt. Calling Decide on a non-pending loan fails and leaves the
// loan untouched.
func (l *Loan) Decide(target Status) error {
	if target != StatusApproved && target != StatusRejected {
		return apperrors.NewValidationError("status", "status must be 'approved' or 'rejected'")
	}
	if l.Status != StatusPending {
		return fmt.Errorf("%w: loan %d is %s", apperrors.ErrLoanNotPending, l.ID, l.Status)
	}

	now := time.Now()
	l.Status = target
	l.UpdatedAt = &now
	if target == StatusApproved {
		emi := CalculateEMI(l.Amount, l.InterestRate, l.TenureMonths)
		l.EMI = &emi
	}
	return nil
}

// PreviewEMI is the read-only projection shown to admins on the pending
// list. It never touches the stored EMI field.
func (l *Loan) PreviewEMI() float64 {
	return CalculateEMI(l.Amount, l.InterestRate, l.TenureMonths)
}
