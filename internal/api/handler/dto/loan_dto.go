package dto

import (
	"banking-backend/internal/domain/loan"
	"time"
)

type ApplyLoanRequest struct {
	LoanType     string  `json:"loan_type" validate:"required"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	TenureMonths int     `json:"tenure_months" validate:"required,gt=0"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0"`
}

func (r *ApplyLoanRequest) Validate() error {
	return validateStruct(r)
}

type DecideLoanRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r *DecideLoanRequest) Validate() error {
	return validateStruct(r)
}

type LoanResponse struct {
	ID           int64      `json:"id"`
	CustomerID   int64      `json:"customer_id"`
	LoanType     string     `json:"loan_type"`
	Amount       float64    `json:"amount"`
	TenureMonths int        `json:"tenure_months"`
	InterestRate float64    `json:"interest_rate"`
	EMI          *float64   `json:"emi"`
	Status       string     `json:"status"`
	AppliedAt    time.Time  `json:"applied_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

func NewLoanResponse(l *loan.Loan) LoanResponse {
	return LoanResponse{
		ID:           l.ID,
		CustomerID:   l.CustomerID,
		LoanType:     l.LoanType,
		Amount:       l.Amount,
		TenureMonths: l.TenureMonths,
		InterestRate: l.InterestRate,
		EMI:          l.EMI,
		Status:       string(l.Status),
		AppliedAt:    l.AppliedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// NewPendingLoanResponse annotates a pending loan with the preview EMI an
// admin sees before approving. The projection is computed on read; the
// stored record keeps emi null until approval.
func NewPendingLoanResponse(l *loan.Loan) LoanResponse {
	resp := NewLoanResponse(l)
	if resp.EMI == nil {
		preview := l.PreviewEMI()
		resp.EMI = &preview
	}
	return resp
}

func NewLoanListResponse(loans []loan.Loan, pendingPreview bool) []LoanResponse {
	out := make([]LoanResponse, 0, len(loans))
	for i := range loans {
		if pendingPreview {
			out = append(out, NewPendingLoanResponse(&loans[i]))
		} else {
			out = append(out, NewLoanResponse(&loans[i]))
		}
	}
	return out
}
