package event

import "time"

const (
	RoutingKeyLoanApplied  = "loan.applied"
	RoutingKeyLoanApproved = "loan.approved"
	RoutingKeyLoanRejected = "loan.rejected"
)

type LoanEvent struct {
	LoanID       int64     `json:"loanId"`
	CustomerID   int64     `json:"customerId"`
	LoanType     string    `json:"loanType"`
	Amount       float64   `json:"amount"`
	TenureMonths int       `json:"tenureMonths"`
	InterestRate float64   `json:"interestRate"`
	EMI          *float64  `json:"emi,omitempty"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewLoanEvent(loanID, customerID int64, loanType string, amount float64, tenureMonths int, interestRate float64, emi *float64, status string) LoanEvent {
	return LoanEvent{
		LoanID:       loanID,
		CustomerID:   customerID,
		LoanType:     loanType,
		Amount:       amount,
		TenureMonths: tenureMonths,
		InterestRate: interestRate,
		EMI:          emi,
		Status:       status,
		Timestamp:    time.Now(),
	}
}
