package handler

import (
	"banking-backend/internal/api/handler/dto"
	"banking-backend/internal/api/middleware"
	"banking-backend/internal/domain/loan"
	"banking-backend/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"net/http"
)

// CustomerHandler serves the routes behind the customer gate. The
// authenticated customer is taken from the request context, never from the
// payload, so a customer can only ever act on their own loans.
type CustomerHandler struct {
	loans  loan.LoanService
	logger *slog.Logger
}

func NewCustomerHandler(loans loan.LoanService, l *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		loans:  loans,
		logger: l.With("component", "CustomerHandler"),
	}
}

// Me returns the authenticated customer's profile.
//
// @Summary Get the current customer profile
// @Tags Customers
// @Produce json
// @Success 200 {object} dto.CustomerResponse "Authenticated customer profile"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Admin token presented at customer endpoint"
// @Router /customers/me [get]
// @Security BearerAuth
func (h *CustomerHandler) Me(w http.ResponseWriter, r *http.Request) {
	cust, ok := middleware.CustomerFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// ApplyLoan submits a new loan application for the authenticated customer.
//
// @Summary Apply for a loan
// @Description Creates a pending loan owned by the authenticated customer. The EMI stays null until an admin approves the loan.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.ApplyLoanRequest true "Loan application payload"
// @Success 200 {object} dto.LoanResponse "Loan application created"
// @Failure 400 {object} dto.ErrorResponse "Malformed payload"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Admin token presented at customer endpoint"
// @Failure 422 {object} dto.ErrorResponse "Validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/loans [post]
// @Security BearerAuth
func (h *CustomerHandler) ApplyLoan(w http.ResponseWriter, r *http.Request) {
	cust, ok := middleware.CustomerFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	var req dto.ApplyLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("Failed to decode loan application", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.loans.Apply(r.Context(), cust.ID, req.LoanType, req.Amount, req.TenureMonths, req.InterestRate)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(created))
}

// GetLoan returns a single loan owned by the authenticated customer.
//
// @Summary Get one of the current customer's loans
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan owned by the customer"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Admin token presented at customer endpoint"
// @Failure 404 {object} dto.ErrorResponse "Loan not found or owned by someone else"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/loans/{loanID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	cust, ok := middleware.CustomerFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: invalid loan ID", apperrors.ErrInvalidArgument))
		return
	}

	found, err := h.loans.GetForCustomer(r.Context(), cust.ID, loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(found))
}

// ListLoans returns every loan owned by the authenticated customer.
//
// @Summary List the current customer's loans
// @Tags Loans
// @Produce json
// @Success 200 {array} dto.LoanResponse "Loans in every status"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Admin token presented at customer endpoint"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/loans [get]
// @Security BearerAuth
func (h *CustomerHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	cust, ok := middleware.CustomerFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	loans, err := h.loans.ListForCustomer(r.Context(), cust.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans, false))
}
