package handler

import (
	"banking-backend/internal/api/handler/dto"
	"banking-backend/internal/domain/loan"
	"banking-backend/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	loans  loan.LoanService
	logger *slog.Logger
}

func NewAdminHandler(loans loan.LoanService, l *slog.Logger) *AdminHandler {
	return &AdminHandler{
		loans:  loans,
		logger: l.With("component", "AdminHandler"),
	}
}

func getLoanIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "loanID")
	if idStr == "" {
		return 0, fmt.Errorf("loanID not found in URL path")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// ListPendingLoans returns every loan waiting for review.
//
// @Summary List loans pending review
// @Description Each pending loan carries a preview EMI computed on read. The stored record keeps emi null until approval.
// @Tags Admin
// @Produce json
// @Success 200 {array} dto.LoanResponse "Pending loans with preview EMI"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Customer token presented at admin endpoint"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admins/loans [get]
// @Security BearerAuth
func (h *AdminHandler) ListPendingLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.loans.ListPending(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans, true))
}

// DecideLoan approves or rejects a pending loan.
//
// @Summary Decide a pending loan
// @Description Transitions a pending loan to approved or rejected. Approval computes and persists the EMI. Decisions are terminal.
// @Tags Admin
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.DecideLoanRequest true "Decision payload"
// @Success 200 {object} dto.LoanResponse "Decided loan"
// @Failure 400 {object} dto.ErrorResponse "Malformed payload or loan is not pending"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Customer token presented at admin endpoint"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 422 {object} dto.ErrorResponse "Unknown decision status"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admins/loans/{loanID} [put]
// @Security BearerAuth
func (h *AdminHandler) DecideLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: invalid loan ID", apperrors.ErrInvalidArgument))
		return
	}

	var req dto.DecideLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("Failed to decode loan decision", "loanID", loanID, "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	target, err := loan.ParseDecision(req.Status)
	if err != nil {
		respondError(w, err)
		return
	}

	decided, err := h.loans.Decide(r.Context(), loanID, target)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(decided))
}
