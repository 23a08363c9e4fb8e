package handler

import (
	"banking-backend/internal/domain/loan"
	"banking-backend/internal/pkg/apperrors"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func requestWithLoanID(req *http.Request, loanID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("loanID", loanID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminHandlerListPendingLoans(t *testing.T) {
	t.Run("annotates pending loans with a preview EMI", func(t *testing.T) {
		mockService := new(MockLoanService)
		h := NewAdminHandler(mockService, newHandlerTestLogger())

		pending := []loan.Loan{
			{ID: 1, CustomerID: 9, LoanType: "personal", Amount: 100000, TenureMonths: 12, InterestRate: 12, Status: loan.StatusPending, AppliedAt: time.Now()},
		}
		mockService.On("ListPending", mock.Anything).Return(pending, nil)

		req := httptest.NewRequest(http.MethodGet, "/admins/loans", nil)
		rec := httptest.NewRecorder()

		h.ListPendingLoans(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 1)
		assert.InDelta(t, 8884.88, resp[0]["emi"].(float64), 0.01)
		assert.Equal(t, "pending", resp[0]["status"])
	})

	t.Run("returns an empty array when nothing is pending", func(t *testing.T) {
		mockService := new(MockLoanService)
		h := NewAdminHandler(mockService, newHandlerTestLogger())

		mockService.On("ListPending", mock.Anything).Return([]loan.Loan{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/admins/loans", nil)
		rec := httptest.NewRecorder()

		h.ListPendingLoans(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestAdminHandlerDecideLoan(t *testing.T) {
	t.Run("approves a pending loan", func(t *testing.T) {
		mockService := new(MockLoanService)
		h := NewAdminHandler(mockService, newHandlerTestLogger())

		emi := 8884.88
		now := time.Now()
		decided := &loan.Loan{ID: 7, CustomerID: 9, LoanType: "personal", Amount: 100000, TenureMonths: 12, InterestRate: 12, EMI: &emi, Status: loan.StatusApproved, UpdatedAt: &now}
		mockService.On("Decide", mock.Anything, int64(7), loan.StatusApproved).Return(decided, nil)

		body := `{"status":"approved"}`
		req := requestWithLoanID(httptest.NewRequest(http.MethodPut, "/admins/loans/7", bytes.NewBufferString(body)), "7")
		rec := httptest.NewRecorder()

		h.DecideLoan(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "approved", resp["status"])
		assert.InDelta(t, 8884.88, resp["emi"].(float64), 0.01)
	})

	t.Run("returns 400 when the loan is already decided", func(t *testing.T) {
		mockService := new(MockLoanService)
		h := NewAdminHandler(mockService, newHandlerTestLogger())

		mockService.On("Decide", mock.Anything, int64(7), loan.StatusRejected).
			Return(nil, apperrors.ErrLoanNotPending)

		body := `{"status":"rejected"}`
		req := requestWithLoanID(httptest.NewRequest(http.MethodPut, "/admins/loans/7", bytes.NewBufferString(body)), "7")
		rec := httptest.NewRecorder()

		h.DecideLoan(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "loan is not pending")
	})

	t.Run("returns 404 for an unknown loan", func(t *testing.T) {
		mockService := new(MockLoanService)
		h := NewAdminHandler(mockService, newHandlerTestLogger())

		mockService.On("Decide", mock.Anything, int64(404), loan.StatusApproved).
			Return(nil, apperrors.ErrNotFound)

		body := `{"status":"approved"}`
		req := requestWithLoanID(httptest.NewRequest(http.MethodPut, "/admins/loans/404", bytes.NewBufferString(body)), "404")
		rec := httptest.NewRecorder()

		h.DecideLoan(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns 422 for an unknown target status", func(t *testing.T) {
		mockService := new(MockLoanService)
		h := NewAdminHandler(mockService, newHandlerTestLogger())

		body := `{"status":"cancelled"}`
		req := requestWithLoanID(httptest.NewRequest(http.MethodPut, "/admins/loans/7", bytes.NewBufferString(body)), "7")
		rec := httptest.NewRecorder()

		h.DecideLoan(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		mockService.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns 400 for a non-numeric loan ID", func(t *testing.T) {
		mockService := new(MockLoanService)
		h := NewAdminHandler(mockService, newHandlerTestLogger())

		body := `{"status":"approved"}`
		req := requestWithLoanID(httptest.NewRequest(http.MethodPut, "/admins/loans/abc", bytes.NewBufferString(body)), "abc")
		rec := httptest.NewRecorder()

		h.DecideLoan(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
