package handler

import (
	"banking-backend/internal/api/handler/dto"
	"banking-backend/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError maps the error taxonomy onto wire status codes:
// validation 422, malformed input / conflict / non-pending loan 400,
// unauthorized 401, forbidden 403, not found 404, everything else 500.
func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.As(err, &validationError):
		status, message, field = http.StatusUnprocessableEntity, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrLoanNotPending):
		status, message = http.StatusBadRequest, apperrors.ErrLoanNotPending.Error()
	case errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusBadRequest, apperrors.Detail(err, apperrors.ErrConflict)
	case errors.Is(err, apperrors.ErrInvalidArgument):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, apperrors.Detail(err, apperrors.ErrUnauthorized)
		w.Header().Set("WWW-Authenticate", "Bearer")
	case errors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, apperrors.Detail(err, apperrors.ErrForbidden)
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}
