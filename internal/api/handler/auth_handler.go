package handler

import (
	"banking-backend/internal/api/handler/dto"
	"banking-backend/internal/auth"
	"banking-backend/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"net/http"
)

type AuthHandler struct {
	service auth.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(s auth.AuthService, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: s,
		logger:  l.With("component", "AuthHandler"),
	}
}

// Register creates a new customer account.
//
// @Summary Register a new customer
// @Description Creates a customer account with a bcrypt-hashed password. The email must not already be registered.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Customer registration payload"
// @Success 200 {object} dto.CustomerResponse "Customer successfully registered"
// @Failure 400 {object} dto.ErrorResponse "Malformed payload or email already registered"
// @Failure 422 {object} dto.ErrorResponse "Validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("Failed to decode register request", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.service.RegisterCustomer(r.Context(), req.ToInput())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(created))
}

// Login authenticates a customer or admin and issues a bearer token.
//
// @Summary Obtain an access token
// @Description Verifies email and password for the requested principal type and returns a signed JWT bearer token.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login payload"
// @Success 200 {object} dto.TokenResponse "Token successfully issued"
// @Failure 400 {object} dto.ErrorResponse "Malformed payload"
// @Failure 401 {object} dto.ErrorResponse "Incorrect email or password"
// @Failure 422 {object} dto.ErrorResponse "Validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("Failed to decode login request", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password, req.IsAdmin)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTokenResponse(token))
}
