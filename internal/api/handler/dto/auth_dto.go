package dto

import (
	"banking-backend/internal/auth"
	"banking-backend/internal/domain/customer"
	"time"
)

type RegisterRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Age      int     `json:"age" validate:"required,gte=18"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

func (r *RegisterRequest) Validate() error {
	return validateStruct(r)
}

func (r *RegisterRequest) ToInput() auth.RegisterInput {
	return auth.RegisterInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Age:      r.Age,
		Phone:    r.Phone,
		Address:  r.Address,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

func (r *LoginRequest) Validate() error {
	return validateStruct(r)
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func NewTokenResponse(token string) TokenResponse {
	return TokenResponse{AccessToken: token, TokenType: "bearer"}
}

// CustomerResponse is the customer profile on the wire, never including
// the password hash.
type CustomerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		ID:        cust.ID,
		Name:      cust.Name,
		Email:     cust.Email,
		Age:       cust.Age,
		Phone:     cust.Phone,
		Address:   cust.Address,
		CreatedAt: cust.CreatedAt,
	}
}
