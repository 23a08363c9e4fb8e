package customer

import (
	"banking-backend/internal/pkg/apperrors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const MinimumAge = 18

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Customer is an authentication principal: the owner of loan applications.
// Identity for login purposes is the email address, unique per customer.
type Customer struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Age          int
	Phone        *string
	Address      *string
	CreatedAt    time.Time
}

func NewCustomer(name, email, passwordHash string, age int, phone, address *string) (*Customer, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" {
		return nil, apperrors.NewValidationError("name", "name cannot be empty")
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email", "email cannot be empty")
	}
	if age < MinimumAge {
		return nil, apperrors.NewValidationError("age", fmt.Sprintf("age must be at least %d", MinimumAge))
	}
	if phone != nil && !phonePattern.MatchString(*phone) {
		return nil, apperrors.NewValidationError("phone", "phone must be a valid phone number")
	}

	return &Customer{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Age:          age,
		Phone:        phone,
		Address:      address,
	}, nil
}
