package postgres

import (
	"banking-backend/internal/domain/customer"
	"banking-backend/internal/infrastructure/monitoring"
	"banking-backend/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const customerColumns = "id, name, email, password_hash, age, phone, address, created_at"

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger.With("component", "CustomerRepository")}
}

func (r *CustomerRepository) Create(ctx context.Context, cust *customer.Customer) (*customer.Customer, error) {
	sql := `
        INSERT INTO customers (name, email, password_hash, age, phone, address, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING ` + customerColumns

	status := "success"
	startTime := time.Now()

	var created customer.Customer
	err := r.db.QueryRow(ctx, sql,
		cust.Name, cust.Email, cust.PasswordHash, cust.Age, cust.Phone, cust.Address,
	).Scan(
		&created.ID, &created.Name, &created.Email, &created.PasswordHash,
		&created.Age, &created.Phone, &created.Address, &created.CreatedAt,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("CreateCustomer", status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert customer", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Customer created in DB", "customer_id", created.ID)
	return &created, nil
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	status := "success"
	startTime := time.Now()

	var cust customer.Customer
	err := r.db.QueryRow(ctx, query, email).Scan(
		&cust.ID, &cust.Name, &cust.Email, &cust.PasswordHash,
		&cust.Age, &cust.Phone, &cust.Address, &cust.CreatedAt,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("FindCustomerByEmail", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query customer by email", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return &cust, nil
}
