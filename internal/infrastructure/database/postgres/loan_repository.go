package postgres

import (
	"banking-backend/internal/domain/loan"
	"banking-backend/internal/infrastructure/monitoring"
	"banking-backend/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v3"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

const loanColumns = "id, customer_id, loan_type, amount, tenure_months, interest_rate, emi, status, applied_at, updated_at"

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan) (*loan.Loan, error) {
	sql := `
        INSERT INTO loans (customer_id, loan_type, amount, tenure_months, interest_rate, emi, status, applied_at)
        VALUES ($1, $2, $3, $4, $5, NULL, $6, NOW())
        RETURNING ` + loanColumns

	status := "success"
	startTime := time.Now()

	var created loan.Loan
	err := r.db.QueryRow(ctx, sql,
		newLoan.CustomerID, newLoan.LoanType, newLoan.Amount,
		newLoan.TenureMonths, newLoan.InterestRate, newLoan.Status,
	).Scan(
		&created.ID, &created.CustomerID, &created.LoanType, &created.Amount,
		&created.TenureMonths, &created.InterestRate, &created.EMI,
		&created.Status, &created.AppliedAt, &created.UpdatedAt,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("CreateLoan", status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID)
	return &created, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	status := "success"
	startTime := time.Now()

	var l loan.Loan
	err := r.db.QueryRow(ctx, query, loanID).Scan(
		&l.ID, &l.CustomerID, &l.LoanType, &l.Amount,
		&l.TenureMonths, &l.InterestRate, &l.EMI,
		&l.Status, &l.AppliedAt, &l.UpdatedAt,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetLoanByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return &l, nil
}

func (r *LoanRepository) ListByCustomer(ctx context.Context, customerID int64) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY applied_at ASC, id ASC`
	return r.queryLoans(ctx, "ListByCustomer", query, customerID)
}

func (r *LoanRepository) ListByStatus(ctx context.Context, status loan.Status) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = $1 ORDER BY applied_at ASC, id ASC`
	return r.queryLoans(ctx, "ListByStatus", query, status)
}

func (r *LoanRepository) queryLoans(ctx context.Context, queryName, query string, arg any) ([]loan.Loan, error) {
	startTime := time.Now()

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		monitoring.RecordDBQuery(queryName, "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to query loans", "query_name", queryName, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]loan.Loan, 0)
	for rows.Next() {
		var l loan.Loan
		err := rows.Scan(
			&l.ID, &l.CustomerID, &l.LoanType, &l.Amount,
			&l.TenureMonths, &l.InterestRate, &l.EMI,
			&l.Status, &l.AppliedAt, &l.UpdatedAt,
		)
		if err != nil {
			monitoring.RecordDBQuery(queryName, "error", time.Since(startTime))
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "query_name", queryName, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, l)
	}

	if err = rows.Err(); err != nil {
		monitoring.RecordDBQuery(queryName, "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Error iterating loan rows", "query_name", queryName, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	monitoring.RecordDBQuery(queryName, "success", time.Since(startTime))
	return loans, nil
}

// DecideLoan serializes the pending-check-then-write: the row is locked
// with SELECT ... FOR UPDATE inside one transaction, so of two concurrent
// decisions the second blocks, then observes the terminal status and fails
// with ErrLoanNotPending. Nothing is mutated on any failure path.
func (r *LoanRepository) DecideLoan(ctx context.Context, loanID int64, target loan.Status) (decided *loan.Loan, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	lockQuery := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	var l loan.Loan
	err = tx.QueryRow(ctx, lockQuery, loanID).Scan(
		&l.ID, &l.CustomerID, &l.LoanType, &l.Amount,
		&l.TenureMonths, &l.InterestRate, &l.EMI,
		&l.Status, &l.AppliedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found for decision", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock loan row", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	if err = l.Decide(target); err != nil {
		return nil, err
	}

	updateSQL := `UPDATE loans SET status = $1, emi = $2, updated_at = $3 WHERE id = $4`
	cmdTag, err := tx.Exec(ctx, updateSQL, l.Status, l.EMI, l.UpdatedAt, l.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan decision", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Loan decision update affected zero rows", "loan_id", loanID)
		err = fmt.Errorf("%w: loan decision update affected zero rows", apperrors.ErrDatabase)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit loan decision", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Loan decision persisted", "loan_id", loanID, "new_status", l.Status)
	return &l, nil
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.ConstraintName)
		}
		if pgErr.Code == "23503" {
			contextLogger.Warn("Database foreign key violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, pgErr.ConstraintName)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}
