package postgres

import (
	"banking-backend/internal/domain/admin"
	"banking-backend/internal/infrastructure/monitoring"
	"banking-backend/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const adminColumns = "id, username, email, password_hash, created_at"

type AdminRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ admin.Repository = (*AdminRepository)(nil)

func NewAdminRepository(db DBPool, logger *slog.Logger) *AdminRepository {
	return &AdminRepository{db: db, logger: logger.With("component", "AdminRepository")}
}

func (r *AdminRepository) Create(ctx context.Context, adm *admin.Admin) (*admin.Admin, error) {
	sql := `
        INSERT INTO bank_admins (username, email, password_hash, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING ` + adminColumns

	status := "success"
	startTime := time.Now()

	var created admin.Admin
	err := r.db.QueryRow(ctx, sql, adm.Username, adm.Email, adm.PasswordHash).Scan(
		&created.ID, &created.Username, &created.Email, &created.PasswordHash, &created.CreatedAt,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("CreateAdmin", status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert admin", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Admin created in DB", "admin_id", created.ID)
	return &created, nil
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM bank_admins WHERE email = $1`

	status := "success"
	startTime := time.Now()

	var adm admin.Admin
	err := r.db.QueryRow(ctx, query, email).Scan(
		&adm.ID, &adm.Username, &adm.Email, &adm.PasswordHash, &adm.CreatedAt,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("FindAdminByEmail", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query admin", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return &adm, nil
}
