package postgres

import (
	"banking-backend/internal/domain/admin"
	"banking-backend/internal/pkg/apperrors"
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
)

var adminColumnNames = []string{"id", "username", "email", "password_hash", "created_at"}

func setupAdminRepo(t *testing.T) (context.Context, *AdminRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	ctx := context.Background()
	repo := NewAdminRepository(mockPool, testLogger)

	return ctx, repo, mockPool
}

func TestCreateAdminWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupAdminRepo(t)
	defer mockPool.Close()

	adm := &admin.Admin{
		Username:     "root",
		Email:        "root@example.com",
		PasswordHash: "$2a$10$hash",
	}
	createdAt := time.Now()

	mockPool.ExpectQuery(`INSERT INTO bank_admins`).
		WithArgs(adm.Username, adm.Email, adm.PasswordHash).
		WillReturnRows(pgxmock.NewRows(adminColumnNames).
			AddRow(int64(1), "root", "root@example.com", "$2a$10$hash", createdAt))

	created, err := repo.Create(ctx, adm)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindAdminByEmailWhenMissing(t *testing.T) {
	ctx, repo, mockPool := setupAdminRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT .+ FROM bank_admins WHERE email`).
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows(adminColumnNames))

	_, err := repo.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}
