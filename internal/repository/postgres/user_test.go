package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

func newUserTestFixture(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewUserRepository(mock)
	return repo, mock
}

func sampleUser() model.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return model.User{
		ID:                  uuid.New(),
		Email:               "alice@example.com",
		UserName:            "alice",
		PasswordHash:        "$2a$12$hash",
		Roles:               []string{"User"},
		Permissions:         []string{"ViewProduct"},
		IsActive:            true,
		FailedLoginAttempts: 0,
		LockoutEnabled:      true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func userColumnNames() []string {
	return []string{
		"id", "email", "user_name", "password_hash", "roles", "permissions", "is_active",
		"failed_login_attempts", "lockout_end", "lockout_enabled", "reset_token_hash", "reset_expiry",
		"created_at", "updated_at",
	}
}

func userRow(u model.User) *pgxmock.Rows {
	return pgxmock.NewRows(userColumnNames()).AddRow(
		u.ID, u.Email, u.UserName, u.PasswordHash, u.Roles, u.Permissions, u.IsActive,
		u.FailedLoginAttempts, u.LockoutEnd, u.LockoutEnabled, u.ResetTokenHash, u.ResetExpiry,
		u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs(u.Email).
		WillReturnRows(userRow(u))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows(userColumnNames()))

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(u.ID).
		WillReturnRows(userRow(u))

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(
			u.ID, u.Email, u.UserName, u.PasswordHash, u.Roles, u.Permissions,
			u.IsActive, u.FailedLoginAttempts, u.LockoutEnd, u.LockoutEnabled,
			u.ResetTokenHash, u.ResetExpiry, u.CreatedAt, u.UpdatedAt,
		).
		WillReturnRows(userRow(u))

	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(
			u.ID, u.Email, u.UserName, u.PasswordHash, u.Roles, u.Permissions,
			u.IsActive, u.FailedLoginAttempts, u.LockoutEnd, u.LockoutEnabled,
			u.ResetTokenHash, u.ResetExpiry, u.CreatedAt, u.UpdatedAt,
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestUserRepository_Update(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	u.FailedLoginAttempts = 3
	lockoutEnd := time.Now().Add(15 * time.Minute)
	u.LockoutEnd = &lockoutEnd

	mock.ExpectExec("UPDATE users SET").
		WithArgs(
			u.ID, u.Email, u.UserName, u.PasswordHash, u.Roles, u.Permissions,
			u.IsActive, u.FailedLoginAttempts, u.LockoutEnd, u.LockoutEnabled,
			u.ResetTokenHash, u.ResetExpiry,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_Missing(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	mock.ExpectExec("UPDATE users SET").
		WithArgs(
			u.ID, u.Email, u.UserName, u.PasswordHash, u.Roles, u.Permissions,
			u.IsActive, u.FailedLoginAttempts, u.LockoutEnd, u.LockoutEnabled,
			u.ResetTokenHash, u.ResetExpiry,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), u)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_GetByEmail_QueryError(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}
