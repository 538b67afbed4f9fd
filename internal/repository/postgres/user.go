package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, email, user_name, password_hash, roles, permissions, is_active,
			  failed_login_attempts, lockout_end, lockout_enabled, reset_token_hash, reset_expiry,
			  created_at, updated_at`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Email, &user.UserName, &user.PasswordHash, &user.Roles, &user.Permissions,
		&user.IsActive, &user.FailedLoginAttempts, &user.LockoutEnd, &user.LockoutEnabled,
		&user.ResetTokenHash, &user.ResetExpiry, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, email, user_name, password_hash, roles, permissions, is_active,
			  failed_login_attempts, lockout_end, lockout_enabled, reset_token_hash, reset_expiry,
			  created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING ` + userColumns

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	savedUser, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.UserName, user.PasswordHash, user.Roles, user.Permissions,
		user.IsActive, user.FailedLoginAttempts, user.LockoutEnd, user.LockoutEnabled,
		user.ResetTokenHash, user.ResetExpiry, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		// SQLSTATE 23505: unique constraint violation on users.email.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) Update(ctx context.Context, user model.User) error {
	query := `UPDATE users SET email = $2, user_name = $3, password_hash = $4, roles = $5,
			  permissions = $6, is_active = $7, failed_login_attempts = $8, lockout_end = $9,
			  lockout_enabled = $10, reset_token_hash = $11, reset_expiry = $12, updated_at = NOW()
			  WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.UserName, user.PasswordHash, user.Roles, user.Permissions,
		user.IsActive, user.FailedLoginAttempts, user.LockoutEnd, user.LockoutEnabled,
		user.ResetTokenHash, user.ResetExpiry,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
