package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db DB
}

func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (
            id, user_id, token_hash, expires_at, is_revoked, created_by_ip, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
    `

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.IsRevoked, token.CreatedByIP,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByDigest(ctx context.Context, digest string) (model.RefreshToken, error) {
	const query = `
        SELECT id, user_id, token_hash, expires_at, is_revoked, created_by_ip, created_at, updated_at
        FROM refresh_tokens WHERE token_hash = $1
    `
	var rt model.RefreshToken
	err := r.db.QueryRow(ctx, query, digest).Scan(
		&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.IsRevoked, &rt.CreatedByIP,
		&rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token by digest: %w", err)
	}
	return rt, nil
}

// UpdateRevoked flips is_revoked to true only when the row still holds
// expectedRevoked. The conditional update makes concurrent rotations of
// the same token race on a single winner.
func (r *RefreshTokenRepository) UpdateRevoked(ctx context.Context, id uuid.UUID, expectedRevoked bool) (bool, error) {
	const query = `
        UPDATE refresh_tokens SET is_revoked = TRUE, updated_at = NOW()
        WHERE id = $1 AND is_revoked = $2
    `
	tag, err := r.db.Exec(ctx, query, id, expectedRevoked)
	if err != nil {
		return false, fmt.Errorf("failed to update refresh token revocation: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RefreshTokenRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE user_id = $1`

	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete refresh tokens by user: %w", err)
	}
	return tag.RowsAffected(), nil
}
