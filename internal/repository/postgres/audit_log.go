package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

// AuditLogRepository appends auth events to the audit_logs table.
// Rows are written once and never updated.
type AuditLogRepository struct {
	db DB
}

func NewAuditLogRepository(db DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Insert(ctx context.Context, event model.AuditEvent) error {
	const query = `
        INSERT INTO audit_logs (id, kind, user_id, description, metadata, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	var userID any
	if event.UserID != uuid.Nil {
		userID = event.UserID
	}

	_, err := r.db.Exec(ctx, query,
		uuid.New(), string(event.Kind), userID, event.Description, event.Metadata, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
