package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEventKind identifies a recorded auth event.
type AuditEventKind string

const (
	AuditUserRegistered AuditEventKind = "user_registered"
	AuditLoginSucceeded AuditEventKind = "login_succeeded"
	AuditLoginFailed    AuditEventKind = "login_failed"
	AuditAccountLocked  AuditEventKind = "account_locked"
	AuditTokenRotated   AuditEventKind = "token_rotated"
	AuditTokenReuse     AuditEventKind = "token_reuse_detected"
	AuditTokenRevoked   AuditEventKind = "token_revoked"
	AuditResetRequested AuditEventKind = "password_reset_requested"
	AuditResetCompleted AuditEventKind = "password_reset_completed"
)

// AuditEvent describes a single auth event. UserID may be uuid.Nil when
// the event could not be tied to an account.
type AuditEvent struct {
	Kind        AuditEventKind
	UserID      uuid.UUID
	Description string
	Metadata    map[string]string
	OccurredAt  time.Time
}

// AuditSink records auth events. Record is fire-and-forget:
// implementations must never block or fail the calling operation.
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}
