package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for auth outcomes, exposed on /metrics.
var (
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts_total",
		Help: "Login attempts by result (success, invalid_credentials, locked).",
	}, []string{"result"})

	Lockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_lockouts_total",
		Help: "Accounts transitioned to locked after repeated failures.",
	})

	TokenRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_rotations_total",
		Help: "Refresh token rotations by result (success, invalid, revoked, expired).",
	}, []string{"result"})

	ResetRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_password_reset_requests_total",
		Help: "Password reset requests accepted (known and unknown emails alike).",
	})
)
