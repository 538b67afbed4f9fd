// Package email dispatches outbound mail commands. The auth server
// never talks SMTP itself; it hands a rendered message to a delivery
// worker over kafka, or logs it when no broker is configured.
package email

import (
	"context"
	"time"

	"github.com/Abdul-Aziz026/school-auth/internal/logger"
	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

// Command is the wire format of one outbound email.
type Command struct {
	SenderName    string    `json:"sender_name"`
	SenderAddress string    `json:"sender_address"`
	ToAddress     string    `json:"to_address"`
	ToName        string    `json:"to_name"`
	Subject       string    `json:"subject"`
	HTMLBody      string    `json:"html_body"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
}

var _ model.EmailDispatcher = (*LogDispatcher)(nil)

// LogDispatcher writes the message to the log instead of delivering
// it. Used in development and as the no-broker fallback.
type LogDispatcher struct {
	logger *logger.Logger
}

func NewLogDispatcher(logger *logger.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Send(_ context.Context, toAddress, toName, subject, _ string) error {
	d.logger.Info("Email dispatcher: message logged instead of sent",
		"to_address", toAddress,
		"to_name", toName,
		"subject", subject)
	return nil
}
