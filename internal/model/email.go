package model

import "context"

// EmailDispatcher hands a transactional email off for out-of-band
// delivery. Implementations are best effort; the auth operation that
// triggered the email has already succeeded by the time Send is called.
type EmailDispatcher interface {
	Send(ctx context.Context, toAddress, toName, subject, htmlBody string) error
}
