package email

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Abdul-Aziz026/school-auth/internal/logger"
	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

var _ model.EmailDispatcher = (*BreakerDispatcher)(nil)

// BreakerDispatcher guards a dispatcher with a circuit breaker so a
// dead broker fails fast instead of stalling every request that wants
// to send mail.
type BreakerDispatcher struct {
	next    model.EmailDispatcher
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerDispatcher(next model.EmailDispatcher, logger *logger.Logger) *BreakerDispatcher {
	settings := gobreaker.Settings{
		Name:     "email-dispatch",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Email dispatcher: circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &BreakerDispatcher{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (d *BreakerDispatcher) Send(ctx context.Context, toAddress, toName, subject, htmlBody string) error {
	_, err := d.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, d.next.Send(ctx, toAddress, toName, subject, htmlBody)
	})
	return err
}
