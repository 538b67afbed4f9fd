// Package audit persists auth events without blocking the request
// that produced them.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/Abdul-Aziz026/school-auth/internal/logger"
	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

// Store is the persistence behind the sink.
type Store interface {
	Insert(ctx context.Context, event model.AuditEvent) error
}

var _ model.AuditSink = (*Sink)(nil)

// Sink buffers events on a bounded channel and writes them from a
// background worker. When the buffer is full the event is dropped and
// counted in the log; auth flow never waits on the audit trail.
type Sink struct {
	store  Store
	events chan model.AuditEvent
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
	logger *logger.Logger
}

func NewSink(store Store, bufferSize int, logger *logger.Logger) *Sink {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	s := &Sink{
		store:  store,
		events: make(chan model.AuditEvent, bufferSize),
		logger: logger,
	}

	s.wg.Add(1)
	go s.run()

	return s
}

func (s *Sink) Record(_ context.Context, event model.AuditEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	// The read lock keeps Close from closing the channel mid-send, so
	// late events during shutdown are dropped instead of panicking.
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.Warn("Audit sink: closed, event dropped",
			"kind", string(event.Kind))
		return
	}

	select {
	case s.events <- event:
	default:
		s.logger.Warn("Audit sink: buffer full, event dropped",
			"kind", string(event.Kind))
	}
}

// Close stops accepting events and drains the buffer.
func (s *Sink) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
	s.wg.Wait()
}

func (s *Sink) run() {
	defer s.wg.Done()

	for event := range s.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.store.Insert(ctx, event); err != nil {
			s.logger.Error("Audit sink: failed to persist event",
				"kind", string(event.Kind),
				"error", err.Error())
		}
		cancel()
	}
}
