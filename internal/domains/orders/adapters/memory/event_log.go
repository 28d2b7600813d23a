package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
)

var _ ports.EventPublisher = (*EventLog)(nil)

// EventLog keeps published events in process. Used when no broker is configured.
type EventLog struct {
	mu     sync.Mutex
	events []domain.OrderPlaced
	err    error
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

// FailWith makes subsequent publishes fail with err. Pass nil to reset.
func (l *EventLog) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func (l *EventLog) PublishOrderPlaced(_ context.Context, event domain.OrderPlaced) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.events = append(l.events, event)
	return nil
}

// Events returns a copy of the published events in order.
func (l *EventLog) Events() []domain.OrderPlaced {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.OrderPlaced(nil), l.events...)
}
