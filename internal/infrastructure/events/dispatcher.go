// Package events provides the in-process domain event dispatcher
package events

import (
	"context"
	"sync"

	"github.com/alchemorsel/dishgen/internal/domain/shared"
	"go.uber.org/zap"
)

// Dispatcher delivers domain events to the handlers registered for their
// name. Handlers run synchronously in registration order; a failing
// handler is logged and does not stop the others.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	log      *zap.Logger
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]shared.EventHandler),
		log:      log.Named("events"),
	}
}

var _ shared.EventDispatcher = (*Dispatcher)(nil)

// Dispatch dispatches an event to registered handlers
func (d *Dispatcher) Dispatch(ctx context.Context, event shared.DomainEvent) error {
	d.mu.RLock()
	handlers := d.handlers[event.EventName()]
	d.mu.RUnlock()

	if len(handlers) == 0 {
		d.log.Debug("No handlers registered for event", zap.String("event", event.EventName()))
		return nil
	}

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.log.Error("Failed to handle event",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Register registers an event handler
func (d *Dispatcher) Register(eventName string, handler shared.EventHandler) {
	d.mu.Lock()
	d.handlers[eventName] = append(d.handlers[eventName], handler)
	d.mu.Unlock()

	d.log.Debug("Registered event handler", zap.String("event", eventName))
}
