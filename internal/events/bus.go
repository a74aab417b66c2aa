package events

import (
	"errors"
	"log/slog"
	"sync"
)

// Handler reacts to a published event. Handler errors are logged, not
// propagated; one failing subscriber must not block the others.
type Handler func(Event) error

// ErrBusClosed is returned when operations are attempted on a closed
// bus.
var ErrBusClosed = errors.New("event bus is closed")

// Bus is a synchronous in-memory event bus. Handlers run on the
// publisher's goroutine in subscription order, so event effects are
// visible as soon as Publish returns.
type Bus struct {
	mu          sync.RWMutex
	handlers    map[EventType][]Handler
	allHandlers []Handler
	logger      *slog.Logger
	closed      bool
}

// NewBus creates an empty bus. A nil logger falls back to slog.Default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[EventType][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(t EventType, h Handler) error {
	if h == nil {
		return errors.New("handler cannot be nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	b.handlers[t] = append(b.handlers[t], h)
	return nil
}

// SubscribeAll registers a handler for every event.
func (b *Bus) SubscribeAll(h Handler) error {
	if h == nil {
		return errors.New("handler cannot be nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	b.allHandlers = append(b.allHandlers, h)
	return nil
}

// Publish dispatches an event to its subscribers synchronously.
func (b *Bus) Publish(e Event) error {
	if e == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := make([]Handler, 0, len(b.handlers[e.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[e.EventType()]...)
	handlers = append(handlers, b.allHandlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(e); err != nil {
			b.logger.Error("event handler failed", "event_type", e.EventType(), "error", err)
		}
	}
	return nil
}

// Close stops the bus; further subscribes and publishes fail.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
