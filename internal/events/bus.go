package events

import (
	"fmt"
	"sync"

	"image-catalog/internal/logging"
	"image-catalog/internal/metrics"
)

// ErrDuplicateHandler is returned by Register when a kind already has a
// handler bound. Registration happens once at startup, so hitting this is a
// programming error and callers treat it as fatal.
var ErrDuplicateHandler = fmt.Errorf("duplicate event handler registration")

// Handler processes one dequeued event. Errors are not caught by the bus;
// they propagate to the ProcessNext caller.
type Handler func(Event) error

// Bus is a single-consumer FIFO event queue. The mutex guards only the
// queue itself: handlers run outside the lock, so a handler may enqueue
// further events without deadlocking. Handlers never run concurrently as
// long as there is a single ProcessNext caller, which is the intended
// deployment.
type Bus struct {
	mu       sync.Mutex
	queue    []Event
	handlers map[Kind]Handler
}

// NewBus creates an empty bus with no handlers registered.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Kind]Handler),
	}
}

// Register binds a handler to an event kind for the lifetime of the
// process. Returns ErrDuplicateHandler if the kind is already bound.
func (b *Bus) Register(kind Kind, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.handlers[kind]; exists {
		return fmt.Errorf("%w: kind %s", ErrDuplicateHandler, kind)
	}

	b.handlers[kind] = handler
	return nil
}

// Enqueue appends an event to the queue. Returns false, without enqueuing,
// if no handler is registered for the event's kind — producers need not
// know which handlers are live.
func (b *Bus) Enqueue(event Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.handlers[event.Kind]; !exists {
		metrics.EventsDropped.Inc()
		logging.Debug("Dropping event %s with unroutable kind %s", event.ID, event.Kind)
		return false
	}

	b.queue = append(b.queue, event)
	metrics.EventsEnqueued.Inc()
	metrics.EventQueueDepth.Set(float64(len(b.queue)))
	return true
}

// ProcessNext pops the head event and invokes its handler. The lock is
// scoped to the pop only; the handler runs outside it. A handler error is
// returned as-is for the caller to contain. An event whose kind lost its
// handler between enqueue and dequeue is discarded silently.
func (b *Bus) ProcessNext() error {
	b.mu.Lock()
	if len(b.queue) == 0 {
		b.mu.Unlock()
		return nil
	}

	event := b.queue[0]
	b.queue = b.queue[1:]
	metrics.EventQueueDepth.Set(float64(len(b.queue)))
	handler := b.handlers[event.Kind]
	b.mu.Unlock()

	if handler == nil {
		return nil
	}

	if err := handler(event); err != nil {
		metrics.EventsProcessed.WithLabelValues(event.Kind.String(), "error").Inc()
		return err
	}

	metrics.EventsProcessed.WithLabelValues(event.Kind.String(), "success").Inc()
	return nil
}

// ProcessAll drains the queue, handling events in enqueue order until it is
// empty. Events enqueued by handlers during the drain are processed too.
// Stops at the first handler error.
func (b *Bus) ProcessAll() error {
	for b.Len() > 0 {
		if err := b.ProcessNext(); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of queued events.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Clear drops all queued events. Used during shutdown only.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) > 0 {
		logging.Info("Dropping %d queued events", len(b.queue))
	}
	b.queue = nil
	metrics.EventQueueDepth.Set(0)
}
