package events

import (
	"context"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, MutationEvent)

// Dispatcher decouples mutation handlers from their observers. Events are
// published after the mutation has committed and the response value is
// already determined; subscribers run out of band and must never affect
// the outcome of the operation that produced the event.
type Dispatcher interface {
	Publish(ctx context.Context, event MutationEvent)
	Subscribe(eventType EventType, handler EventHandler)
}

// InMemoryDispatcher delivers events on a dedicated goroutine per
// publish, detached from the request's cancellation.
type InMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	inflight  sync.WaitGroup
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() *InMemoryDispatcher {
	return &InMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish delivers the event to subscribers asynchronously. The request
// context may be cancelled the moment the response is flushed, so
// delivery runs under a detached context.
func (d *InMemoryDispatcher) Publish(ctx context.Context, event MutationEvent) {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		for _, handler := range handlers {
			handler(detached, event)
		}
	}()
}

// Subscribe registers a handler for the given event type.
func (d *InMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Drain blocks until all published events have been delivered. Intended
// for shutdown and tests; production callers never wait on delivery.
func (d *InMemoryDispatcher) Drain() {
	d.inflight.Wait()
}
