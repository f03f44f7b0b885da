// internal/events/handler.go
package events

import (
	"context"
)

// Handler consumes events delivered by the bus. Handle is called once per
// delivery and must not block; slow work belongs in the handler's own
// goroutine.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle invokes the wrapped function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Subscription is the caller's handle on a registered Handler.
type Subscription interface {
	// Unsubscribe detaches the handler; no further deliveries happen after
	// it returns.
	Unsubscribe()
}

type subscription struct {
	id        string
	bus       *Bus
	eventType EventType
}

func (s *subscription) Unsubscribe() {
	s.bus.unsubscribe(s.id, s.eventType)
}
