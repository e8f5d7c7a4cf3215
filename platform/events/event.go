// Package events carries workflow announcements (a lead arrived, a quote went
// out, a prospect decided) from the module that made the change to whoever
// reacts to it, without the two importing each other.
package events

import (
	"context"
	"time"
)

// Event is a fact that already happened. Names are "<module>.<subject>.<verb>".
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent stamps an event with its UTC creation time.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// Handler reacts to an event. A returned error is logged by the bus; it never
// reaches the publisher, whose change is already committed.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error { return f(ctx, event) }

// Bus delivers published events to the handlers subscribed to their name.
// Publish returns immediately; handlers run after the publisher's request.
type Bus interface {
	Publish(ctx context.Context, event Event)
	Subscribe(eventName string, handler Handler)
}
