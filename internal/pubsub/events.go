// Package pubsub fans registry and log events out to in-process
// subscribers.
package pubsub

import (
	"context"
	"slices"
	"time"
)

// EventType names what happened.
type EventType string

const (
	// RegisteredEvent: an icon was registered directly.
	RegisteredEvent EventType = "registered"
	// LoaderAddedEvent: a loader joined a namespace.
	LoaderAddedEvent EventType = "loader_added"
	// InvalidatedEvent: an icon was dropped from every cache tier.
	InvalidatedEvent EventType = "invalidated"
	// EvictedEvent: the LRU dropped an icon for capacity, as opposed to an
	// explicit invalidation.
	EvictedEvent EventType = "evicted"
	// LoggedEvent: a log line was written.
	LoggedEvent EventType = "logged"
)

// Event is one published occurrence with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Is reports whether the event has one of types.
func (e Event[T]) Is(types ...EventType) bool {
	return slices.Contains(types, e.Type)
}

// Subscriber hands out event channels, optionally filtered by type.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context, types ...EventType) <-chan Event[T]
}

// Publisher publishes events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
