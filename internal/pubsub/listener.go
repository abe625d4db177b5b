package pubsub

import "context"

// ContinuousListener wraps a broker subscription for callers that consume
// events one at a time in a loop (CLI streams, background invalidators).
type ContinuousListener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewContinuousListener subscribes to broker for types (every type when
// empty). The subscription ends when ctx is cancelled.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T], types ...EventType) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx: ctx,
		ch:  broker.Subscribe(ctx, types...),
	}
}

// Next blocks until the next event arrives.
// Returns false once the context is cancelled or the broker is closed.
func (l *ContinuousListener[T]) Next() (Event[T], bool) {
	select {
	case <-l.ctx.Done():
		return Event[T]{}, false
	case event, ok := <-l.ch:
		return event, ok
	}
}

// Drain calls fn for every event until the listener stops.
func (l *ContinuousListener[T]) Drain(fn func(Event[T])) {
	for {
		event, ok := l.Next()
		if !ok {
			return
		}
		fn(event)
	}
}
