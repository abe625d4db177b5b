package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBufferSize is the per-subscriber channel capacity.
const DefaultBufferSize = 64

type options struct {
	buffer int
	now    func() time.Time
}

// Option configures a Broker.
type Option func(*options)

// WithBuffer sets the per-subscriber channel capacity.
func WithBuffer(size int) Option {
	return func(o *options) {
		if size >= 0 {
			o.buffer = size
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

type subscription[T any] struct {
	ch    chan Event[T]
	types []EventType
}

func (s *subscription[T]) wants(t EventType) bool {
	if len(s.types) == 0 {
		return true
	}
	for _, want := range s.types {
		if want == t {
			return true
		}
	}
	return false
}

// Broker delivers published events to every matching subscriber. Publish
// never blocks: a subscriber whose buffer is full misses the event and the
// miss is counted in Dropped.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[*subscription[T]]struct{}
	closed  bool
	opts    options
	dropped atomic.Uint64
}

// NewBroker creates a broker.
func NewBroker[T any](opts ...Option) *Broker[T] {
	o := options{buffer: DefaultBufferSize, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Broker[T]{
		subs: make(map[*subscription[T]]struct{}),
		opts: o,
	}
}

// Subscribe returns a channel of events whose type is one of types (all
// events when types is empty). The channel is closed when ctx is done or the
// broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context, types ...EventType) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := &subscription[T]{
		ch:    make(chan Event[T], b.opts.buffer),
		types: types,
	}
	b.subs[sub] = struct{}{}
	context.AfterFunc(ctx, func() { b.unsubscribe(sub) })
	return sub.ch
}

func (b *Broker[T]) unsubscribe(sub *subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Publish sends an event to every subscriber that wants its type.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	event := Event[T]{Type: eventType, Payload: payload, Timestamp: b.opts.now()}
	for sub := range b.subs {
		if !sub.wants(eventType) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Close closes every subscriber channel. Later subscriptions are returned
// already closed and later publishes are ignored.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		close(sub.ch)
	}
	clear(b.subs)
}

// SubscriberCount returns the number of open subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber's
// buffer was full.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}
