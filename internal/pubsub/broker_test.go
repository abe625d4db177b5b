package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return Event[T]{}
	}
}

func requireClosed[T any](t *testing.T, ch <-chan Event[T]) {
	t.Helper()
	select {
	case _, ok := <-ch:
		require.False(t, ok, "expected closed channel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestBroker_PublishSubscribe(t *testing.T) {
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	broker := NewBroker[string](WithClock(func() time.Time { return stamp }))
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	broker.Publish(RegisteredEvent, "hero:pencil")

	event := receive(t, ch)
	require.Equal(t, "hero:pencil", event.Payload)
	require.Equal(t, RegisteredEvent, event.Type)
	require.Equal(t, stamp, event.Timestamp)
	require.True(t, event.Is(EvictedEvent, RegisteredEvent))
	require.False(t, event.Is(InvalidatedEvent))
}

func TestBroker_FanOut(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	subs := []<-chan Event[int]{
		broker.Subscribe(context.Background()),
		broker.Subscribe(context.Background()),
		broker.Subscribe(context.Background()),
	}
	require.Equal(t, 3, broker.SubscriberCount())

	broker.Publish(LoaderAddedEvent, 7)
	for _, ch := range subs {
		require.Equal(t, 7, receive(t, ch).Payload)
	}
}

func TestBroker_TypeFilter(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	evictions := broker.Subscribe(context.Background(), EvictedEvent)
	everything := broker.Subscribe(context.Background())

	broker.Publish(RegisteredEvent, "ion:a")
	broker.Publish(EvictedEvent, "ion:b")

	require.Equal(t, "ion:b", receive(t, evictions).Payload)
	require.Equal(t, "ion:a", receive(t, everything).Payload)
	require.Equal(t, "ion:b", receive(t, everything).Payload)

	select {
	case e := <-evictions:
		t.Fatalf("unexpected event %v", e)
	default:
	}
}

func TestBroker_ContextCancellation(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	requireClosed(t, ch)
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())

	broker.Close()
	broker.Close()
	requireClosed(t, ch)
	require.Zero(t, broker.SubscriberCount())

	requireClosed(t, broker.Subscribe(context.Background()))
	broker.Publish(RegisteredEvent, "ignored")
}

func TestBroker_CancelAfterClose(t *testing.T) {
	broker := NewBroker[string]()
	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)

	broker.Close()
	cancel() // must not close the channel twice
	requireClosed(t, ch)
}

func TestBroker_DropsWhenFull(t *testing.T) {
	broker := NewBroker[int](WithBuffer(2))
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	for i := range 5 {
		broker.Publish(InvalidatedEvent, i)
	}

	require.Equal(t, uint64(3), broker.Dropped())
	require.Equal(t, 0, receive(t, ch).Payload)
	require.Equal(t, 1, receive(t, ch).Payload)
}

func TestBroker_ConcurrentPublish(t *testing.T) {
	broker := NewBroker[int](WithBuffer(1000))
	defer broker.Close()

	ch := broker.Subscribe(context.Background())

	var wg sync.WaitGroup
	for w := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				broker.Publish(RegisteredEvent, w*100+i)
			}
		}()
	}
	wg.Wait()

	require.Len(t, ch, 500)
	require.Zero(t, broker.Dropped())
}

func TestBroker_ConcurrentSubscribeAndCancel(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithCancel(context.Background())
			_ = broker.Subscribe(ctx)
			broker.Publish(LoggedEvent, 1)
			cancel()
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
}
