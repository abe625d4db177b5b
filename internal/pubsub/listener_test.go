package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContinuousListener_Next(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewContinuousListener(ctx, broker, InvalidatedEvent)
	broker.Publish(RegisteredEvent, "ion:add")
	broker.Publish(InvalidatedEvent, "ion:home")

	event, ok := listener.Next()
	require.True(t, ok)
	require.Equal(t, "ion:home", event.Payload)
	require.Equal(t, InvalidatedEvent, event.Type)
}

func TestContinuousListener_StopsOnCancel(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	listener := NewContinuousListener(ctx, broker)

	result := make(chan bool, 1)
	go func() {
		_, ok := listener.Next()
		result <- ok
	}()

	cancel()
	select {
	case ok := <-result:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after cancel")
	}
}

func TestContinuousListener_DrainStopsOnClose(t *testing.T) {
	broker := NewBroker[int]()
	listener := NewContinuousListener(context.Background(), broker)

	broker.Publish(LoggedEvent, 1)
	broker.Publish(LoggedEvent, 2)
	broker.Close()

	got := make(chan []int, 1)
	go func() {
		var payloads []int
		listener.Drain(func(e Event[int]) { payloads = append(payloads, e.Payload) })
		got <- payloads
	}()

	select {
	case payloads := <-got:
		require.Equal(t, []int{1, 2}, payloads, "buffered events are delivered before the close")
	case <-time.After(time.Second):
		t.Fatal("Drain did not return after Close")
	}
}
