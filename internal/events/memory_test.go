// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEventBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	var received []Event
	_, err := bus.Subscribe("navigation.*", func(ctx context.Context, e Event) error {
		received = append(received, e)
		return nil
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, Event{Type: EventNavigationCommitted, Server: "https://demo.nuxbe.com"}))
	require.NoError(t, bus.Publish(ctx, Event{Type: EventHistoryAdded}))

	require.Len(t, received, 1)
	assert.Equal(t, EventNavigationCommitted, received[0].Type)
	assert.NotEmpty(t, received[0].ID)
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestMemoryEventBus_Async(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	var types []string
	_, err := bus.SubscribeAsync("*", func(ctx context.Context, e Event) error {
		mu.Lock()
		types = append(types, e.Type)
		mu.Unlock()
		wg.Done()
		return nil
	}, 10)
	require.NoError(t, err)

	bus.Publish(context.Background(), Event{Type: EventBootstrapStarted})
	bus.Publish(context.Background(), Event{Type: EventBootstrapFinished})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handler not called")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{EventBootstrapStarted, EventBootstrapFinished}, types)
}

func TestMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	calls := 0
	id, err := bus.Subscribe("*", func(ctx context.Context, e Event) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Unsubscribe(id))
	assert.ErrorIs(t, bus.Unsubscribe(id), ErrSubscriptionNotFound)

	bus.Publish(context.Background(), Event{Type: EventSetupRequired})
	assert.Equal(t, 0, calls)
}

func TestMemoryEventBus_PanicRecovered(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	_, err := bus.Subscribe("*", func(ctx context.Context, e Event) error {
		panic("boom")
	})
	require.NoError(t, err)

	assert.NoError(t, bus.Publish(context.Background(), Event{Type: EventSetupFailed}))
}

func TestMemoryEventBus_History(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{HistoryMaxEvents: 10})
	defer bus.Close()

	ctx := context.Background()
	bus.Publish(ctx, Event{Type: EventHistoryAdded, Server: "https://a.example"})
	bus.Publish(ctx, Event{Type: EventHistoryRemoved, Server: "https://a.example"})

	got, err := bus.History(EventFilter{Types: []string{"history.*"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemoryEventBus_Closed(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), Event{Type: EventSetupRequired}), ErrBusClosed)
	_, err := bus.Subscribe("*", func(ctx context.Context, e Event) error { return nil })
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestEmit_NilBus(t *testing.T) {
	Emit(context.Background(), nil, EventSetupRequired, "", nil)
}

func TestEmit(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	Emit(context.Background(), bus, EventServerRemembered, "https://demo.nuxbe.com", map[string]interface{}{"display_name": "Demo Co"})

	got, _ := bus.History(EventFilter{})
	require.Len(t, got, 1)
	assert.Equal(t, "https://demo.nuxbe.com", got[0].Server)
	assert.Equal(t, "Demo Co", got[0].Payload["display_name"])
}
