// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventHistory_Bounded(t *testing.T) {
	h := NewEventHistory(3, 0)
	for i := 0; i < 5; i++ {
		h.Add(Event{ID: fmt.Sprintf("e%d", i), Type: EventNavigationCommitted})
	}

	got := h.Query(EventFilter{})
	assert.Len(t, got, 3)
	assert.Equal(t, "e2", got[0].ID)
	assert.Equal(t, "e4", got[2].ID)
}

func TestEventHistory_Filter(t *testing.T) {
	h := NewEventHistory(0, 0)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	h.Add(Event{ID: "1", Type: EventHistoryAdded, Server: "https://a.example", Timestamp: base})
	h.Add(Event{ID: "2", Type: EventNavigationCommitted, Server: "https://a.example", Timestamp: base.Add(time.Minute)})
	h.Add(Event{ID: "3", Type: EventNavigationTimeout, Server: "https://b.example", Timestamp: base.Add(2 * time.Minute)})

	t.Run("types", func(t *testing.T) {
		got := h.Query(EventFilter{Types: []string{"navigation.*"}})
		assert.Len(t, got, 2)
	})

	t.Run("server", func(t *testing.T) {
		got := h.Query(EventFilter{Server: "https://b.example"})
		assert.Len(t, got, 1)
		assert.Equal(t, "3", got[0].ID)
	})

	t.Run("since", func(t *testing.T) {
		got := h.Query(EventFilter{Since: base.Add(30 * time.Second)})
		assert.Len(t, got, 2)
	})

	t.Run("limit keeps most recent", func(t *testing.T) {
		got := h.Query(EventFilter{Limit: 1})
		assert.Len(t, got, 1)
		assert.Equal(t, "3", got[0].ID)
	})
}

func TestEventHistory_Clear(t *testing.T) {
	h := NewEventHistory(10, 0)
	h.Add(Event{ID: "1", Type: EventSetupRequired})
	h.Clear()
	assert.Empty(t, h.Query(EventFilter{}))
}

func TestEventHistory_MaxAge(t *testing.T) {
	h := NewEventHistory(10, time.Minute)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	h.Add(Event{ID: "old", Type: EventHistoryAdded, Timestamp: base})
	h.Add(Event{ID: "mid", Type: EventHistoryAdded, Timestamp: base.Add(30 * time.Second)})
	h.Add(Event{ID: "new", Type: EventHistoryAdded, Timestamp: base.Add(90 * time.Second)})

	got := h.Query(EventFilter{})
	assert.Len(t, got, 2)
	assert.Equal(t, "mid", got[0].ID)
}
