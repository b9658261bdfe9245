// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"sync"
	"time"
)

// DefaultHistoryMaxEvents bounds the in-memory event history.
const DefaultHistoryMaxEvents = 500

// EventHistory keeps the most recent events in publish order.
type EventHistory struct {
	mu        sync.RWMutex
	events    []Event
	maxEvents int
	maxAge    time.Duration
	matcher   *PatternMatcher
}

// NewEventHistory creates a history bounded to maxEvents. A positive maxAge
// also drops events older than maxAge.
func NewEventHistory(maxEvents int, maxAge time.Duration) *EventHistory {
	if maxEvents <= 0 {
		maxEvents = DefaultHistoryMaxEvents
	}
	return &EventHistory{
		events:    make([]Event, 0),
		maxEvents: maxEvents,
		maxAge:    maxAge,
		matcher:   NewPatternMatcher(),
	}
}

// Add stores an event, dropping the oldest past the bounds.
func (h *EventHistory) Add(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, event)
	if len(h.events) > h.maxEvents {
		h.events = h.events[len(h.events)-h.maxEvents:]
	}
	if h.maxAge > 0 {
		cutoff := event.Timestamp.Add(-h.maxAge)
		i := 0
		for i < len(h.events) && h.events[i].Timestamp.Before(cutoff) {
			i++
		}
		h.events = h.events[i:]
	}
}

// Query retrieves events matching filter, oldest first.
func (h *EventHistory) Query(filter EventFilter) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]Event, 0)
	for _, event := range h.events {
		if h.matchesFilter(event, filter) {
			result = append(result, event)
		}
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result
}

func (h *EventHistory) matchesFilter(event Event, filter EventFilter) bool {
	if len(filter.Types) > 0 {
		matched := false
		for _, pattern := range filter.Types {
			if h.matcher.Match(event.Type, pattern) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if filter.Server != "" && event.Server != filter.Server {
		return false
	}

	if !filter.Since.IsZero() && event.Timestamp.Before(filter.Since) {
		return false
	}

	return true
}

// Clear drops all stored events.
func (h *EventHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}
