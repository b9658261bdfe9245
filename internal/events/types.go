// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package events provides the in-process event bus that reports bootstrap
// and navigation progress to the embedded browser and to tests.
package events

import (
	"context"
	"time"
)

// Event represents an immutable event record.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Server    string                 `json:"server,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventHandler processes received events.
type EventHandler func(ctx context.Context, event Event) error

// SubscriptionID uniquely identifies a subscription.
type SubscriptionID string

// EventFilter for querying event history.
type EventFilter struct {
	Types  []string  // Event types to match (supports wildcards)
	Server string    // Filter by server URL
	Since  time.Time // Events after this time
	Limit  int       // Maximum events to return (most recent)
}

// EventBus is the pub/sub system shared by the shell components.
type EventBus interface {
	// Publish emits an event to all matching subscribers.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a synchronous handler for events matching pattern.
	Subscribe(pattern string, handler EventHandler) (SubscriptionID, error)

	// SubscribeAsync registers a handler fed through a buffered channel.
	SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(id SubscriptionID) error

	// History retrieves past events matching filter.
	History(filter EventFilter) ([]Event, error)

	// Close shuts down the event bus.
	Close() error
}

// Event types
const (
	EventBootstrapStarted  = "bootstrap.started"
	EventBootstrapFinished = "bootstrap.finished"

	EventSetupRequired   = "setup.required"
	EventSetupFailed     = "setup.failed"
	EventReconnectPrompt = "setup.reconnect_prompt"

	EventServerRemembered = "server.remembered"
	EventServerCleared    = "server.cleared"

	EventHistoryAdded   = "history.added"
	EventHistoryRemoved = "history.removed"

	EventDeepLinkQueued   = "deeplink.queued"
	EventDeepLinkResolved = "deeplink.resolved"

	EventNavigationCommitted = "navigation.committed"
	EventNavigationOverride  = "navigation.override"
	EventNavigationCompleted = "navigation.completed"
	EventNavigationTimeout   = "navigation.timeout"
	EventNavigationRetried   = "navigation.retried"
	EventNavigationCancelled = "navigation.cancelled"

	EventFeaturesInitialized = "features.initialized"
	EventPushTokenReceived   = "push.token_received"
)
