// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package history keeps the bounded, most-recently-used list of servers the
// shell has connected to.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/teamnifty/nuxbe/internal/store"
)

// DefaultMaxEntries is the default history bound.
const DefaultMaxEntries = 5

// Entry is one remembered server.
type Entry struct {
	URL             string    `json:"url"`
	DisplayName     string    `json:"appName"`
	LastConnectedAt time.Time `json:"lastConnected"`
}

// Revoker drops a device's push registration on a server.
type Revoker interface {
	RevokeDeviceToken(ctx context.Context, serverURL, deviceID string) error
}

// DeviceIdentifier supplies the identifier sent with revocation requests.
type DeviceIdentifier interface {
	DeviceID(ctx context.Context) (string, error)
}

// Config configures a Manager.
type Config struct {
	MaxEntries int
	Revoker    Revoker          // optional
	Device     DeviceIdentifier // optional; required for revocation
	Now        func() time.Time // optional; defaults to time.Now
}

// Manager maintains the history list in the connection store.
type Manager struct {
	mu         sync.Mutex
	store      store.Store
	maxEntries int
	revoker    Revoker
	device     DeviceIdentifier
	now        func() time.Time
}

// NewManager creates a history manager on top of s.
func NewManager(s store.Store, cfg Config) *Manager {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		store:      s,
		maxEntries: cfg.MaxEntries,
		revoker:    cfg.Revoker,
		device:     cfg.Device,
		now:        cfg.Now,
	}
}

// Add records a successful connection. An existing entry for the same URL
// is removed before the new one is prepended, and the list is truncated to
// the bound. An empty display name falls back to the URL.
func (m *Manager) Add(ctx context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.DisplayName == "" {
		entry.DisplayName = entry.URL
	}
	if entry.LastConnectedAt.IsZero() {
		entry.LastConnectedAt = m.now().UTC()
	}

	entries, err := m.load(ctx)
	if err != nil {
		return err
	}

	updated := make([]Entry, 0, len(entries)+1)
	updated = append(updated, entry)
	for _, e := range entries {
		if e.URL != entry.URL {
			updated = append(updated, e)
		}
	}
	if len(updated) > m.maxEntries {
		updated = updated[:m.maxEntries]
	}

	return m.save(ctx, updated)
}

// List returns the history, most recent first. A fresh install returns an
// empty slice.
func (m *Manager) List(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

// Remove deletes url from the history. Before the local removal the server
// is asked to revoke this device's push registration; that call is best
// effort and its failure is only logged.
func (m *Manager) Remove(ctx context.Context, url string) error {
	m.revoke(ctx, url)

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.URL != url {
			kept = append(kept, e)
		}
	}
	return m.save(ctx, kept)
}

func (m *Manager) revoke(ctx context.Context, url string) {
	if m.revoker == nil || m.device == nil {
		return
	}
	deviceID, err := m.device.DeviceID(ctx)
	if err != nil {
		log.Printf("History: no device id for token revocation on %s: %v", url, err)
		return
	}
	if err := m.revoker.RevokeDeviceToken(ctx, url, deviceID); err != nil {
		log.Printf("History: token revocation on %s failed: %v", url, err)
	}
}

// load reads the stored list. Unparsable data is logged and treated as an
// empty history so a corrupt value never blocks connecting.
func (m *Manager) load(ctx context.Context) ([]Entry, error) {
	raw, ok, err := m.store.Get(ctx, store.KeyServerHistory)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if !ok || raw == "" {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Printf("History: failed to parse stored history: %v", err)
		return []Entry{}, nil
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (m *Manager) save(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := m.store.Set(ctx, store.KeyServerHistory, string(data)); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
