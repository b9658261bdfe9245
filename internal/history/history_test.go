// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamnifty/nuxbe/internal/store"
)

type fakeRevoker struct {
	calls []string
	err   error
}

func (f *fakeRevoker) RevokeDeviceToken(ctx context.Context, serverURL, deviceID string) error {
	f.calls = append(f.calls, serverURL+"|"+deviceID)
	return f.err
}

type fakeDevice struct{ id string }

func (f fakeDevice) DeviceID(ctx context.Context) (string, error) {
	if f.id == "" {
		return "", errors.New("no id")
	}
	return f.id, nil
}

// steppingClock returns a clock that advances one minute per call.
func steppingClock() func() time.Time {
	t := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func urls(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.URL
	}
	return out
}

func TestManager_ListEmpty(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), Config{})

	entries, err := m.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestManager_AddMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemoryStore(), Config{Now: steppingClock()})

	require.NoError(t, m.Add(ctx, Entry{URL: "https://a.example.com", DisplayName: "A"}))
	require.NoError(t, m.Add(ctx, Entry{URL: "https://b.example.com"}))

	entries, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://b.example.com", "https://a.example.com"}, urls(entries))
	assert.Equal(t, "https://b.example.com", entries[0].DisplayName, "display name falls back to url")
	assert.True(t, entries[0].LastConnectedAt.After(entries[1].LastConnectedAt))
}

func TestManager_AddDeduplicates(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemoryStore(), Config{Now: steppingClock()})

	for _, u := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"} {
		require.NoError(t, m.Add(ctx, Entry{URL: u}))
	}
	require.NoError(t, m.Add(ctx, Entry{URL: "https://a.example.com", DisplayName: "A again"}))

	entries, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://c.example.com", "https://b.example.com"}, urls(entries))
	assert.Equal(t, "A again", entries[0].DisplayName)
}

func TestManager_BoundEvictsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemoryStore(), Config{Now: steppingClock()})

	for i := 1; i <= 6; i++ {
		require.NoError(t, m.Add(ctx, Entry{URL: fmt.Sprintf("https://s%d.example.com", i)}))
	}

	entries, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, DefaultMaxEntries)
	assert.Equal(t, "https://s6.example.com", entries[0].URL)
	assert.NotContains(t, urls(entries), "https://s1.example.com")
}

func TestManager_CustomBound(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemoryStore(), Config{MaxEntries: 2})

	for i := 1; i <= 4; i++ {
		require.NoError(t, m.Add(ctx, Entry{URL: fmt.Sprintf("https://s%d.example.com", i)}))
	}
	entries, _ := m.List(ctx)
	assert.Len(t, entries, 2)
}

func TestManager_Remove(t *testing.T) {
	ctx := context.Background()
	revoker := &fakeRevoker{}
	m := NewManager(store.NewMemoryStore(), Config{Revoker: revoker, Device: fakeDevice{id: "dev-1"}})

	require.NoError(t, m.Add(ctx, Entry{URL: "https://a.example.com"}))
	require.NoError(t, m.Add(ctx, Entry{URL: "https://b.example.com"}))

	require.NoError(t, m.Remove(ctx, "https://a.example.com"))

	entries, _ := m.List(ctx)
	assert.Equal(t, []string{"https://b.example.com"}, urls(entries))
	assert.Equal(t, []string{"https://a.example.com|dev-1"}, revoker.calls)
}

func TestManager_RemoveRevocationFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	revoker := &fakeRevoker{err: errors.New("connection refused")}
	m := NewManager(store.NewMemoryStore(), Config{Revoker: revoker, Device: fakeDevice{id: "dev-1"}})

	require.NoError(t, m.Add(ctx, Entry{URL: "https://a.example.com"}))
	require.NoError(t, m.Remove(ctx, "https://a.example.com"))

	entries, _ := m.List(ctx)
	assert.Empty(t, entries)
	assert.Len(t, revoker.calls, 1)
}

func TestManager_RemoveWithoutDeviceID(t *testing.T) {
	ctx := context.Background()
	revoker := &fakeRevoker{}
	m := NewManager(store.NewMemoryStore(), Config{Revoker: revoker, Device: fakeDevice{}})

	require.NoError(t, m.Add(ctx, Entry{URL: "https://a.example.com"}))
	require.NoError(t, m.Remove(ctx, "https://a.example.com"))

	assert.Empty(t, revoker.calls)
	entries, _ := m.List(ctx)
	assert.Empty(t, entries)
}

func TestManager_CorruptHistoryTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(ctx, store.KeyServerHistory, "{broken"))

	m := NewManager(s, Config{})
	entries, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, m.Add(ctx, Entry{URL: "https://a.example.com"}))
	entries, _ = m.List(ctx)
	assert.Len(t, entries, 1)
}

func TestManager_ReadsLegacyFormat(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	legacy := `[{"url":"https://demo.nuxbe.com","appName":"Demo Co","lastConnected":"2025-11-02T09:30:00.000Z"}]`
	require.NoError(t, s.Set(ctx, store.KeyServerHistory, legacy))

	entries, err := NewManager(s, Config{}).List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Demo Co", entries[0].DisplayName)
	assert.Equal(t, 2025, entries[0].LastConnectedAt.Year())
}
