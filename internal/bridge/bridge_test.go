// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamnifty/nuxbe/internal/store"
)

func TestWeb_DeviceIDStable(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	w := NewWeb(s, "Mozilla/5.0")

	id, err := w.DeviceID(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	again, err := w.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	stored, ok, _ := s.Get(ctx, store.KeyDeviceID)
	assert.True(t, ok)
	assert.Equal(t, id, stored)
}

func TestWeb_Info(t *testing.T) {
	w := NewWeb(store.NewMemoryStore(), "Mozilla/5.0")
	assert.False(t, w.IsNative())
	assert.Equal(t, PlatformWeb, w.Name())

	info, err := w.DeviceInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Web Browser", info.Model)
	assert.Equal(t, "Mozilla/5.0", info.OSVersion)
	assert.Empty(t, info.Manufacturer)
}

func TestNative(t *testing.T) {
	ctx := context.Background()
	n := NewNative(NativeConfig{
		Name:         PlatformIOS,
		DeviceID:     "ABC-123",
		Model:        "iPhone15,2",
		Manufacturer: "Apple",
		OSVersion:    "17.4",
	}, store.NewMemoryStore())

	assert.True(t, n.IsNative())
	assert.Equal(t, PlatformIOS, n.Name())

	id, err := n.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ABC-123", id)

	info, err := n.DeviceInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Apple", info.Manufacturer)
	assert.Equal(t, "17.4", info.OSVersion)
}

func TestNative_GeneratedID(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	n := NewNative(NativeConfig{}, s)
	assert.Equal(t, PlatformAndroid, n.Name())

	id, err := n.DeviceID(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	again, _ := n.DeviceID(ctx)
	assert.Equal(t, id, again)
}

func TestPushRegistry_DeliverOnce(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	p := NewPushRegistry(s)

	ok, err := p.Deliver(ctx, "  tok-1 ")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Deliver(ctx, "tok-2")
	require.NoError(t, err)
	assert.False(t, ok)

	token, err := p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestPushRegistry_Empty(t *testing.T) {
	p := NewPushRegistry(store.NewMemoryStore())
	_, err := p.Deliver(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyToken)

	token, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestDeviceName(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	name, err := DeviceName(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, name)

	require.NoError(t, SetDeviceName(ctx, s, "Warehouse Tablet"))
	name, _ = DeviceName(ctx, s)
	assert.Equal(t, "Warehouse Tablet", name)

	require.NoError(t, SetDeviceName(ctx, s, ""))
	_, ok, _ := s.Get(ctx, store.KeyDeviceName)
	assert.False(t, ok)
}

func TestFeatures_DefaultDeviceName(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	n := NewNative(NativeConfig{Model: "Pixel 8", Manufacturer: "Google", OSVersion: "14"}, s)

	require.NoError(t, NewFeatures(n, s).InitNativeFeatures(ctx))
	name, _ := DeviceName(ctx, s)
	assert.Equal(t, "Google Pixel 8", name)

	require.NoError(t, SetDeviceName(ctx, s, "Front Desk"))
	require.NoError(t, NewFeatures(n, s).InitNativeFeatures(ctx))
	name, _ = DeviceName(ctx, s)
	assert.Equal(t, "Front Desk", name)
}

func TestFeatures_WebIsNoop(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	require.NoError(t, NewFeatures(NewWeb(s, "Mozilla/5.0"), s).InitNativeFeatures(ctx))
	_, ok, _ := s.Get(ctx, store.KeyDeviceName)
	assert.False(t, ok)
}

func TestDefaultDeviceName(t *testing.T) {
	assert.Equal(t, "Apple iPhone15,2", defaultDeviceName(DeviceInfo{Model: "iPhone15,2", Manufacturer: "Apple"}))
	assert.Equal(t, "Samsung Galaxy", defaultDeviceName(DeviceInfo{Model: "Samsung Galaxy", Manufacturer: "samsung"}))
	assert.Equal(t, "Google", defaultDeviceName(DeviceInfo{Manufacturer: "Google"}))
	assert.Empty(t, defaultDeviceName(DeviceInfo{}))
}
