// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package store provides the persisted key-value store that survives shell
// restarts. Keys are independent; there are no transactions across keys.
package store

import (
	"context"
	"fmt"
)

// Keys shared by the shell components. The names match the keys used by the
// mobile app so that existing installations keep their state.
const (
	KeyServerURL           = "server_url"
	KeyServerHistory       = "server_history"
	KeyPushToken           = "fcm_token"
	KeyDeviceName          = "device_name"
	KeyDeviceID            = "nuxbe_device_id"
	KeyPendingDeepLinkURL  = "pending_deep_link_url"
	KeyPendingDeepLinkPath = "pending_deep_link_path"
	KeyDeepLinkServer      = "deep_link_server"
	KeyDeepLinkTarget      = "deep_link_target"
)

// Store is a durable string key-value store.
type Store interface {
	// Get returns the value for key. ok is false when the key is not set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates the store for the configured backend. The returned close
// function releases backend resources and is never nil.
func Open(backend, path string) (Store, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case "", BackendFile:
		return NewFileStore(path), noop, nil
	case BackendSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case BackendMemory:
		return NewMemoryStore(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", backend)
	}
}
