// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/teamnifty/nuxbe/internal/store"
)

// ErrEmptyToken is returned for a blank push token.
var ErrEmptyToken = errors.New("push token is empty")

// PushRegistry accepts the push token from the platform at most once per
// process and keeps it in the store for the next login URL.
type PushRegistry struct {
	store store.Store

	mu        sync.Mutex
	delivered bool
}

// NewPushRegistry returns a registry writing to s.
func NewPushRegistry(s store.Store) *PushRegistry {
	return &PushRegistry{store: s}
}

// Deliver saves token. It returns false when a token was already delivered
// in this process; later tokens are ignored.
func (p *PushRegistry) Deliver(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, ErrEmptyToken
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.delivered {
		log.Printf("Bridge: ignoring repeated push token delivery")
		return false, nil
	}
	if err := p.store.Set(ctx, store.KeyPushToken, token); err != nil {
		return false, fmt.Errorf("save push token: %w", err)
	}
	p.delivered = true
	return true, nil
}

// Token returns the stored push token, or "" if none.
func (p *PushRegistry) Token(ctx context.Context) (string, error) {
	token, _, err := p.store.Get(ctx, store.KeyPushToken)
	if err != nil {
		return "", fmt.Errorf("read push token: %w", err)
	}
	return token, nil
}

// DeviceName returns the user-assigned device name, or "" if none.
func DeviceName(ctx context.Context, s store.Store) (string, error) {
	name, _, err := s.Get(ctx, store.KeyDeviceName)
	if err != nil {
		return "", fmt.Errorf("read device name: %w", err)
	}
	return name, nil
}

// SetDeviceName stores name, removing the key when name is blank.
func SetDeviceName(ctx context.Context, s store.Store, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.Remove(ctx, store.KeyDeviceName)
	}
	if err := s.Set(ctx, store.KeyDeviceName, name); err != nil {
		return fmt.Errorf("save device name: %w", err)
	}
	return nil
}
