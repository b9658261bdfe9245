// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package bridge describes the capabilities the host platform offers the
// shell: device identity, device details and push token delivery.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/teamnifty/nuxbe/internal/store"
)

// Platform names.
const (
	PlatformWeb     = "web"
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// DeviceInfo holds the device details forwarded to the server on login.
type DeviceInfo struct {
	Platform     string `json:"platform"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer,omitempty"`
	OSVersion    string `json:"os_version"`
	IsVirtual    bool   `json:"is_virtual,omitempty"`
}

// Platform is the capability interface injected into the bootstrap
// controller.
type Platform interface {
	IsNative() bool
	Name() string
	DeviceID(ctx context.Context) (string, error)
	DeviceInfo(ctx context.Context) (DeviceInfo, error)
}

// NativeConfig configures a native platform.
type NativeConfig struct {
	Name         string
	DeviceID     string
	Model        string
	Manufacturer string
	OSVersion    string
	IsVirtual    bool
}

// Native is a platform backed by an installed app.
type Native struct {
	cfg   NativeConfig
	store store.Store
}

// NewNative returns a native platform. When cfg.DeviceID is empty a device
// id is generated once and kept in s.
func NewNative(cfg NativeConfig, s store.Store) *Native {
	if cfg.Name == "" {
		cfg.Name = PlatformAndroid
	}
	return &Native{cfg: cfg, store: s}
}

func (n *Native) IsNative() bool { return true }

func (n *Native) Name() string { return n.cfg.Name }

// DeviceID returns the platform identifier.
func (n *Native) DeviceID(ctx context.Context) (string, error) {
	if n.cfg.DeviceID != "" {
		return n.cfg.DeviceID, nil
	}
	return persistentID(ctx, n.store)
}

// DeviceInfo returns the configured device details.
func (n *Native) DeviceInfo(ctx context.Context) (DeviceInfo, error) {
	return DeviceInfo{
		Platform:     n.cfg.Name,
		Model:        n.cfg.Model,
		Manufacturer: n.cfg.Manufacturer,
		OSVersion:    n.cfg.OSVersion,
		IsVirtual:    n.cfg.IsVirtual,
	}, nil
}

// Web is the browser variant. It has no push support and keeps a random
// device id in the store.
type Web struct {
	store     store.Store
	userAgent string
}

// NewWeb returns a web platform. userAgent is reported as the OS version.
func NewWeb(s store.Store, userAgent string) *Web {
	return &Web{store: s, userAgent: userAgent}
}

func (w *Web) IsNative() bool { return false }

func (w *Web) Name() string { return PlatformWeb }

// DeviceID returns the stored id, generating it on first use.
func (w *Web) DeviceID(ctx context.Context) (string, error) {
	return persistentID(ctx, w.store)
}

// DeviceInfo reports a generic browser device.
func (w *Web) DeviceInfo(ctx context.Context) (DeviceInfo, error) {
	return DeviceInfo{
		Platform:  PlatformWeb,
		Model:     "Web Browser",
		OSVersion: w.userAgent,
	}, nil
}

var idMu sync.Mutex

func persistentID(ctx context.Context, s store.Store) (string, error) {
	idMu.Lock()
	defer idMu.Unlock()

	id, ok, err := s.Get(ctx, store.KeyDeviceID)
	if err != nil {
		return "", fmt.Errorf("read device id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.New().String()
	if err := s.Set(ctx, store.KeyDeviceID, id); err != nil {
		return "", fmt.Errorf("save device id: %w", err)
	}
	return id, nil
}
