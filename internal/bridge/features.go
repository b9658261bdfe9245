// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/teamnifty/nuxbe/internal/store"
)

// Features prepares the native integrations a server page relies on: the
// device description and a default device name for push registration.
type Features struct {
	platform Platform
	store    store.Store
}

// NewFeatures returns the initializer for p.
func NewFeatures(p Platform, s store.Store) *Features {
	return &Features{platform: p, store: s}
}

// InitNativeFeatures reads the device description and, when the user never
// named the device, stores "<manufacturer> <model>" as its name.
func (f *Features) InitNativeFeatures(ctx context.Context) error {
	if !f.platform.IsNative() {
		return nil
	}
	info, err := f.platform.DeviceInfo(ctx)
	if err != nil {
		return fmt.Errorf("device info: %w", err)
	}

	name, err := DeviceName(ctx, f.store)
	if err != nil {
		return err
	}
	if name == "" {
		if def := defaultDeviceName(info); def != "" {
			if err := SetDeviceName(ctx, f.store, def); err != nil {
				return err
			}
			name = def
		}
	}

	log.Printf("Bridge: native features ready on %s %s (os %s, device %q)",
		info.Platform, info.Model, info.OSVersion, name)
	return nil
}

func defaultDeviceName(info DeviceInfo) string {
	model := strings.TrimSpace(info.Model)
	maker := strings.TrimSpace(info.Manufacturer)
	switch {
	case model == "":
		return maker
	case maker == "" || strings.HasPrefix(strings.ToLower(model), strings.ToLower(maker)):
		return model
	}
	return maker + " " + model
}
