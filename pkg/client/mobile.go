// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// Health calls GET /api/health.
//
// A nil error means the server answered 2xx with a non-empty JSON body.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	data, err := c.get(ctx, "/api/health")
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty health response")
	}

	var h Health
	// Non-object bodies (e.g. "ok") are valid JSON but carry no status.
	_ = json.Unmarshal(data, &h)
	return &h, nil
}

// MobileClient provides access to the /api/mobile endpoints.
//
// Access this client through [Client.Mobile].
type MobileClient struct {
	c *Client
}

// Config fetches the mobile configuration of the server.
func (m *MobileClient) Config(ctx context.Context) (*MobileConfig, error) {
	data, err := m.c.get(ctx, "/api/mobile/config")
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return &MobileConfig{}, nil
	}

	var cfg MobileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse mobile config: %w", err)
	}
	return &cfg, nil
}

// DeleteDeviceToken asks the server to forget the push registration of
// deviceID.
func (m *MobileClient) DeleteDeviceToken(ctx context.Context, deviceID string) error {
	_, err := m.c.postJSON(ctx, "/api/mobile/device-token/delete", DeleteDeviceTokenRequest{
		DeviceID: deviceID,
	})
	return err
}
