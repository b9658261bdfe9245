// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "time"

// Health is the body of GET /api/health. Servers are free to return any
// JSON object; only Status is interpreted.
type Health struct {
	Status string `json:"status,omitempty"`
}

// MobileConfig is the body of GET /api/mobile/config.
type MobileConfig struct {
	// AppName is the tenant's friendly name, shown instead of the URL.
	AppName string `json:"app_name"`
}

// DeleteDeviceTokenRequest is the body of POST /api/mobile/device-token/delete.
type DeleteDeviceTokenRequest struct {
	DeviceID string `json:"device_id"`
}

// ServerIdentity is a normalized server URL with its friendly name.
type ServerIdentity struct {
	URL         string `json:"url"`
	DisplayName string `json:"display_name"`
}

// NavigationCommand tells the web view what to load.
type NavigationCommand struct {
	URL         string `json:"url"`
	ServerURL   string `json:"server_url"`
	DisplayName string `json:"display_name"`
	Override    bool   `json:"override,omitempty"`
}

// DeepLink is a resolved launch target.
type DeepLink struct {
	Action    string `json:"action"`
	ServerURL string `json:"server_url,omitempty"`
	Path      string `json:"path,omitempty"`
}

// SetupError explains why the setup screen is shown.
type SetupError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionResult is returned by the operations that drive the session.
type SessionResult struct {
	Phase    string             `json:"phase"`
	Server   *ServerIdentity    `json:"server,omitempty"`
	Command  *NavigationCommand `json:"command,omitempty"`
	DeepLink *DeepLink          `json:"deep_link,omitempty"`
	Error    *SetupError        `json:"error,omitempty"`
}

// SessionState is a snapshot of the shell session.
type SessionState struct {
	ServerURL                 string             `json:"server_url,omitempty"`
	DisplayName               string             `json:"display_name,omitempty"`
	NativeFeaturesInitialized bool               `json:"native_features_initialized"`
	Phase                     string             `json:"phase"`
	Command                   *NavigationCommand `json:"command,omitempty"`
	Error                     *SetupError        `json:"error,omitempty"`
}

// HistoryEntry is a previously connected server.
type HistoryEntry struct {
	URL             string    `json:"url"`
	AppName         string    `json:"appName"`
	LastConnectedAt time.Time `json:"lastConnected"`
}

// LoadingStatus describes the loading supervisor.
type LoadingStatus struct {
	State    string             `json:"state"`
	Command  *NavigationCommand `json:"command,omitempty"`
	ArmedAt  time.Time          `json:"armed_at,omitempty"`
	Deadline time.Time          `json:"deadline,omitempty"`
}

// NavigationStatus combines the loading supervisor and session state.
type NavigationStatus struct {
	Loading LoadingStatus `json:"loading"`
	Session SessionState  `json:"session"`
}

// DeviceInfo describes the device running the shell.
type DeviceInfo struct {
	Platform     string `json:"platform"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer,omitempty"`
	OSVersion    string `json:"os_version"`
	IsVirtual    bool   `json:"is_virtual,omitempty"`
}

// BridgeInfo is the body of GET /api/v1/bridge.
type BridgeInfo struct {
	IsNative bool        `json:"is_native"`
	Platform string      `json:"platform"`
	Version  string      `json:"version"`
	Device   *DeviceInfo `json:"device,omitempty"`
}

// Event is an entry in the shell event log.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Server    string                 `json:"server,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
