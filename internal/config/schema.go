// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading and environment
// overrides.
package config

import (
	"time"
)

// Config is the root configuration structure for the shell.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Store     StoreConfig     `json:"store"`
	Probe     ProbeConfig     `json:"probe"`
	History   HistoryConfig   `json:"history"`
	Loading   LoadingConfig   `json:"loading"`
	Bootstrap BootstrapConfig `json:"bootstrap"`
	Platform  PlatformConfig  `json:"platform"`
	DeepLink  DeepLinkConfig  `json:"deeplink"`
	Events    EventsConfig    `json:"events"`
	Locale    string          `json:"locale" env:"NUXBE_LOCALE"`
}

// ServerConfig configures the local bridge API.
type ServerConfig struct {
	Host string `json:"host" env:"NUXBE_HOST"`
	Port int    `json:"port" env:"NUXBE_PORT"`
}

// StoreConfig selects the connection store backend.
type StoreConfig struct {
	Backend string `json:"backend" env:"NUXBE_STORE_BACKEND"` // "file", "sqlite" or "memory"
	Path    string `json:"path" env:"NUXBE_STORE_PATH"`
}

// ProbeConfig bounds the server probes.
type ProbeConfig struct {
	HealthTimeout string `json:"health_timeout" env:"NUXBE_PROBE_HEALTH_TIMEOUT"`
	ConfigTimeout string `json:"config_timeout" env:"NUXBE_PROBE_CONFIG_TIMEOUT"`
	UserAgent     string `json:"user_agent" env:"NUXBE_PROBE_USER_AGENT"`
}

// HistoryConfig bounds the server history.
type HistoryConfig struct {
	MaxEntries int `json:"max_entries" env:"NUXBE_HISTORY_MAX_ENTRIES"`
}

// LoadingConfig configures the loading supervisor.
type LoadingConfig struct {
	Timeout string `json:"timeout" env:"NUXBE_LOADING_TIMEOUT"`
}

// BootstrapConfig tunes launch behavior.
type BootstrapConfig struct {
	ConfirmResume bool `json:"confirm_resume" env:"NUXBE_CONFIRM_RESUME"` // Ask before reopening the remembered server
}

// PlatformConfig describes the host platform.
type PlatformConfig struct {
	Name         string `json:"name" env:"NUXBE_PLATFORM"` // "web", "android" or "ios"
	Native       bool   `json:"native" env:"NUXBE_PLATFORM_NATIVE"`
	DeviceID     string `json:"device_id" env:"NUXBE_DEVICE_ID"`
	Model        string `json:"model" env:"NUXBE_DEVICE_MODEL"`
	Manufacturer string `json:"manufacturer" env:"NUXBE_DEVICE_MANUFACTURER"`
	OSVersion    string `json:"os_version" env:"NUXBE_DEVICE_OS_VERSION"`
	DeviceName   string `json:"device_name" env:"NUXBE_DEVICE_NAME"`
	UserAgent    string `json:"user_agent" env:"NUXBE_USER_AGENT"` // Reported as OS version on web
}

// DeepLinkConfig configures deep-link intake.
type DeepLinkConfig struct {
	Scheme     string `json:"scheme" env:"NUXBE_DEEPLINK_SCHEME"`
	MarkerFile string `json:"marker_file" env:"NUXBE_MARKER_FILE"` // Launch marker written by native code; empty disables watching
	Debounce   string `json:"debounce" env:"NUXBE_MARKER_DEBOUNCE"`
}

// EventsConfig configures the event bus.
type EventsConfig struct {
	History EventsHistoryConfig `json:"history"`
}

// EventsHistoryConfig bounds event history.
type EventsHistoryConfig struct {
	MaxEvents int    `json:"max_events" env:"NUXBE_EVENTS_MAX"`
	MaxAge    string `json:"max_age" env:"NUXBE_EVENTS_MAX_AGE"`
}

// ParseDuration parses a duration string, returning a default if empty.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// Addr returns host:port for the bridge API listener.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
