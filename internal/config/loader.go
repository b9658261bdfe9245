// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/hjson/hjson-go/v4"
)

// Loader handles configuration file loading.
type Loader struct {
	// Environ overrides the process environment; used by tests.
	Environ map[string]string
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the configuration from the given path.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes HJSON configuration.
func Parse(data []byte) (*Config, error) {
	// Parse HJSON to intermediate map
	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse hjson: %w", err)
	}

	// Convert to JSON and unmarshal to struct (for type safety)
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads the file at path (skipped when path is empty),
// applies environment overrides, then fills in defaults.
func (l *Loader) LoadWithDefaults(ctx context.Context, path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		var err error
		cfg, err = l.Load(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	if err := l.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// ApplyEnv overrides fields from NUXBE_* environment variables. Unset
// variables leave the field alone.
func (l *Loader) ApplyEnv(cfg *Config) error {
	opts := env.Options{}
	if l.Environ != nil {
		opts.Environment = l.Environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FindConfig searches for a config file in the current directory.
// It looks for nuxbe.hjson first, then nuxbe.json.
func (l *Loader) FindConfig() (string, error) {
	candidates := []string{
		"nuxbe.hjson",
		"nuxbe.json",
	}

	for _, name := range candidates {
		path := filepath.Join(".", name)
		if _, err := os.Stat(path); err == nil {
			abs, err := filepath.Abs(path)
			if err != nil {
				return path, nil
			}
			return abs, nil
		}
	}

	return "", fmt.Errorf("config file not found (looked for nuxbe.hjson, nuxbe.json)")
}

// ApplyDefaults sets default values for missing config fields.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 7433
	}

	// Store defaults
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "file"
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Backend {
		case "sqlite":
			cfg.Store.Path = "nuxbe.db"
		case "file":
			cfg.Store.Path = "nuxbe-store.json"
		}
	}

	// Probe defaults
	if cfg.Probe.HealthTimeout == "" {
		cfg.Probe.HealthTimeout = "10s"
	}
	if cfg.Probe.ConfigTimeout == "" {
		cfg.Probe.ConfigTimeout = "5s"
	}
	if cfg.Probe.UserAgent == "" {
		cfg.Probe.UserAgent = "nuxbe-shell"
	}

	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = 5
	}
	if cfg.Loading.Timeout == "" {
		cfg.Loading.Timeout = "30s"
	}

	// Platform defaults
	if cfg.Platform.Name == "" {
		if cfg.Platform.Native {
			cfg.Platform.Name = "android"
		} else {
			cfg.Platform.Name = "web"
		}
	}

	// Deep link defaults
	if cfg.DeepLink.Scheme == "" {
		cfg.DeepLink.Scheme = "nuxbe"
	}
	if cfg.DeepLink.Debounce == "" {
		cfg.DeepLink.Debounce = "100ms"
	}

	// Events defaults
	if cfg.Events.History.MaxEvents == 0 {
		cfg.Events.History.MaxEvents = 1000
	}
	if cfg.Events.History.MaxAge == "" {
		cfg.Events.History.MaxAge = "1h"
	}

	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
