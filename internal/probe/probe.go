// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package probe checks whether a candidate server is reachable and fetches
// its friendly name. Both calls are bounded and fail soft: errors become
// false or "absent", never an error value.
package probe

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/teamnifty/nuxbe/pkg/client"
)

// Default bounds for the two probe calls.
const (
	DefaultHealthTimeout = 10 * time.Second
	DefaultConfigTimeout = 5 * time.Second
)

// Config configures a Prober.
type Config struct {
	HealthTimeout time.Duration
	ConfigTimeout time.Duration
	UserAgent     string
	HTTPClient    *http.Client // optional; shared by all probed servers
}

// ServerConfig is the subset of a server's mobile configuration the shell
// uses.
type ServerConfig struct {
	DisplayName string
}

// Prober probes candidate servers.
type Prober struct {
	healthTimeout time.Duration
	configTimeout time.Duration
	userAgent     string
	httpClient    *http.Client
}

// New creates a Prober. Zero timeouts fall back to the defaults.
func New(cfg Config) *Prober {
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = DefaultHealthTimeout
	}
	if cfg.ConfigTimeout <= 0 {
		cfg.ConfigTimeout = DefaultConfigTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Prober{
		healthTimeout: cfg.HealthTimeout,
		configTimeout: cfg.ConfigTimeout,
		userAgent:     cfg.UserAgent,
		httpClient:    hc,
	}
}

func (p *Prober) client(url string) *client.Client {
	return client.New(url, client.WithHTTPClient(p.httpClient), client.WithUserAgent(p.userAgent))
}

// CheckHealth reports whether GET {url}/api/health answers with a success
// status and a JSON body within the health timeout.
func (p *Prober) CheckHealth(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.healthTimeout)
	defer cancel()

	if _, err := p.client(url).Health(ctx); err != nil {
		log.Printf("Probe: health check for %s failed: %v", url, err)
		return false
	}
	return true
}

// FetchConfig returns the server's mobile configuration, or ok=false when
// it could not be fetched within the config timeout. Absence is not an
// error; callers fall back to the raw URL as display name.
func (p *Prober) FetchConfig(ctx context.Context, url string) (ServerConfig, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.configTimeout)
	defer cancel()

	cfg, err := p.client(url).Mobile.Config(ctx)
	if err != nil {
		log.Printf("Probe: config fetch for %s failed: %v", url, err)
		return ServerConfig{}, false
	}
	return ServerConfig{DisplayName: strings.TrimSpace(cfg.AppName)}, true
}

// RevokeDeviceToken asks the server to drop the push registration of
// deviceID. It is bounded by the config timeout.
func (p *Prober) RevokeDeviceToken(ctx context.Context, url, deviceID string) error {
	ctx, cancel := context.WithTimeout(ctx, p.configTimeout)
	defer cancel()

	return p.client(url).Mobile.DeleteDeviceToken(ctx, deviceID)
}
