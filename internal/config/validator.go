// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validator validates configuration against schema rules.
type Validator struct{}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks configuration validity. Run it after defaults are applied.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateServer(cfg, errs)
	v.validateStore(cfg, errs)
	v.validatePlatform(cfg, errs)
	v.validateDeepLink(cfg, errs)
	v.validateDurations(cfg, errs)

	if cfg.History.MaxEntries < 0 {
		errs.Add("history.max_entries", "must not be negative")
	}

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateServer(cfg *Config, errs *ValidationError) {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs.Add("server.port", "must be between 1 and 65535")
	}
}

func (v *Validator) validateStore(cfg *Config, errs *ValidationError) {
	switch cfg.Store.Backend {
	case "file", "sqlite":
		if cfg.Store.Path == "" {
			errs.Add("store.path", "is required for the "+cfg.Store.Backend+" backend")
		}
	case "memory":
	default:
		errs.Add("store.backend", fmt.Sprintf("unknown backend %q (use file, sqlite or memory)", cfg.Store.Backend))
	}
}

func (v *Validator) validatePlatform(cfg *Config, errs *ValidationError) {
	switch cfg.Platform.Name {
	case "web":
		if cfg.Platform.Native {
			errs.Add("platform.native", "web platform cannot be native")
		}
	case "android", "ios":
		if !cfg.Platform.Native {
			errs.Add("platform.native", cfg.Platform.Name+" platform must be native")
		}
	default:
		errs.Add("platform.name", fmt.Sprintf("unknown platform %q", cfg.Platform.Name))
	}
}

var schemePattern = regexp.MustCompile(`^[a-z][a-z0-9+.-]*$`)

func (v *Validator) validateDeepLink(cfg *Config, errs *ValidationError) {
	if !schemePattern.MatchString(cfg.DeepLink.Scheme) {
		errs.Add("deeplink.scheme", fmt.Sprintf("invalid scheme %q", cfg.DeepLink.Scheme))
	}
	if cfg.DeepLink.Scheme == "http" || cfg.DeepLink.Scheme == "https" {
		errs.Add("deeplink.scheme", "must be a custom scheme")
	}
}

func (v *Validator) validateDurations(cfg *Config, errs *ValidationError) {
	durations := map[string]string{
		"probe.health_timeout":   cfg.Probe.HealthTimeout,
		"probe.config_timeout":   cfg.Probe.ConfigTimeout,
		"loading.timeout":        cfg.Loading.Timeout,
		"deeplink.debounce":      cfg.DeepLink.Debounce,
		"events.history.max_age": cfg.Events.History.MaxAge,
	}
	for field, value := range durations {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			errs.Add(field, fmt.Sprintf("invalid duration %q", value))
			continue
		}
		if d <= 0 {
			errs.Add(field, "must be positive")
		}
	}
}
