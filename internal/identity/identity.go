// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package identity normalizes server URLs and describes the server a shell
// is connected to.
package identity

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a URL cannot be turned into an absolute
// http or https server address.
var ErrInvalidURL = errors.New("invalid server url")

// ErrEmptyURL is returned for blank input.
var ErrEmptyURL = errors.New("server url is empty")

// ServerIdentity identifies one tenant backend.
type ServerIdentity struct {
	URL         string `json:"url"`
	DisplayName string `json:"display_name"`
}

// New returns an identity for an already normalized URL. An empty display
// name falls back to the URL.
func New(normalizedURL, displayName string) ServerIdentity {
	if strings.TrimSpace(displayName) == "" {
		displayName = normalizedURL
	}
	return ServerIdentity{URL: normalizedURL, DisplayName: displayName}
}

// Normalize turns user input into the canonical server URL.
//
// Surrounding whitespace and trailing slashes are removed, a missing scheme
// becomes https, and http is upgraded to https unless the host is loopback or
// in 192.168.0.0/16. Normalizing an already normalized URL returns it unchanged.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyURL
	}
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if strings.Contains(s, "://") {
			return "", ErrInvalidURL
		}
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", ErrInvalidURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if u.Hostname() == "" || strings.ContainsAny(u.Hostname(), " \t") {
		return "", ErrInvalidURL
	}

	u.Host = strings.ToLower(u.Host)
	if u.Scheme == "http" && !AllowsPlainHTTP(u.Hostname()) {
		u.Scheme = "https"
	}

	// Every trailing slash of the path goes; query and fragment are untouched.
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")
	return u.String(), nil
}

// AllowsPlainHTTP reports whether host may be reached without TLS.
func AllowsPlainHTTP(host string) bool {
	host = strings.ToLower(host)
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}
	ip4 := ip.To4()
	return ip4 != nil && ip4[0] == 192 && ip4[1] == 168
}

// Same reports whether two raw URLs name the same server after
// normalization. Invalid URLs never match.
func Same(a, b string) bool {
	na, err := Normalize(a)
	if err != nil {
		return false
	}
	nb, err := Normalize(b)
	if err != nil {
		return false
	}
	return na == nb
}

// Origin returns scheme://host[:port] for a normalized URL.
func Origin(normalizedURL string) string {
	u, err := url.Parse(normalizedURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
