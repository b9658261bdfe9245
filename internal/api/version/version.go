// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package version implements date-based versioning for the bridge API.
//
// The embedded browser sends the version it was built against in the
// Nuxbe-Version header; requests without it get LatestVersion. A breaking
// change adds a new constant, moves LatestVersion, and registers a
// Transformer that maps new responses back for pinned pages.
package version

import "context"

const (
	// Version20261001 is the initial bridge API version.
	Version20261001 = "2026-10-01"
)

// LatestVersion is the version used when a request names none.
var LatestVersion = Version20261001

// Header carries the requested API version.
const Header = "Nuxbe-Version"

type contextKey string

const versionKey contextKey = "api-version"

// FromContext returns the API version stored in ctx, or LatestVersion.
func FromContext(ctx context.Context) string {
	v, ok := ctx.Value(versionKey).(string)
	if !ok || v == "" {
		return LatestVersion
	}
	return v
}

// WithContext returns ctx carrying version.
func WithContext(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, versionKey, version)
}
