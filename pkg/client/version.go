// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

// API version constants for the shell bridge API.
//
// The bridge API uses date-based versioning. A client pinned with
// [WithVersion] sends the date in the Nuxbe-Version header and receives
// responses shaped as they were on that date. Without a pin the shell
// answers with its latest version.
const (
	// LatestVersion is the current bridge API version.
	LatestVersion = "2026-10-01"

	// Version20261001 is the initial bridge API version.
	Version20261001 = "2026-10-01"
)

// VersionHeader is the HTTP header used to specify the API version.
const VersionHeader = "Nuxbe-Version"
