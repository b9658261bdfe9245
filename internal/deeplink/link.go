// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package deeplink

import (
	"net/url"
	"strings"

	"github.com/teamnifty/nuxbe/internal/identity"
)

// DefaultScheme is the custom URL scheme registered by the app.
const DefaultScheme = "nuxbe"

// LinkAction is what an external link asks the shell to do.
type LinkAction string

const (
	// LinkIgnored means the link carried nothing usable.
	LinkIgnored LinkAction = "ignored"
	// LinkOpen navigates straight to a server path.
	LinkOpen LinkAction = "open"
	// LinkChangeServer returns the user to server selection.
	LinkChangeServer LinkAction = "change_server"
)

// Link is a parsed external link.
type Link struct {
	Action    LinkAction `json:"action"`
	ServerURL string     `json:"server_url,omitempty"`
	Path      string     `json:"path,omitempty"`
}

// TargetURL returns the page an open link navigates to.
func (l Link) TargetURL() string {
	if l.Action != LinkOpen {
		return ""
	}
	return l.ServerURL + l.Path
}

// ParseLink interprets raw against scheme. Links of another scheme, links
// missing server or path, and links whose server fails normalization are
// ignored. A host or path of "change-server" asks for server selection.
func ParseLink(raw, scheme string) Link {
	if scheme == "" {
		scheme = DefaultScheme
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !strings.EqualFold(u.Scheme, scheme) {
		return Link{Action: LinkIgnored}
	}

	if u.Host == "change-server" || strings.Trim(u.Path, "/") == "change-server" || u.Opaque == "change-server" {
		return Link{Action: LinkChangeServer}
	}

	q := u.Query()
	server, path := q.Get("server"), q.Get("path")
	if server == "" || path == "" {
		return Link{Action: LinkIgnored}
	}
	normalized, err := identity.Normalize(server)
	if err != nil {
		return Link{Action: LinkIgnored}
	}
	return Link{Action: LinkOpen, ServerURL: normalized, Path: CleanPath(path)}
}

// CleanPath makes a redirect path absolute. Blank input stays blank.
func CleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
