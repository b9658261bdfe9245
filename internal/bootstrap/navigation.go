// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"net/url"
	"strings"
)

// LoginPath is the server endpoint that establishes the mobile session.
const LoginPath = "/login-mobile"

// LoginParams feeds the login URL query.
type LoginParams struct {
	PushToken    string
	Native       bool
	Platform     string
	DeviceID     string
	Model        string
	OSVersion    string
	Manufacturer string
	DeviceName   string
	Redirect     string
}

// LoginURL builds {server}/login-mobile with the query keys in a fixed
// order. Device keys are sent only from a native platform holding a push
// token. Empty values are omitted.
func LoginURL(serverURL string, p LoginParams) string {
	var q queryBuilder
	if p.PushToken != "" && p.Native {
		q.add("fcm_token", p.PushToken)
		q.add("platform", p.Platform)
		q.add("device_id", p.DeviceID)
		q.add("device_model", p.Model)
		q.add("device_os_version", p.OSVersion)
		q.add("device_manufacturer", p.Manufacturer)
		q.add("device_name", p.DeviceName)
	}
	q.add("redirect", p.Redirect)

	target := serverURL + LoginPath
	if q.Len() > 0 {
		target += "?" + q.String()
	}
	return target
}

// queryBuilder keeps insertion order; url.Values sorts keys.
type queryBuilder struct {
	strings.Builder
}

func (q *queryBuilder) add(key, value string) {
	if value == "" {
		return
	}
	if q.Len() > 0 {
		q.WriteByte('&')
	}
	q.WriteString(url.QueryEscape(key))
	q.WriteByte('=')
	q.WriteString(url.QueryEscape(value))
}
