// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware_DefaultsToLatest(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/bridge", nil))

	assert.Equal(t, LatestVersion, seen)
	assert.Equal(t, LatestVersion, rec.Header().Get(Header))
}

func TestMiddleware_Pinned(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/v1/bridge", nil)
	req.Header.Set(Header, "2026-06-01")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "2026-06-01", seen)
	assert.Equal(t, "2026-06-01", rec.Header().Get(Header))
}

func TestFromContext_Empty(t *testing.T) {
	assert.Equal(t, LatestVersion, FromContext(context.Background()))
}

func TestTransform(t *testing.T) {
	RegisterTransformer("2026-06-01", "test.echo", func(data interface{}) interface{} {
		return map[string]interface{}{"legacy": data}
	})

	assert.Equal(t, "x", Transform(LatestVersion, "test.echo", "x"))
	assert.Equal(t, "x", Transform("2026-06-01", "test.other", "x"))
	assert.Equal(t, "x", Transform("2026-06-01", "session.bootstrap", "x"))
	assert.Equal(t, "x", Transform("2020-01-01", "test.echo", "x"))
	assert.Equal(t, map[string]interface{}{"legacy": "x"}, Transform("2026-06-01", "test.echo", "x"))
}
