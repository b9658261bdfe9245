// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/teamnifty/nuxbe/internal/api/handlers"
)

// Recovery turns a handler panic into an INTERNAL_ERROR response.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("API: panic in %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
				handlers.WriteError(w, http.StatusInternalServerError, handlers.ErrInternalError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
