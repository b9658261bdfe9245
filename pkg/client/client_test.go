// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mockServer creates a test server that returns the given response.
func mockServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(handler)
}

// jsonHandler creates a handler that writes data as JSON with the status.
func jsonHandler(data interface{}, statusCode int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(data)
	}
}

func TestNew(t *testing.T) {
	c := New("https://demo.nuxbe.com/")

	if c.BaseURL() != "https://demo.nuxbe.com" {
		t.Errorf("BaseURL() = %q, want trailing slash removed", c.BaseURL())
	}
	if c.Mobile == nil {
		t.Error("Mobile client is nil")
	}
	if c.Shell == nil || c.Events == nil {
		t.Error("bridge API clients are nil")
	}
}

func TestNewWithOptions(t *testing.T) {
	t.Run("WithTimeout", func(t *testing.T) {
		c := New("https://demo.nuxbe.com", WithTimeout(5*time.Second))
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want 5s", c.httpClient.Timeout)
		}
	})

	t.Run("WithHTTPClient", func(t *testing.T) {
		custom := &http.Client{Timeout: 10 * time.Second}
		c := New("https://demo.nuxbe.com", WithHTTPClient(custom))
		if c.httpClient != custom {
			t.Error("custom HTTP client not used")
		}
	})

	t.Run("WithUserAgent empty keeps default", func(t *testing.T) {
		c := New("https://demo.nuxbe.com", WithUserAgent(""))
		if c.userAgent != DefaultUserAgent {
			t.Errorf("userAgent = %q, want %q", c.userAgent, DefaultUserAgent)
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{Status: 404, Code: "not_found", Message: "No such tenant"}
	if err.Error() != "status 404: not_found: No such tenant" {
		t.Errorf("Error() = %q", err.Error())
	}

	err2 := &APIError{Status: 500}
	if err2.Error() != "status 500: Internal Server Error" {
		t.Errorf("Error() = %q", err2.Error())
	}
}

func TestHealth(t *testing.T) {
	var gotAccept, gotUA string
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		jsonHandler(map[string]string{"status": "ok"}, http.StatusOK)(w, r)
	})
	defer server.Close()

	c := New(server.URL, WithUserAgent("nuxbe-shell/test"))
	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.Status != "ok" {
		t.Errorf("Status = %q, want ok", h.Status)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotUA != "nuxbe-shell/test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestHealth_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", jsonHandler(map[string]string{"status": "down"}, http.StatusServiceUnavailable)},
		{"html body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>maintenance</html>"))
		}},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mockServer(t, tt.handler)
			defer server.Close()

			if _, err := New(server.URL).Health(context.Background()); err == nil {
				t.Error("Health() error = nil, want error")
			}
		})
	}
}

func TestMobileConfig(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mobile/config" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		jsonHandler(map[string]string{"app_name": "Demo Co"}, http.StatusOK)(w, r)
	})
	defer server.Close()

	cfg, err := New(server.URL).Mobile.Config(context.Background())
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if cfg.AppName != "Demo Co" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "Demo Co")
	}
}

func TestMobileConfig_ServerError(t *testing.T) {
	server := mockServer(t, jsonHandler(map[string]interface{}{
		"error": map[string]string{"code": "internal", "message": "boom"},
	}, http.StatusInternalServerError))
	defer server.Close()

	_, err := New(server.URL).Mobile.Config(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError || apiErr.Code != "internal" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestMobileDeleteDeviceToken(t *testing.T) {
	var body DeleteDeviceTokenRequest
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/mobile/device-token/delete" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&body)
		jsonHandler(map[string]bool{"success": true}, http.StatusOK)(w, r)
	})
	defer server.Close()

	if err := New(server.URL).Mobile.DeleteDeviceToken(context.Background(), "dev-1"); err != nil {
		t.Fatalf("DeleteDeviceToken() error = %v", err)
	}
	if body.DeviceID != "dev-1" {
		t.Errorf("device_id = %q, want dev-1", body.DeviceID)
	}
}

func TestContextCancellation(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := New(server.URL).Health(ctx); err == nil {
		t.Error("Health() error = nil, want deadline error")
	}
}
