// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client provides a Go client for the mobile endpoints of a Nuxbe
// ERP server and for the local bridge API of a running shell.
//
// The shell only talks to a handful of endpoints on the remote server: the
// health check, the mobile configuration (friendly app name) and the device
// token revocation used when a server is removed from the history.
//
// The same client pointed at a shell (http://localhost:7433 by default)
// drives its session through [Client.Shell] and reads its event log
// through [Client.Events]. Bridge responses use a {"data": ...} envelope,
// which the client unwraps.
//
// # Getting Started
//
// Create a client pointing to a tenant server:
//
//	c := client.New("https://demo.nuxbe.com")
//
//	// Check reachability
//	health, err := c.Health(ctx)
//
//	// Fetch the friendly name
//	cfg, err := c.Mobile.Config(ctx)
//
// Or at a running shell:
//
//	shell := client.New("http://localhost:7433", client.WithVersion(client.LatestVersion))
//	res, err := shell.Shell.Connect(ctx, "demo.nuxbe.com")
//
// # Configuration Options
//
// The client can be configured with functional options:
//
//	c := client.New("https://demo.nuxbe.com",
//	    client.WithTimeout(5 * time.Second),
//	    client.WithUserAgent("nuxbe-shell/1.4.0"),
//	    client.WithHTTPClient(customHTTPClient),
//	)
//
// # Error Handling
//
// Responses with a non-success status are returned as *APIError values,
// carrying the HTTP status and any code/message the server reported:
//
//	cfg, err := c.Mobile.Config(ctx)
//	if err != nil {
//	    var apiErr *client.APIError
//	    if errors.As(err, &apiErr) {
//	        fmt.Printf("server said %d: %s\n", apiErr.Status, apiErr.Message)
//	    }
//	}
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "nuxbe-shell"

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

// Client is a client for one Nuxbe server.
//
// The Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	userAgent  string
	version    string
	httpClient *http.Client

	// Mobile provides access to the /api/mobile endpoints.
	Mobile *MobileClient

	// Shell provides access to the session endpoints of a running shell.
	Shell *ShellClient

	// Events provides access to the event log of a running shell.
	Events *EventClient
}

// Option configures a [Client].
type Option func(*Client)

// New creates a client for the server at baseURL.
//
// Any trailing slash is removed. By default the client uses a 30-second
// HTTP timeout; callers that need a tighter bound pass a context deadline
// or [WithTimeout].
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Mobile = &MobileClient{c: c}
	c.Shell = &ShellClient{c: c}
	c.Events = &EventClient{c: c}

	return c
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithVersion pins the bridge API version sent in the Nuxbe-Version header.
func WithVersion(v string) Option {
	return func(c *Client) {
		c.version = v
	}
}

// BaseURL returns the server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is returned for responses outside the 2xx range.
type APIError struct {
	// Status is the HTTP status code.
	Status int `json:"-"`

	// Code is a machine-readable error code, when the server sent one.
	Code string `json:"code"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Details carries extra fields some errors include.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("status %d: %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("status %d: %s", e.Status, msg)
}

// get performs a GET request to the given path.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// postJSON performs a POST request with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(data))
}

// delete performs a DELETE request to the given path.
func (c *Client) delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

// do performs an HTTP request and parses the response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.version != "" {
		req.Header.Set(VersionHeader, c.version)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return c.parseResponse(resp)
}

// parseResponse reads a response and returns its JSON body.
func (c *Client) parseResponse(resp *http.Response) (json.RawMessage, error) {
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		// Servers sometimes wrap errors as {"error": {...}}
		var wrapped struct {
			Error *APIError `json:"error"`
		}
		if err := json.Unmarshal(respBody, &wrapped); err == nil && wrapped.Error != nil {
			apiErr.Code = wrapped.Error.Code
			apiErr.Message = wrapped.Error.Message
			apiErr.Details = wrapped.Error.Details
		} else {
			_ = json.Unmarshal(respBody, apiErr)
		}
		return nil, apiErr
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}
	if !json.Valid(respBody) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	return respBody, nil
}

// unwrap decodes the data member of a bridge API envelope into v.
func unwrap(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("empty response")
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}
