// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"net/url"
)

// ShellClient drives the session of a running shell.
//
// Access this client through [Client.Shell]:
//
//	res, err := c.Shell.Connect(ctx, "demo.nuxbe.com")
//	if res.Error != nil {
//	    fmt.Println(res.Error.Message)
//	}
type ShellClient struct {
	c *Client
}

// BootstrapOptions configures [ShellClient.Bootstrap].
type BootstrapOptions struct {
	// Reset forgets the remembered server first.
	Reset bool `json:"reset"`

	// MidNavigation marks a bootstrap triggered while a page is loading.
	MidNavigation bool `json:"mid_navigation"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type tapRequest struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

// Bootstrap runs the launch sequence.
func (s *ShellClient) Bootstrap(ctx context.Context, opts BootstrapOptions) (*SessionResult, error) {
	return s.result(ctx, "/api/v1/bootstrap", opts)
}

// State returns the current session state.
func (s *ShellClient) State(ctx context.Context) (*SessionState, error) {
	data, err := s.c.get(ctx, "/api/v1/session")
	if err != nil {
		return nil, err
	}
	var state SessionState
	if err := unwrap(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Connect validates rawURL and connects to it, as the setup screen does.
// Validation failures come back in SessionResult.Error with a nil error.
func (s *ShellClient) Connect(ctx context.Context, rawURL string) (*SessionResult, error) {
	res, err := s.result(ctx, "/api/v1/connect", urlRequest{URL: rawURL})
	return setupResult(res, err)
}

// Reconnect accepts the reconnect prompt.
func (s *ShellClient) Reconnect(ctx context.Context) (*SessionResult, error) {
	return s.result(ctx, "/api/v1/reconnect", struct{}{})
}

// ChangeServer returns to the setup screen keeping the history.
func (s *ShellClient) ChangeServer(ctx context.Context) (*SessionResult, error) {
	return s.result(ctx, "/api/v1/change-server", struct{}{})
}

// Reset forgets the current server and clears any pending deep link.
func (s *ShellClient) Reset(ctx context.Context) (*SessionResult, error) {
	return s.result(ctx, "/api/v1/reset", struct{}{})
}

// History lists previously connected servers, most recent first.
func (s *ShellClient) History(ctx context.Context) ([]HistoryEntry, error) {
	data, err := s.c.get(ctx, "/api/v1/history")
	if err != nil {
		return nil, err
	}
	var entries []HistoryEntry
	if err := unwrap(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RemoveHistory forgets rawURL and returns the remaining entries.
func (s *ShellClient) RemoveHistory(ctx context.Context, rawURL string) ([]HistoryEntry, error) {
	data, err := s.c.delete(ctx, "/api/v1/history?url="+url.QueryEscape(rawURL))
	if err != nil {
		return nil, err
	}
	var entries []HistoryEntry
	if err := unwrap(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// OpenLink delivers an external link (nuxbe://, https://) to the shell.
func (s *ShellClient) OpenLink(ctx context.Context, link string) (*SessionResult, error) {
	res, err := s.result(ctx, "/api/v1/links", urlRequest{URL: link})
	return setupResult(res, err)
}

// NotificationTap queues a notification tap for the next bootstrap.
// serverURL may be empty to target the remembered server.
func (s *ShellClient) NotificationTap(ctx context.Context, serverURL, path string) error {
	_, err := s.c.postJSON(ctx, "/api/v1/notifications/tap", tapRequest{URL: serverURL, Path: path})
	return err
}

// PushToken hands a push registration token to the shell. It reports
// whether the token was accepted; only the first token is.
func (s *ShellClient) PushToken(ctx context.Context, token string) (bool, error) {
	data, err := s.c.postJSON(ctx, "/api/v1/push-token", tokenRequest{Token: token})
	if err != nil {
		return false, err
	}
	var body struct {
		Accepted bool `json:"accepted"`
	}
	if err := unwrap(data, &body); err != nil {
		return false, err
	}
	return body.Accepted, nil
}

// Bridge describes the platform the shell is running on.
func (s *ShellClient) Bridge(ctx context.Context) (*BridgeInfo, error) {
	data, err := s.c.get(ctx, "/api/v1/bridge")
	if err != nil {
		return nil, err
	}
	var info BridgeInfo
	if err := unwrap(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Navigation returns the loading supervisor and session state.
func (s *ShellClient) Navigation(ctx context.Context) (*NavigationStatus, error) {
	data, err := s.c.get(ctx, "/api/v1/navigation")
	if err != nil {
		return nil, err
	}
	return parseNavigation(data)
}

// NavigationCompleted reports that the web view finished loading.
func (s *ShellClient) NavigationCompleted(ctx context.Context) (*NavigationStatus, error) {
	data, err := s.c.postJSON(ctx, "/api/v1/navigation/completed", struct{}{})
	if err != nil {
		return nil, err
	}
	return parseNavigation(data)
}

// NavigationRetry re-issues the last navigation command.
func (s *ShellClient) NavigationRetry(ctx context.Context) (*NavigationCommand, error) {
	data, err := s.c.postJSON(ctx, "/api/v1/navigation/retry", struct{}{})
	if err != nil {
		return nil, err
	}
	var cmd NavigationCommand
	if err := unwrap(data, &cmd); err != nil {
		return nil, err
	}
	return &cmd, nil
}

// NavigationCancel abandons the load in flight.
func (s *ShellClient) NavigationCancel(ctx context.Context) (*NavigationStatus, error) {
	data, err := s.c.postJSON(ctx, "/api/v1/navigation/cancel", struct{}{})
	if err != nil {
		return nil, err
	}
	return parseNavigation(data)
}

func (s *ShellClient) result(ctx context.Context, path string, body interface{}) (*SessionResult, error) {
	data, err := s.c.postJSON(ctx, path, body)
	if err != nil {
		return nil, err
	}
	var res SessionResult
	if err := unwrap(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func parseNavigation(data []byte) (*NavigationStatus, error) {
	var status NavigationStatus
	if err := unwrap(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// setupResult turns a SETUP_ERROR response into a setup-required result.
func setupResult(res *SessionResult, err error) (*SessionResult, error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "SETUP_ERROR" {
		return res, err
	}
	code, _ := apiErr.Details["code"].(string)
	return &SessionResult{
		Phase: "setup_required",
		Error: &SetupError{Code: code, Message: apiErr.Message},
	}, nil
}
