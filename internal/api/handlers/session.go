// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/teamnifty/nuxbe/internal/bootstrap"
	"github.com/teamnifty/nuxbe/internal/history"
)

// Session is the bootstrap controller as seen by the bridge API.
type Session interface {
	State() bootstrap.State
	Bootstrap(ctx context.Context, opts bootstrap.Options) (bootstrap.Result, error)
	Reconnect(ctx context.Context) (bootstrap.Result, error)
	Connect(ctx context.Context, rawURL string) (bootstrap.Result, error)
	ChangeServer(ctx context.Context) (bootstrap.Result, error)
	ResetConnection(ctx context.Context) (bootstrap.Result, error)
	RemoveHistoryEntry(ctx context.Context, rawURL string) ([]history.Entry, error)
	History(ctx context.Context) ([]history.Entry, error)
	OnExternalLink(ctx context.Context, raw string) (bootstrap.Result, error)
}

// NotificationQueue accepts notification taps.
type NotificationQueue interface {
	SubmitNotificationTap(ctx context.Context, serverURL, path string) error
}

// SessionHandler handles bootstrap, setup and deep-link requests.
type SessionHandler struct {
	session       Session
	notifications NotificationQueue
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(session Session, notifications NotificationQueue) *SessionHandler {
	return &SessionHandler{session: session, notifications: notifications}
}

// URLRequest is the request body for endpoints taking a single URL.
type URLRequest struct {
	URL string `json:"url"`
}

// NotificationTapRequest is the request body for a notification tap.
type NotificationTapRequest struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Bootstrap runs one launch.
func (h *SessionHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	var opts bootstrap.Options
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON")
			return
		}
	}

	res, err := h.session.Bootstrap(r.Context(), opts)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteVersioned(w, r, http.StatusOK, "session.bootstrap", res)
}

// State returns the controller state.
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.session.State())
}

// Connect validates and opens the server the user entered.
func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req URLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON")
		return
	}

	res, err := h.session.Connect(r.Context(), req.URL)
	if err != nil {
		writeSetupError(w, res, err)
		return
	}
	WriteVersioned(w, r, http.StatusOK, "session.connect", res)
}

// Reconnect confirms the reconnect prompt.
func (h *SessionHandler) Reconnect(w http.ResponseWriter, r *http.Request) {
	res, err := h.session.Reconnect(r.Context())
	if errors.Is(err, bootstrap.ErrNotAwaitingReconnect) {
		WriteError(w, http.StatusConflict, ErrConflict, err.Error())
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteVersioned(w, r, http.StatusOK, "session.reconnect", res)
}

// ChangeServer forgets the remembered server.
func (h *SessionHandler) ChangeServer(w http.ResponseWriter, r *http.Request) {
	res, err := h.session.ChangeServer(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteVersioned(w, r, http.StatusOK, "session.change_server", res)
}

// Reset forgets the remembered server and pending deep links.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	res, err := h.session.ResetConnection(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteVersioned(w, r, http.StatusOK, "session.reset", res)
}

// History lists remembered servers.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.session.History(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	WriteVersioned(w, r, http.StatusOK, "history.list", entries)
}

// RemoveHistory drops the server given by the url query parameter.
func (h *SessionHandler) RemoveHistory(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "url is required")
		return
	}

	entries, err := h.session.RemoveHistoryEntry(r.Context(), raw)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	WriteVersioned(w, r, http.StatusOK, "history.remove", entries)
}

// OpenLink handles a link opened from outside the app.
func (h *SessionHandler) OpenLink(w http.ResponseWriter, r *http.Request) {
	var req URLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "url is required")
		return
	}

	res, err := h.session.OnExternalLink(r.Context(), req.URL)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteVersioned(w, r, http.StatusOK, "links.open", res)
}

// NotificationTap queues the target of a tapped push notification for the
// next bootstrap.
func (h *SessionHandler) NotificationTap(w http.ResponseWriter, r *http.Request) {
	var req NotificationTapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "path is required")
		return
	}

	if err := h.notifications.SubmitNotificationTap(r.Context(), req.URL, req.Path); err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func writeSetupError(w http.ResponseWriter, res bootstrap.Result, err error) {
	var setupErr *bootstrap.SetupError
	if !errors.As(err, &setupErr) {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	status := http.StatusUnprocessableEntity
	switch setupErr.Code {
	case bootstrap.CodeEmptyURL, bootstrap.CodeInvalidURL:
		status = http.StatusBadRequest
	}
	WriteErrorWithDetails(w, status, ErrSetupError, setupErr.Message, map[string]interface{}{
		"code":  string(setupErr.Code),
		"phase": string(res.Phase),
	})
}
