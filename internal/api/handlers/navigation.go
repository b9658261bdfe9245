// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"errors"
	"net/http"

	"github.com/teamnifty/nuxbe/internal/bootstrap"
	"github.com/teamnifty/nuxbe/internal/supervisor"
)

// LoadingSupervisor watches the navigation in flight.
type LoadingSupervisor interface {
	Completed() bool
	Retry() (supervisor.Command, error)
	Cancel() bool
	Status() supervisor.Status
}

// StateReader exposes the controller state.
type StateReader interface {
	State() bootstrap.State
}

// NavigationHandler reports page loads from the embedded browser and
// answers the timeout dialog.
type NavigationHandler struct {
	loading LoadingSupervisor
	session StateReader
}

// NewNavigationHandler creates a new navigation handler.
func NewNavigationHandler(loading LoadingSupervisor, session StateReader) *NavigationHandler {
	return &NavigationHandler{loading: loading, session: session}
}

// NavigationResponse describes the navigation in flight.
type NavigationResponse struct {
	Loading supervisor.Status `json:"loading"`
	Session bootstrap.State   `json:"session"`
}

// Get returns the loading status and controller state.
func (h *NavigationHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.response())
}

// Completed marks the committed page as loaded.
func (h *NavigationHandler) Completed(w http.ResponseWriter, r *http.Request) {
	if !h.loading.Completed() {
		WriteError(w, http.StatusConflict, ErrNavigationError, "no navigation in flight")
		return
	}
	WriteJSON(w, http.StatusOK, h.response())
}

// Retry issues the timed-out navigation again.
func (h *NavigationHandler) Retry(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.loading.Retry()
	if errors.Is(err, supervisor.ErrNoCommand) {
		WriteError(w, http.StatusConflict, ErrNavigationError, err.Error())
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, cmd)
}

// Cancel abandons the navigation and returns to setup.
func (h *NavigationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if !h.loading.Cancel() {
		WriteError(w, http.StatusConflict, ErrNavigationError, "no navigation in flight")
		return
	}
	WriteJSON(w, http.StatusOK, h.response())
}

func (h *NavigationHandler) response() NavigationResponse {
	return NavigationResponse{
		Loading: h.loading.Status(),
		Session: h.session.State(),
	}
}
