// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teamnifty/nuxbe/internal/bridge"
	"github.com/teamnifty/nuxbe/internal/events"
)

// PushTokenSink takes the push token delivered by the platform.
type PushTokenSink interface {
	Deliver(ctx context.Context, token string) (bool, error)
}

// BridgeHandler exposes the platform capabilities to the embedded browser.
type BridgeHandler struct {
	platform bridge.Platform
	push     PushTokenSink
	bus      events.EventBus
	version  string
}

// NewBridgeHandler creates a new bridge handler.
func NewBridgeHandler(platform bridge.Platform, push PushTokenSink, bus events.EventBus, version string) *BridgeHandler {
	return &BridgeHandler{platform: platform, push: push, bus: bus, version: version}
}

// BridgeInfo is the response of the bridge endpoint.
type BridgeInfo struct {
	IsNative bool               `json:"is_native"`
	Platform string             `json:"platform"`
	Version  string             `json:"version"`
	Device   *bridge.DeviceInfo `json:"device,omitempty"`
}

// PushTokenRequest is the request body for push token delivery.
type PushTokenRequest struct {
	Token string `json:"token"`
}

// Info returns the platform the shell runs on.
func (h *BridgeHandler) Info(w http.ResponseWriter, r *http.Request) {
	info := BridgeInfo{
		IsNative: h.platform.IsNative(),
		Platform: h.platform.Name(),
		Version:  h.version,
	}
	if device, err := h.platform.DeviceInfo(r.Context()); err == nil {
		info.Device = &device
	}
	WriteJSON(w, http.StatusOK, info)
}

// PushToken stores the push token. Only the first delivery in a process is
// kept.
func (h *BridgeHandler) PushToken(w http.ResponseWriter, r *http.Request) {
	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON")
		return
	}

	accepted, err := h.push.Deliver(r.Context(), req.Token)
	if errors.Is(err, bridge.ErrEmptyToken) {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "token is required")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	if accepted {
		events.Emit(r.Context(), h.bus, events.EventPushTokenReceived, "", map[string]interface{}{
			"platform": h.platform.Name(),
		})
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"accepted": accepted})
}
