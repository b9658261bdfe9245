// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/teamnifty/nuxbe/internal/api/handlers"
	"github.com/teamnifty/nuxbe/internal/api/middleware"
	"github.com/teamnifty/nuxbe/internal/api/version"
	"github.com/teamnifty/nuxbe/internal/bridge"
	"github.com/teamnifty/nuxbe/internal/events"
)

// ServerConfig holds configuration for the bridge API server.
type ServerConfig struct {
	Host string
	Port int
}

// Dependencies holds all dependencies for API handlers.
type Dependencies struct {
	Session       handlers.Session
	Notifications handlers.NotificationQueue
	Loading       handlers.LoadingSupervisor
	Platform      bridge.Platform
	Push          handlers.PushTokenSink
	EventBus      events.EventBus
	Version       string // Application version string
}

// NewRouter creates the bridge API router.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS)
	r.Use(version.Middleware)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Session: bootstrap, setup screen and deep links
	sessionHandler := handlers.NewSessionHandler(deps.Session, deps.Notifications)
	api.HandleFunc("/bootstrap", sessionHandler.Bootstrap).Methods("POST")
	api.HandleFunc("/session", sessionHandler.State).Methods("GET")
	api.HandleFunc("/connect", sessionHandler.Connect).Methods("POST")
	api.HandleFunc("/reconnect", sessionHandler.Reconnect).Methods("POST")
	api.HandleFunc("/change-server", sessionHandler.ChangeServer).Methods("POST")
	api.HandleFunc("/reset", sessionHandler.Reset).Methods("POST")
	api.HandleFunc("/history", sessionHandler.History).Methods("GET")
	api.HandleFunc("/history", sessionHandler.RemoveHistory).Methods("DELETE")
	api.HandleFunc("/links", sessionHandler.OpenLink).Methods("POST")
	api.HandleFunc("/notifications/tap", sessionHandler.NotificationTap).Methods("POST")

	// Loading supervisor
	navHandler := handlers.NewNavigationHandler(deps.Loading, deps.Session)
	api.HandleFunc("/navigation", navHandler.Get).Methods("GET")
	api.HandleFunc("/navigation/completed", navHandler.Completed).Methods("POST")
	api.HandleFunc("/navigation/retry", navHandler.Retry).Methods("POST")
	api.HandleFunc("/navigation/cancel", navHandler.Cancel).Methods("POST")

	// Platform bridge
	bridgeHandler := handlers.NewBridgeHandler(deps.Platform, deps.Push, deps.EventBus, deps.Version)
	api.HandleFunc("/bridge", bridgeHandler.Info).Methods("GET")
	api.HandleFunc("/push-token", bridgeHandler.PushToken).Methods("POST")

	// Event handlers
	eventHandler := handlers.NewEventHandler(deps.EventBus)
	api.HandleFunc("/events", eventHandler.History).Methods("GET")
	api.HandleFunc("/events/ws", eventHandler.WebSocket).Methods("GET")

	return r
}

// Server represents the bridge API server.
type Server struct {
	router *mux.Router
	cfg    ServerConfig
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	s := &Server{
		router: NewRouter(deps),
		cfg:    cfg,
	}
	s.server = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router returns the underlying router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// ListenAndServe starts the server. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	log.Printf("API server listening on http://%s", s.Addr())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")

	// Create a timeout context if none provided
	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	return s.server.Shutdown(shutdownCtx)
}
