// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teamnifty/nuxbe/internal/api"
	"github.com/teamnifty/nuxbe/internal/bootstrap"
	"github.com/teamnifty/nuxbe/internal/bridge"
	"github.com/teamnifty/nuxbe/internal/config"
	"github.com/teamnifty/nuxbe/internal/deeplink"
	"github.com/teamnifty/nuxbe/internal/events"
	"github.com/teamnifty/nuxbe/internal/history"
	"github.com/teamnifty/nuxbe/internal/i18n"
	"github.com/teamnifty/nuxbe/internal/probe"
	"github.com/teamnifty/nuxbe/internal/store"
	"github.com/teamnifty/nuxbe/internal/supervisor"
	"github.com/teamnifty/nuxbe/internal/watcher"
)

// App is the main application container.
type App struct {
	mu sync.RWMutex

	version    string
	reset      bool
	config     *config.Config
	eventBus   *events.MemoryEventBus
	store      store.Store
	closeStore func() error
	platform   bridge.Platform
	push       *bridge.PushRegistry
	resolver   *deeplink.Resolver
	supervisor *supervisor.Supervisor
	controller *bootstrap.Controller
	markers    *watcher.MarkerWatcher
	apiServer  *api.Server

	done         chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once
}

// Options holds configuration options for the app.
type Options struct {
	ConfigPath string            // Empty runs on defaults and environment only
	Host       string            // Overrides server.host
	Port       int               // Overrides server.port
	Store      string            // Overrides store.backend
	Reset      bool              // Forget the remembered server on launch
	Version    string            // Application version string
	Environ    map[string]string // Replaces the process environment; for tests
}

// New loads and validates configuration and creates the event bus.
func New(opts Options) (*App, error) {
	app := &App{
		version: opts.Version,
		reset:   opts.Reset,
		done:    make(chan struct{}),
	}

	loader := config.NewLoader()
	loader.Environ = opts.Environ
	cfg, err := loader.LoadWithDefaults(context.Background(), opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Command line wins over file and environment
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.Store != "" && opts.Store != cfg.Store.Backend {
		cfg.Store.Backend = opts.Store
		cfg.Store.Path = ""
		config.ApplyDefaults(cfg)
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	app.config = cfg

	app.eventBus = events.NewMemoryEventBus(events.MemoryBusConfig{
		HistoryMaxEvents: cfg.Events.History.MaxEvents,
		HistoryMaxAge:    config.ParseDuration(cfg.Events.History.MaxAge, time.Hour),
	})

	return app, nil
}

// Initialize opens the store and wires every component.
func (app *App) Initialize(ctx context.Context) error {
	cfg := app.config

	st, closeStore, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	app.store = st
	app.closeStore = closeStore
	log.Printf("Using %s store at %s", cfg.Store.Backend, cfg.Store.Path)

	if cfg.Platform.Native {
		app.platform = bridge.NewNative(bridge.NativeConfig{
			Name:         cfg.Platform.Name,
			DeviceID:     cfg.Platform.DeviceID,
			Model:        cfg.Platform.Model,
			Manufacturer: cfg.Platform.Manufacturer,
			OSVersion:    cfg.Platform.OSVersion,
		}, st)
	} else {
		app.platform = bridge.NewWeb(st, cfg.Platform.UserAgent)
	}
	log.Printf("Platform: %s (native=%v)", app.platform.Name(), app.platform.IsNative())

	if cfg.Platform.DeviceName != "" {
		if err := bridge.SetDeviceName(ctx, st, cfg.Platform.DeviceName); err != nil {
			log.Printf("Warning: failed to save device name: %v", err)
		}
	}

	app.push = bridge.NewPushRegistry(st)

	prober := probe.New(probe.Config{
		HealthTimeout: config.ParseDuration(cfg.Probe.HealthTimeout, probe.DefaultHealthTimeout),
		ConfigTimeout: config.ParseDuration(cfg.Probe.ConfigTimeout, probe.DefaultConfigTimeout),
		UserAgent:     cfg.Probe.UserAgent,
	})

	servers := history.NewManager(st, history.Config{
		MaxEntries: cfg.History.MaxEntries,
		Revoker:    prober,
		Device:     app.platform,
	})

	app.resolver = deeplink.NewResolver(st, deeplink.Config{
		Scheme: cfg.DeepLink.Scheme,
		Bus:    app.eventBus,
	})

	app.supervisor = supervisor.New(supervisor.Config{
		Timeout: config.ParseDuration(cfg.Loading.Timeout, supervisor.DefaultTimeout),
		Bus:     app.eventBus,
	})

	app.controller = bootstrap.NewController(bootstrap.Deps{
		Store:      st,
		History:    servers,
		Probe:      prober,
		Resolver:   app.resolver,
		Supervisor: app.supervisor,
		Platform:   app.platform,
		Push:       app.push,
		Features:   bridge.NewFeatures(app.platform, st),
		Bus:        app.eventBus,
	}, bootstrap.Config{
		ConfirmResume: cfg.Bootstrap.ConfirmResume,
		Locale:        i18n.Match(cfg.Locale),
	})

	if cfg.DeepLink.MarkerFile != "" {
		debounce := config.ParseDuration(cfg.DeepLink.Debounce, watcher.DefaultDebounce)
		markers, err := watcher.NewMarkerWatcher(cfg.DeepLink.MarkerFile, app.resolver, debounce)
		if err != nil {
			log.Printf("Warning: launch marker watching disabled: %v", err)
		} else {
			app.markers = markers
			log.Printf("Watching launch marker %s", markers.Path())
		}
	}

	app.apiServer = api.NewServer(api.ServerConfig{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, api.Dependencies{
		Session:       app.controller,
		Notifications: app.resolver,
		Loading:       app.supervisor,
		Platform:      app.platform,
		Push:          app.push,
		EventBus:      app.eventBus,
		Version:       app.version,
	})

	return nil
}

// Start runs the launch bootstrap.
func (app *App) Start(ctx context.Context) error {
	res, err := app.controller.Bootstrap(ctx, bootstrap.Options{Reset: app.reset})
	if err != nil {
		log.Printf("Warning: launch bootstrap failed: %v", err)
		return nil
	}
	if res.Command != nil {
		log.Printf("Launch: %s -> %s", res.Phase, res.Command.URL)
	} else {
		log.Printf("Launch: %s", res.Phase)
	}
	return nil
}

// Run starts the app and blocks until shutdown.
func (app *App) Run(ctx context.Context) error {
	if err := app.Initialize(ctx); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting API server on %s", app.apiServer.Addr())
		if err := app.apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	if app.markers != nil {
		g.Go(func() error {
			return app.markers.Run(gctx)
		})
	}

	g.Go(func() error {
		select {
		case <-gctx.Done():
			log.Printf("Context cancelled, shutting down...")
		case <-app.done:
			log.Printf("Shutdown requested...")
		}
		return app.Shutdown(context.Background())
	})

	if err := app.Start(gctx); err != nil {
		app.Stop()
	}

	return g.Wait()
}

// Shutdown gracefully shuts down all components. Later calls do nothing.
func (app *App) Shutdown(ctx context.Context) error {
	var err error
	app.shutdownOnce.Do(func() {
		err = app.shutdown(ctx)
	})
	return err
}

func (app *App) shutdown(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop API server first to stop accepting new requests
	if app.apiServer != nil {
		if err := app.apiServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down API server: %v", err)
		}
	}

	if app.markers != nil {
		app.markers.Close()
	}

	if app.supervisor != nil {
		app.supervisor.Stop()
	}

	if app.resolver != nil {
		app.resolver.Close()
	}

	if app.eventBus != nil {
		app.eventBus.Close()
	}

	var err error
	if app.closeStore != nil {
		if err = app.closeStore(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}

	log.Println("Shutdown complete")
	return err
}

// Stop signals the app to shut down. Safe to call multiple times.
func (app *App) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}

// Config returns the effective configuration.
func (app *App) Config() *config.Config {
	return app.config
}

// Controller returns the bootstrap controller. Nil before Initialize.
func (app *App) Controller() *bootstrap.Controller {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.controller
}

// Handler returns the bridge API handler. Nil before Initialize.
func (app *App) Handler() http.Handler {
	app.mu.RLock()
	defer app.mu.RUnlock()
	if app.apiServer == nil {
		return nil
	}
	return app.apiServer.Router()
}
