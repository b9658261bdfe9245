// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap decides, on every launch or trigger, which server the
// shell connects to and which page it lands on.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/text/language"

	"github.com/teamnifty/nuxbe/internal/bridge"
	"github.com/teamnifty/nuxbe/internal/deeplink"
	"github.com/teamnifty/nuxbe/internal/events"
	"github.com/teamnifty/nuxbe/internal/history"
	"github.com/teamnifty/nuxbe/internal/i18n"
	"github.com/teamnifty/nuxbe/internal/identity"
	"github.com/teamnifty/nuxbe/internal/probe"
	"github.com/teamnifty/nuxbe/internal/store"
	"github.com/teamnifty/nuxbe/internal/supervisor"
)

// Prober checks a server before the shell commits to it.
type Prober interface {
	CheckHealth(ctx context.Context, url string) bool
	FetchConfig(ctx context.Context, url string) (probe.ServerConfig, bool)
}

// HistoryManager is the server history.
type HistoryManager interface {
	Add(ctx context.Context, entry history.Entry) error
	List(ctx context.Context) ([]history.Entry, error)
	Remove(ctx context.Context, url string) error
}

// Resolver owns the pending deep-link markers.
type Resolver interface {
	Resolve(ctx context.Context) (deeplink.Target, bool, error)
	HandleExternalLink(ctx context.Context, raw string) (deeplink.Link, error)
	Restore(ctx context.Context, t deeplink.Target) error
	Clear(ctx context.Context) error
}

// Loader supervises committed navigations.
type Loader interface {
	Arm(cmd supervisor.Command)
	Reset()
	SetHandler(h supervisor.Handler)
}

// PushTokens returns the stored push token.
type PushTokens interface {
	Token(ctx context.Context) (string, error)
}

// FeatureInitializer sets up native integrations once the shell hands over
// to a server page.
type FeatureInitializer interface {
	InitNativeFeatures(ctx context.Context) error
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Store      store.Store
	History    HistoryManager
	Probe      Prober
	Resolver   Resolver
	Supervisor Loader
	Platform   bridge.Platform
	Push       PushTokens         // optional
	Features   FeatureInitializer // optional
	Bus        events.EventBus    // optional
}

// Config tunes a Controller.
type Config struct {
	// ConfirmResume stops a resume at PhaseReconnectPrompt until Reconnect.
	ConfirmResume bool
	Locale        language.Tag
}

// Options are the launch signals of one bootstrap run.
type Options struct {
	// Reset forgets the remembered server and all pending markers.
	Reset bool `json:"reset"`
	// MidNavigation means the browser is already showing a server page.
	MidNavigation bool `json:"mid_navigation"`
}

// State is the in-memory controller state.
type State struct {
	ServerURL                 string              `json:"server_url,omitempty"`
	DisplayName               string              `json:"display_name,omitempty"`
	NativeFeaturesInitialized bool                `json:"native_features_initialized"`
	Phase                     Phase               `json:"phase"`
	Command                   *supervisor.Command `json:"command,omitempty"`
	Error                     *SetupError         `json:"error,omitempty"`
}

// Result is the outcome of one operation.
type Result struct {
	Phase    Phase                    `json:"phase"`
	Server   *identity.ServerIdentity `json:"server,omitempty"`
	Command  *supervisor.Command      `json:"command,omitempty"`
	DeepLink *deeplink.Target         `json:"deep_link,omitempty"`
	Error    *SetupError              `json:"error,omitempty"`
}

// Controller runs the bootstrap state machine. Runs are serialized.
type Controller struct {
	deps Deps
	cfg  Config

	run sync.Mutex // held for a whole operation

	// mu guards state and pending. pending holds the server awaiting
	// Reconnect.
	mu      sync.RWMutex
	state   State
	pending *identity.ServerIdentity

	featureOnce sync.Once
}

// NewController wires a controller and installs it as the loading handler.
func NewController(deps Deps, cfg Config) *Controller {
	if cfg.Locale == language.Und {
		cfg.Locale = i18n.Default()
	}
	c := &Controller{
		deps:  deps,
		cfg:   cfg,
		state: State{Phase: PhaseInit},
	}
	if deps.Supervisor != nil {
		deps.Supervisor.SetHandler(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := c.state
	if st.Command != nil {
		cmd := *st.Command
		st.Command = &cmd
	}
	return st
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.state.Phase = p
	c.mu.Unlock()
}

// Bootstrap runs one launch.
func (c *Controller) Bootstrap(ctx context.Context, opts Options) (Result, error) {
	c.run.Lock()
	defer c.run.Unlock()

	c.setPhase(PhaseInit)
	events.Emit(ctx, c.deps.Bus, events.EventBootstrapStarted, "", map[string]interface{}{
		"reset":          opts.Reset,
		"mid_navigation": opts.MidNavigation,
	})

	res, err := c.bootstrap(ctx, opts)
	if err != nil {
		log.Printf("Bootstrap: run failed: %v", err)
		return c.setupRequired(ctx, nil), err
	}

	events.Emit(ctx, c.deps.Bus, events.EventBootstrapFinished, serverOf(res), map[string]interface{}{
		"phase": string(res.Phase),
	})
	return res, nil
}

func (c *Controller) bootstrap(ctx context.Context, opts Options) (Result, error) {
	c.setPhase(PhaseResetCheck)
	if opts.Reset {
		if err := c.forget(ctx, true); err != nil {
			return Result{}, err
		}
		return c.setupRequired(ctx, nil), nil
	}

	if opts.MidNavigation && c.deps.Platform.IsNative() {
		saved, ok, err := c.deps.Store.Get(ctx, store.KeyServerURL)
		if err != nil {
			return Result{}, fmt.Errorf("read server url: %w", err)
		}
		if ok && saved != "" {
			c.initFeatures(ctx)
			c.mu.Lock()
			c.state.ServerURL = saved
			c.state.Phase = PhaseNoOp
			c.mu.Unlock()
			return Result{Phase: PhaseNoOp}, nil
		}
	}

	c.setPhase(PhaseResumeCheck)

	target, found, err := c.deps.Resolver.Resolve(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("resolve deep link: %w", err)
	}
	var link *deeplink.Target
	if found {
		link = &target
	}

	res, err := c.resume(ctx, link)
	if err != nil && link != nil {
		if rerr := c.deps.Resolver.Restore(ctx, *link); rerr != nil {
			log.Printf("Bootstrap: deep link %s lost: %v", link.Path, rerr)
		}
	}
	return res, err
}

// resume continues a launch at the remembered server. The resolved deep
// link, if any, is put back by the caller when resume fails.
func (c *Controller) resume(ctx context.Context, link *deeplink.Target) (Result, error) {
	saved, ok, err := c.deps.Store.Get(ctx, store.KeyServerURL)
	if err != nil {
		return Result{}, fmt.Errorf("read server url: %w", err)
	}
	if !ok || saved == "" {
		return c.setupRequired(ctx, nil), nil
	}
	serverURL, err := identity.Normalize(saved)
	if err != nil {
		log.Printf("Bootstrap: remembered server %q is invalid: %v", saved, err)
		return c.setupRequired(ctx, nil), nil
	}
	if serverURL != saved {
		if err := c.deps.Store.Set(ctx, store.KeyServerURL, serverURL); err != nil {
			return Result{}, fmt.Errorf("save server url: %w", err)
		}
	}

	server := c.identify(ctx, serverURL)
	if err := c.remember(ctx, server); err != nil {
		return Result{}, err
	}

	if c.cfg.ConfirmResume && link == nil {
		c.mu.Lock()
		c.pending = &server
		c.state.ServerURL = server.URL
		c.state.DisplayName = server.DisplayName
		c.state.Phase = PhaseReconnectPrompt
		c.state.Command = nil
		c.state.Error = nil
		c.mu.Unlock()
		events.Emit(ctx, c.deps.Bus, events.EventReconnectPrompt, server.URL, map[string]interface{}{
			"display_name": server.DisplayName,
		})
		return Result{Phase: PhaseReconnectPrompt, Server: &server}, nil
	}

	c.setPhase(PhaseDirectResume)
	return c.commit(ctx, server, link)
}

// Reconnect continues a resume that stopped at the reconnect prompt.
func (c *Controller) Reconnect(ctx context.Context) (Result, error) {
	c.run.Lock()
	defer c.run.Unlock()

	c.mu.Lock()
	p := c.pending
	awaiting := c.state.Phase == PhaseReconnectPrompt && p != nil
	if awaiting {
		c.pending = nil
	}
	c.mu.Unlock()
	if !awaiting {
		return Result{Phase: c.State().Phase}, ErrNotAwaitingReconnect
	}

	c.setPhase(PhaseDirectResume)
	return c.commit(ctx, *p, nil)
}

// Connect validates a server the user entered, scanned or tapped in the
// history list and navigates to it. User-facing failures come back as a
// *SetupError and leave the remembered server untouched.
func (c *Controller) Connect(ctx context.Context, rawURL string) (Result, error) {
	c.run.Lock()
	defer c.run.Unlock()

	serverURL, err := identity.Normalize(rawURL)
	if err != nil {
		code := CodeInvalidURL
		if errors.Is(err, identity.ErrEmptyURL) {
			code = CodeEmptyURL
		}
		return c.fail(ctx, newSetupError(c.cfg.Locale, code, err))
	}

	if !c.deps.Probe.CheckHealth(ctx, serverURL) {
		return c.fail(ctx, newSetupError(c.cfg.Locale, CodeServerUnreachable, nil))
	}

	server := c.identify(ctx, serverURL)
	if err := c.deps.Store.Set(ctx, store.KeyServerURL, server.URL); err != nil {
		return c.fail(ctx, newSetupError(c.cfg.Locale, CodeConnectionFailed, err))
	}
	if err := c.remember(ctx, server); err != nil {
		return c.fail(ctx, newSetupError(c.cfg.Locale, CodeConnectionFailed, err))
	}

	target, found, err := c.deps.Resolver.Resolve(ctx)
	if err != nil {
		log.Printf("Bootstrap: resolve deep link after connect: %v", err)
		found = false
	}
	var link *deeplink.Target
	if found {
		link = &target
		if target.ServerURL != server.URL {
			server = c.knownIdentity(ctx, target.ServerURL)
		}
	}

	return c.commit(ctx, server, link)
}

// ChangeServer forgets the remembered server and returns to setup. History
// and pending markers are kept.
func (c *Controller) ChangeServer(ctx context.Context) (Result, error) {
	c.run.Lock()
	defer c.run.Unlock()
	if err := c.forget(ctx, false); err != nil {
		return Result{}, err
	}
	return c.setupRequired(ctx, nil), nil
}

// ResetConnection forgets the remembered server and every pending deep-link
// marker.
func (c *Controller) ResetConnection(ctx context.Context) (Result, error) {
	c.run.Lock()
	defer c.run.Unlock()
	if err := c.forget(ctx, true); err != nil {
		return Result{}, err
	}
	return c.setupRequired(ctx, nil), nil
}

// RemoveHistoryEntry drops url from history, revoking the device's push
// registration on that server first when possible.
func (c *Controller) RemoveHistoryEntry(ctx context.Context, rawURL string) ([]history.Entry, error) {
	c.run.Lock()
	defer c.run.Unlock()

	target := rawURL
	if normalized, err := identity.Normalize(rawURL); err == nil {
		target = normalized
	}
	if err := c.deps.History.Remove(ctx, target); err != nil {
		return nil, err
	}
	events.Emit(ctx, c.deps.Bus, events.EventHistoryRemoved, target, nil)
	return c.deps.History.List(ctx)
}

// History lists remembered servers, most recent first.
func (c *Controller) History(ctx context.Context) ([]history.Entry, error) {
	return c.deps.History.List(ctx)
}

// OnExternalLink handles a link opened from outside the app. An open link
// navigates straight to the linked page and replaces any navigation in
// flight. Runs are serialized, so a link arriving during a bootstrap takes
// effect after it.
func (c *Controller) OnExternalLink(ctx context.Context, raw string) (Result, error) {
	c.run.Lock()
	defer c.run.Unlock()

	link, err := c.deps.Resolver.HandleExternalLink(ctx, raw)
	if err != nil {
		return Result{Phase: c.State().Phase}, fmt.Errorf("handle external link: %w", err)
	}

	switch link.Action {
	case deeplink.LinkChangeServer:
		if err := c.forget(ctx, false); err != nil {
			return Result{}, err
		}
		return c.setupRequired(ctx, nil), nil

	case deeplink.LinkOpen:
		server := c.knownIdentity(ctx, link.ServerURL)
		c.initFeatures(ctx)
		cmd := supervisor.Command{
			URL:         link.TargetURL(),
			ServerURL:   server.URL,
			DisplayName: server.DisplayName,
			Override:    true,
		}
		c.deps.Supervisor.Arm(cmd)
		c.mu.Lock()
		c.pending = nil
		c.state.ServerURL = server.URL
		c.state.DisplayName = server.DisplayName
		c.state.Phase = PhaseNavigationCommitted
		c.state.Command = &cmd
		c.state.Error = nil
		c.mu.Unlock()
		events.Emit(ctx, c.deps.Bus, events.EventNavigationOverride, server.URL, map[string]interface{}{
			"url": cmd.URL,
		})
		return Result{Phase: PhaseNavigationCommitted, Server: &server, Command: &cmd}, nil
	}

	return Result{Phase: c.State().Phase}, nil
}

// commit runs FeatureInit and hands the login URL to the supervisor.
func (c *Controller) commit(ctx context.Context, server identity.ServerIdentity, link *deeplink.Target) (Result, error) {
	c.setPhase(PhaseFeatureInit)
	c.initFeatures(ctx)

	params := c.loginParams(ctx)
	if link != nil {
		params.Redirect = link.Path
	}
	cmd := supervisor.Command{
		URL:         LoginURL(server.URL, params),
		ServerURL:   server.URL,
		DisplayName: server.DisplayName,
	}
	c.deps.Supervisor.Arm(cmd)

	c.mu.Lock()
	c.pending = nil
	c.state.ServerURL = server.URL
	c.state.DisplayName = server.DisplayName
	c.state.Phase = PhaseNavigationCommitted
	c.state.Command = &cmd
	c.state.Error = nil
	c.mu.Unlock()

	log.Printf("Bootstrap: opening %s (%s)", server.DisplayName, server.URL)
	events.Emit(ctx, c.deps.Bus, events.EventNavigationCommitted, server.URL, map[string]interface{}{
		"url":          cmd.URL,
		"display_name": server.DisplayName,
		"message":      i18n.Sprintf(c.cfg.Locale, i18n.KeyOpeningServer, server.DisplayName),
	})
	return Result{Phase: PhaseNavigationCommitted, Server: &server, Command: &cmd, DeepLink: link}, nil
}

func (c *Controller) loginParams(ctx context.Context) LoginParams {
	p := LoginParams{Native: c.deps.Platform.IsNative()}
	if c.deps.Push == nil || !p.Native {
		return p
	}

	token, err := c.deps.Push.Token(ctx)
	if err != nil {
		log.Printf("Bootstrap: %v", err)
	}
	p.PushToken = token
	if token == "" {
		return p
	}

	if info, err := c.deps.Platform.DeviceInfo(ctx); err != nil {
		log.Printf("Bootstrap: device info: %v", err)
	} else {
		p.Platform = info.Platform
		p.Model = info.Model
		p.OSVersion = info.OSVersion
		p.Manufacturer = info.Manufacturer
	}
	if p.Platform == "" {
		p.Platform = c.deps.Platform.Name()
	}
	if id, err := c.deps.Platform.DeviceID(ctx); err != nil {
		log.Printf("Bootstrap: device id: %v", err)
	} else {
		p.DeviceID = id
	}
	if name, err := bridge.DeviceName(ctx, c.deps.Store); err != nil {
		log.Printf("Bootstrap: %v", err)
	} else {
		p.DeviceName = name
	}
	return p
}

// initFeatures runs native feature setup at most once per process.
func (c *Controller) initFeatures(ctx context.Context) {
	if !c.deps.Platform.IsNative() {
		return
	}
	c.featureOnce.Do(func() {
		if c.deps.Features != nil {
			if err := c.deps.Features.InitNativeFeatures(ctx); err != nil {
				log.Printf("Bootstrap: native feature init failed: %v", err)
			}
		}
		c.mu.Lock()
		c.state.NativeFeaturesInitialized = true
		c.mu.Unlock()
		events.Emit(ctx, c.deps.Bus, events.EventFeaturesInitialized, "", map[string]interface{}{
			"platform": c.deps.Platform.Name(),
		})
	})
}

// identify fetches the server's display name. Failure falls back to the URL.
func (c *Controller) identify(ctx context.Context, serverURL string) identity.ServerIdentity {
	cfg, ok := c.deps.Probe.FetchConfig(ctx, serverURL)
	if !ok {
		return identity.New(serverURL, "")
	}
	return identity.New(serverURL, cfg.DisplayName)
}

// knownIdentity names a server from history without a network call.
func (c *Controller) knownIdentity(ctx context.Context, serverURL string) identity.ServerIdentity {
	entries, err := c.deps.History.List(ctx)
	if err != nil {
		return identity.New(serverURL, "")
	}
	for _, e := range entries {
		if e.URL == serverURL {
			return identity.New(serverURL, e.DisplayName)
		}
	}
	return identity.New(serverURL, "")
}

func (c *Controller) remember(ctx context.Context, server identity.ServerIdentity) error {
	if err := c.deps.History.Add(ctx, history.Entry{URL: server.URL, DisplayName: server.DisplayName}); err != nil {
		return fmt.Errorf("add history: %w", err)
	}
	events.Emit(ctx, c.deps.Bus, events.EventHistoryAdded, server.URL, map[string]interface{}{
		"display_name": server.DisplayName,
	})
	events.Emit(ctx, c.deps.Bus, events.EventServerRemembered, server.URL, map[string]interface{}{
		"display_name": server.DisplayName,
	})
	return nil
}

// forget clears the remembered server, and the pending markers when
// markers is set.
func (c *Controller) forget(ctx context.Context, markers bool) error {
	c.deps.Supervisor.Reset()
	if err := c.deps.Store.Remove(ctx, store.KeyServerURL); err != nil {
		return fmt.Errorf("clear server url: %w", err)
	}
	if markers {
		if err := c.deps.Resolver.Clear(ctx); err != nil {
			return fmt.Errorf("clear deep links: %w", err)
		}
	}
	events.Emit(ctx, c.deps.Bus, events.EventServerCleared, "", map[string]interface{}{
		"markers": markers,
	})
	return nil
}

func (c *Controller) setupRequired(ctx context.Context, setupErr *SetupError) Result {
	c.mu.Lock()
	c.pending = nil
	c.state.ServerURL = ""
	c.state.DisplayName = ""
	c.state.Phase = PhaseSetupRequired
	c.state.Command = nil
	c.state.Error = setupErr
	c.mu.Unlock()

	payload := map[string]interface{}{}
	if setupErr != nil {
		payload["code"] = string(setupErr.Code)
		payload["message"] = setupErr.Message
	}
	events.Emit(ctx, c.deps.Bus, events.EventSetupRequired, "", payload)
	return Result{Phase: PhaseSetupRequired, Error: setupErr}
}

func (c *Controller) fail(ctx context.Context, setupErr *SetupError) (Result, error) {
	log.Printf("Bootstrap: connect failed: %v", setupErr)
	events.Emit(ctx, c.deps.Bus, events.EventSetupFailed, "", map[string]interface{}{
		"code":    string(setupErr.Code),
		"message": setupErr.Message,
	})
	return c.setupRequired(ctx, setupErr), setupErr
}

// LoadingTimedOut implements supervisor.Handler.
func (c *Controller) LoadingTimedOut(cmd supervisor.Command) {
	log.Printf("Bootstrap: %s", i18n.Sprintf(c.cfg.Locale, i18n.KeyConnectionFailedBody, cmd.DisplayName))
}

// LoadingRetried implements supervisor.Handler. The command is issued again
// unchanged.
func (c *Controller) LoadingRetried(cmd supervisor.Command) {
	c.run.Lock()
	defer c.run.Unlock()

	c.mu.Lock()
	c.state.Phase = PhaseNavigationCommitted
	c.state.Command = &cmd
	c.mu.Unlock()
	events.Emit(context.Background(), c.deps.Bus, events.EventNavigationCommitted, cmd.ServerURL, map[string]interface{}{
		"url":          cmd.URL,
		"display_name": cmd.DisplayName,
		"retry":        true,
	})
}

// LoadingCancelled implements supervisor.Handler. The shell returns to
// setup; the remembered server and history are kept. A cancel that lands
// while a run is committing waits for it, and a cancel for a command that
// has since been replaced is ignored.
func (c *Controller) LoadingCancelled(cmd supervisor.Command) {
	c.run.Lock()
	defer c.run.Unlock()

	c.mu.RLock()
	current := c.state.Command != nil && *c.state.Command == cmd
	c.mu.RUnlock()
	if !current {
		log.Printf("Bootstrap: ignoring cancel of replaced navigation %s", cmd.URL)
		return
	}
	c.setupRequired(context.Background(), nil)
}

func serverOf(res Result) string {
	if res.Server == nil {
		return ""
	}
	return res.Server.URL
}
