// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package deeplink merges the three deep-link channels (platform launch
// marker, notification tap, external link) into one target.
//
// All producers feed a queue drained by a single goroutine. Every marker
// read and write happens on that goroutine, so reading and clearing a
// marker is atomic with respect to the other producers.
package deeplink

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/teamnifty/nuxbe/internal/events"
	"github.com/teamnifty/nuxbe/internal/identity"
	"github.com/teamnifty/nuxbe/internal/store"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("deep link resolver is closed")

// Source identifies the channel a target came from.
type Source string

const (
	SourceNone         Source = ""
	SourcePlatform     Source = "platform"
	SourceNotification Source = "notification"
	SourceExternalLink Source = "external_link"
)

// Target is a resolved deep link.
type Target struct {
	ServerURL string `json:"server_url"`
	Path      string `json:"path"`
	Source    Source `json:"source"`
}

// Config configures a Resolver.
type Config struct {
	Scheme    string
	Bus       events.EventBus
	QueueSize int
}

type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// Resolver owns the pending deep-link markers.
type Resolver struct {
	store  store.Store
	bus    events.EventBus
	scheme string

	jobs    chan job
	closeCh chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewResolver starts the resolver goroutine.
func NewResolver(s store.Store, cfg Config) *Resolver {
	if cfg.Scheme == "" {
		cfg.Scheme = DefaultScheme
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	r := &Resolver{
		store:   s,
		bus:     cfg.Bus,
		scheme:  cfg.Scheme,
		jobs:    make(chan job, cfg.QueueSize),
		closeCh: make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *Resolver) run() {
	defer r.wg.Done()
	for {
		select {
		case <-r.closeCh:
			return
		case j := <-r.jobs:
			j.done <- j.fn(j.ctx)
		}
	}
}

// Do runs fn on the resolver goroutine and waits for it. Callers that must
// read or write markers together with other keys use it to stay ordered
// with the producers.
func (r *Resolver) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case <-r.closeCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case r.jobs <- j:
	}
	select {
	case err := <-j.done:
		return err
	case <-r.closeCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the goroutine. Pending callers get ErrClosed.
func (r *Resolver) Close() error {
	r.once.Do(func() {
		close(r.closeCh)
	})
	r.wg.Wait()
	return nil
}

// SubmitPlatformMarker records a launch marker written by native launch
// handling. It outranks every other channel.
func (r *Resolver) SubmitPlatformMarker(ctx context.Context, serverURL, path string) error {
	return r.Do(ctx, func(ctx context.Context) error {
		if err := r.store.Set(ctx, store.KeyPendingDeepLinkURL, serverURL); err != nil {
			return fmt.Errorf("save platform marker: %w", err)
		}
		if err := r.store.Set(ctx, store.KeyPendingDeepLinkPath, path); err != nil {
			return fmt.Errorf("save platform marker: %w", err)
		}
		r.emit(ctx, events.EventDeepLinkQueued, serverURL, SourcePlatform, path)
		return nil
	})
}

// SubmitNotificationTap records a deferred notification target. serverURL
// may be empty, in which case the remembered server is used.
func (r *Resolver) SubmitNotificationTap(ctx context.Context, serverURL, path string) error {
	return r.Do(ctx, func(ctx context.Context) error {
		if serverURL == "" {
			if err := r.store.Remove(ctx, store.KeyDeepLinkServer); err != nil {
				return fmt.Errorf("save notification marker: %w", err)
			}
		} else if err := r.store.Set(ctx, store.KeyDeepLinkServer, serverURL); err != nil {
			return fmt.Errorf("save notification marker: %w", err)
		}
		if err := r.store.Set(ctx, store.KeyDeepLinkTarget, path); err != nil {
			return fmt.Errorf("save notification marker: %w", err)
		}
		r.emit(ctx, events.EventDeepLinkQueued, serverURL, SourceNotification, path)
		return nil
	})
}

// HandleExternalLink parses an external link. An open link replaces the
// remembered server before returning, so a bootstrap that starts afterwards
// sees the new server.
func (r *Resolver) HandleExternalLink(ctx context.Context, raw string) (Link, error) {
	var link Link
	err := r.Do(ctx, func(ctx context.Context) error {
		link = ParseLink(raw, r.scheme)
		if link.Action != LinkOpen {
			return nil
		}
		if err := r.remember(ctx, link.ServerURL); err != nil {
			return err
		}
		r.emit(ctx, events.EventDeepLinkResolved, link.ServerURL, SourceExternalLink, link.Path)
		return nil
	})
	if err != nil {
		return Link{Action: LinkIgnored}, err
	}
	return link, nil
}

// Resolve returns the highest priority pending target and clears what it
// consumed. Resolving the platform marker clears the notification marker
// as well. The remembered server is replaced when the target names a
// different one.
func (r *Resolver) Resolve(ctx context.Context) (Target, bool, error) {
	var target Target
	var found bool
	err := r.Do(ctx, func(ctx context.Context) error {
		var err error
		target, found, err = r.resolve(ctx)
		return err
	})
	return target, found, err
}

func (r *Resolver) resolve(ctx context.Context) (Target, bool, error) {
	pendingURL, okURL, err := r.store.Get(ctx, store.KeyPendingDeepLinkURL)
	if err != nil {
		return Target{}, false, fmt.Errorf("read platform marker: %w", err)
	}
	pendingPath, okPath, err := r.store.Get(ctx, store.KeyPendingDeepLinkPath)
	if err != nil {
		return Target{}, false, fmt.Errorf("read platform marker: %w", err)
	}

	if okURL && okPath && pendingURL != "" && pendingPath != "" {
		if err := r.clearPlatform(ctx); err != nil {
			return Target{}, false, err
		}
		if err := r.clearNotification(ctx); err != nil {
			return Target{}, false, err
		}
		normalized, err := identity.Normalize(pendingURL)
		if err != nil {
			log.Printf("DeepLink: dropping platform marker with invalid server %q: %v", pendingURL, err)
			return Target{}, false, nil
		}
		return r.commit(ctx, Target{ServerURL: normalized, Path: CleanPath(pendingPath), Source: SourcePlatform})
	}
	if okURL || okPath {
		// half-written marker
		if err := r.clearPlatform(ctx); err != nil {
			return Target{}, false, err
		}
	}

	path, okTarget, err := r.store.Get(ctx, store.KeyDeepLinkTarget)
	if err != nil {
		return Target{}, false, fmt.Errorf("read notification marker: %w", err)
	}
	if !okTarget || path == "" {
		return Target{}, false, nil
	}
	server, _, err := r.store.Get(ctx, store.KeyDeepLinkServer)
	if err != nil {
		return Target{}, false, fmt.Errorf("read notification marker: %w", err)
	}
	if err := r.clearNotification(ctx); err != nil {
		return Target{}, false, err
	}

	if server == "" {
		server, _, err = r.store.Get(ctx, store.KeyServerURL)
		if err != nil {
			return Target{}, false, fmt.Errorf("read server url: %w", err)
		}
	}
	normalized, err := identity.Normalize(server)
	if err != nil {
		log.Printf("DeepLink: dropping notification marker with invalid server %q: %v", server, err)
		return Target{}, false, nil
	}
	return r.commit(ctx, Target{ServerURL: normalized, Path: CleanPath(path), Source: SourceNotification})
}

func (r *Resolver) commit(ctx context.Context, t Target) (Target, bool, error) {
	if err := r.remember(ctx, t.ServerURL); err != nil {
		return Target{}, false, err
	}
	r.emit(ctx, events.EventDeepLinkResolved, t.ServerURL, t.Source, t.Path)
	return t, true, nil
}

func (r *Resolver) remember(ctx context.Context, serverURL string) error {
	current, _, err := r.store.Get(ctx, store.KeyServerURL)
	if err != nil {
		return fmt.Errorf("read server url: %w", err)
	}
	if current == serverURL {
		return nil
	}
	if err := r.store.Set(ctx, store.KeyServerURL, serverURL); err != nil {
		return fmt.Errorf("save server url: %w", err)
	}
	return nil
}

// Restore puts a resolved target back into the channel it came from, for a
// run that consumed it and then failed. A newer marker already queued on
// that channel wins and the restored target is dropped. External link
// targets are never queued.
func (r *Resolver) Restore(ctx context.Context, t Target) error {
	return r.Do(ctx, func(ctx context.Context) error {
		var urlKey, pathKey string
		switch t.Source {
		case SourcePlatform:
			urlKey, pathKey = store.KeyPendingDeepLinkURL, store.KeyPendingDeepLinkPath
		case SourceNotification:
			urlKey, pathKey = store.KeyDeepLinkServer, store.KeyDeepLinkTarget
		default:
			return nil
		}

		if _, ok, err := r.store.Get(ctx, pathKey); err != nil {
			return fmt.Errorf("read %s marker: %w", t.Source, err)
		} else if ok {
			log.Printf("DeepLink: newer %s marker queued, dropping %s", t.Source, t.Path)
			return nil
		}
		if err := r.store.Set(ctx, urlKey, t.ServerURL); err != nil {
			return fmt.Errorf("restore %s marker: %w", t.Source, err)
		}
		if err := r.store.Set(ctx, pathKey, t.Path); err != nil {
			return fmt.Errorf("restore %s marker: %w", t.Source, err)
		}
		r.emit(ctx, events.EventDeepLinkQueued, t.ServerURL, t.Source, t.Path)
		return nil
	})
}

// Clear removes every pending marker.
func (r *Resolver) Clear(ctx context.Context) error {
	return r.Do(ctx, func(ctx context.Context) error {
		if err := r.clearPlatform(ctx); err != nil {
			return err
		}
		return r.clearNotification(ctx)
	})
}

func (r *Resolver) clearPlatform(ctx context.Context) error {
	if err := r.store.Remove(ctx, store.KeyPendingDeepLinkURL); err != nil {
		return fmt.Errorf("clear platform marker: %w", err)
	}
	if err := r.store.Remove(ctx, store.KeyPendingDeepLinkPath); err != nil {
		return fmt.Errorf("clear platform marker: %w", err)
	}
	return nil
}

func (r *Resolver) clearNotification(ctx context.Context) error {
	if err := r.store.Remove(ctx, store.KeyDeepLinkServer); err != nil {
		return fmt.Errorf("clear notification marker: %w", err)
	}
	if err := r.store.Remove(ctx, store.KeyDeepLinkTarget); err != nil {
		return fmt.Errorf("clear notification marker: %w", err)
	}
	return nil
}

func (r *Resolver) emit(ctx context.Context, eventType, server string, source Source, path string) {
	events.Emit(ctx, r.bus, eventType, server, map[string]interface{}{
		"source": string(source),
		"path":   path,
	})
}
