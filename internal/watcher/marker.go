// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watcher delivers launch markers that native code drops on disk.
package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Marker is the JSON document native launch handling writes when the app is
// opened from a notification.
type Marker struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// MarkerSink receives parsed markers.
type MarkerSink interface {
	SubmitPlatformMarker(ctx context.Context, serverURL, path string) error
}

// MarkerWatcher watches one marker file. Each complete marker is handed to
// the sink and the file is removed.
type MarkerWatcher struct {
	path      string
	sink      MarkerSink
	watcher   *fsnotify.Watcher
	debouncer *Debouncer

	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
}

// NewMarkerWatcher creates a watcher for path. The parent directory must
// exist; the file itself need not.
func NewMarkerWatcher(path string, sink MarkerSink, debounce time.Duration) (*MarkerWatcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("marker path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	// Watch the directory so atomic renames and first creation are seen.
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &MarkerWatcher{
		path:      abs,
		sink:      sink,
		watcher:   fsWatcher,
		debouncer: NewDebouncer(debounce),
		closeCh:   make(chan struct{}),
	}, nil
}

// Path returns the watched marker path.
func (w *MarkerWatcher) Path() string {
	return w.path
}

// Run consumes a marker already present, then processes file events until
// ctx is done or Close is called.
func (w *MarkerWatcher) Run(ctx context.Context) error {
	if err := w.consume(ctx); err != nil {
		log.Printf("MarkerWatcher: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.closeCh:
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("MarkerWatcher: watch error: %v", err)
		}
	}
}

func (w *MarkerWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	w.debouncer.Debounce(w.path, func() {
		if err := w.consume(ctx); err != nil {
			log.Printf("MarkerWatcher: %v", err)
		}
	})
}

// consume reads, submits and removes the marker. A missing file is not an
// error; an unreadable marker is removed so it cannot wedge later launches.
func (w *MarkerWatcher) consume(ctx context.Context) error {
	data, err := os.ReadFile(w.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read marker: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		os.Remove(w.path)
		return fmt.Errorf("parse marker: %w", err)
	}
	if m.URL == "" || m.Path == "" {
		os.Remove(w.path)
		return fmt.Errorf("incomplete marker: url=%q path=%q", m.URL, m.Path)
	}

	if err := w.sink.SubmitPlatformMarker(ctx, m.URL, m.Path); err != nil {
		return fmt.Errorf("submit marker: %w", err)
	}
	if err := os.Remove(w.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove marker: %w", err)
	}
	return nil
}

// Close stops the watcher and releases resources.
func (w *MarkerWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debouncer.Stop()
	return w.watcher.Close()
}

// WriteMarker writes m to path atomically. Native launch code and tests use
// it to hand a marker to a running shell.
func WriteMarker(path string, m Marker) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal marker: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename marker: %w", err)
	}
	return nil
}
