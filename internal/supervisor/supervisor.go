// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package supervisor bounds how long the user waits for a committed
// navigation to finish loading.
package supervisor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/teamnifty/nuxbe/internal/events"
)

// DefaultTimeout is the loading ceiling.
const DefaultTimeout = 30 * time.Second

// ErrNoCommand is returned by Retry when nothing is waiting for a choice.
var ErrNoCommand = errors.New("no navigation to retry")

// State is the loading state.
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateTimedOut  State = "timed_out"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Command is one navigation handed to the embedded browser.
type Command struct {
	URL         string `json:"url"`
	ServerURL   string `json:"server_url"`
	DisplayName string `json:"display_name"`
	Override    bool   `json:"override,omitempty"`
}

// Handler is told about transitions that need a reaction outside the
// supervisor. Callbacks run without the supervisor lock held and are never
// made from Arm or Reset.
type Handler interface {
	// LoadingTimedOut is called when the ceiling passes without completion.
	LoadingTimedOut(cmd Command)
	// LoadingRetried is called when the same command must be issued again.
	LoadingRetried(cmd Command)
	// LoadingCancelled is called once when the user gives up on cmd.
	LoadingCancelled(cmd Command)
}

// Status is a snapshot of the supervisor.
type Status struct {
	State    State     `json:"state"`
	Command  *Command  `json:"command,omitempty"`
	ArmedAt  time.Time `json:"armed_at,omitempty"`
	Deadline time.Time `json:"deadline,omitempty"`
}

// Config configures a Supervisor.
type Config struct {
	Timeout time.Duration
	Bus     events.EventBus
}

// Supervisor runs at most one loading timer at a time.
type Supervisor struct {
	mu       sync.Mutex
	timeout  time.Duration
	bus      events.EventBus
	handler  Handler
	timer    *time.Timer
	gen      uint64
	state    State
	cmd      *Command
	armedAt  time.Time
	deadline time.Time
}

// New creates an idle supervisor.
func New(cfg Config) *Supervisor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Supervisor{
		timeout: cfg.Timeout,
		bus:     cfg.Bus,
		state:   StateIdle,
	}
}

// SetHandler installs the transition handler.
func (s *Supervisor) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Timeout returns the loading ceiling.
func (s *Supervisor) Timeout() time.Duration {
	return s.timeout
}

// Arm starts supervising cmd, replacing any live timer.
func (s *Supervisor) Arm(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armLocked(cmd)
}

func (s *Supervisor) armLocked(cmd Command) {
	s.stopLocked()
	s.gen++
	gen := s.gen
	s.cmd = &cmd
	s.state = StateLoading
	s.armedAt = time.Now()
	s.deadline = s.armedAt.Add(s.timeout)
	s.timer = time.AfterFunc(s.timeout, func() {
		s.fire(gen)
	})
}

func (s *Supervisor) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != StateLoading || s.cmd == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.state = StateTimedOut
	cmd := *s.cmd
	h := s.handler
	s.mu.Unlock()

	log.Printf("Supervisor: loading %s timed out after %s", cmd.URL, s.timeout)
	events.Emit(context.Background(), s.bus, events.EventNavigationTimeout, cmd.ServerURL, map[string]interface{}{
		"url":     cmd.URL,
		"timeout": s.timeout.String(),
	})
	if h != nil {
		h.LoadingTimedOut(cmd)
	}
}

// Completed marks the page as loaded and stops the timer. It returns false
// when nothing was loading.
func (s *Supervisor) Completed() bool {
	s.mu.Lock()
	if s.state != StateLoading && s.state != StateTimedOut {
		s.mu.Unlock()
		return false
	}
	s.stopLocked()
	s.gen++
	s.state = StateCompleted
	cmd := *s.cmd
	s.mu.Unlock()

	events.Emit(context.Background(), s.bus, events.EventNavigationCompleted, cmd.ServerURL, map[string]interface{}{
		"url": cmd.URL,
	})
	return true
}

// Retry issues the current command again, unchanged, and re-arms the timer.
func (s *Supervisor) Retry() (Command, error) {
	s.mu.Lock()
	if s.cmd == nil || (s.state != StateTimedOut && s.state != StateLoading) {
		s.mu.Unlock()
		return Command{}, ErrNoCommand
	}
	cmd := *s.cmd
	s.armLocked(cmd)
	h := s.handler
	s.mu.Unlock()

	events.Emit(context.Background(), s.bus, events.EventNavigationRetried, cmd.ServerURL, map[string]interface{}{
		"url": cmd.URL,
	})
	if h != nil {
		h.LoadingRetried(cmd)
	}
	return cmd, nil
}

// Cancel discards the current command and notifies the handler. Calling it
// again, or with nothing in flight, does nothing and returns false.
func (s *Supervisor) Cancel() bool {
	s.mu.Lock()
	if s.cmd == nil || (s.state != StateTimedOut && s.state != StateLoading) {
		s.mu.Unlock()
		return false
	}
	s.stopLocked()
	s.gen++
	cmd := *s.cmd
	s.cmd = nil
	s.state = StateCancelled
	h := s.handler
	s.mu.Unlock()

	events.Emit(context.Background(), s.bus, events.EventNavigationCancelled, cmd.ServerURL, map[string]interface{}{
		"url": cmd.URL,
	})
	if h != nil {
		h.LoadingCancelled(cmd)
	}
	return true
}

// Reset drops any command without notifying the handler.
func (s *Supervisor) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
	s.cmd = nil
	s.state = StateIdle
	s.armedAt = time.Time{}
	s.deadline = time.Time{}
}

// Status returns a snapshot.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{State: s.state, ArmedAt: s.armedAt, Deadline: s.deadline}
	if s.cmd != nil {
		cmd := *s.cmd
		st.Command = &cmd
	}
	return st
}

// Stop releases the timer.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
}

func (s *Supervisor) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
