// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternMatcher_Match(t *testing.T) {
	pm := NewPatternMatcher()

	tests := []struct {
		eventType string
		pattern   string
		want      bool
	}{
		{"navigation.committed", "navigation.committed", true},
		{"navigation.committed", "navigation.*", true},
		{"navigation.timeout", "navigation.*", true},
		{"history.added", "navigation.*", false},
		{"history.removed", "*.removed", true},
		{"history.added", "*.removed", false},
		{"deeplink.resolved", "*", true},
		{"deeplink.resolved", "", false},
		{"", "*", false},
		{"navigationx.committed", "navigation.*", false},
	}

	for _, tt := range tests {
		t.Run(tt.eventType+"~"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, pm.Match(tt.eventType, tt.pattern))
		})
	}
}

func TestPatternMatcher_Compile(t *testing.T) {
	pm := NewPatternMatcher()

	_, err := pm.Compile("")
	assert.Error(t, err)

	cp, err := pm.Compile("setup.*")
	assert.NoError(t, err)
	assert.True(t, cp.Match(EventSetupRequired))
	assert.False(t, cp.Match(EventBootstrapStarted))
}
