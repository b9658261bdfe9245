// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
	}{
		{"", language.English},
		{"de", language.German},
		{"de-AT", language.German},
		{"de-DE,de;q=0.9,en;q=0.8", language.German},
		{"en-US", language.English},
		{"fr-FR", language.English},
		{"%%%", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			base, _ := Match(tt.in).Base()
			wantBase, _ := tt.want.Base()
			assert.Equal(t, wantBase, base)
		})
	}
}

func TestSprintf(t *testing.T) {
	assert.Equal(t, "Please enter a valid URL", Sprintf(language.English, KeyInvalidURL))
	assert.Equal(t, "Bitte geben Sie eine gültige URL ein", Sprintf(language.German, KeyInvalidURL))
	assert.Equal(t, "Opening Demo Co...", Sprintf(language.English, KeyOpeningServer, "Demo Co"))
	assert.Equal(t, "Demo Co wird geöffnet...", Sprintf(language.German, KeyOpeningServer, "Demo Co"))
}

func TestSupported(t *testing.T) {
	tags := Supported()
	assert.Len(t, tags, 2)
	tags[0] = language.French
	assert.Equal(t, language.English, Supported()[0])
}
