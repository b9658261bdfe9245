// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package i18n holds the localized messages the shell shows itself, before
// any server page has loaded.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	KeyEmptyURL           = "setup.errors.emptyUrl"
	KeyInvalidURL         = "setup.errors.invalidUrl"
	KeyServerNotReachable = "setup.errors.serverNotReachable"
	KeyConnectionFailed   = "setup.errors.connectionFailed"
	KeyConnected          = "setup.connected"

	KeyConnectingToServer    = "loading.connectingToServer"
	KeyOpeningServer         = "loading.openingServer"
	KeyConnectionFailedTitle = "loading.connectionFailedTitle"
	KeyConnectionFailedBody  = "loading.connectionFailedMessage"
	KeyRetry                 = "loading.retry"
	KeyBackToServerSelection = "loading.backToServerSelection"

	KeyReconnectTitle = "reconnect.title"
)

var supported = []language.Tag{language.English, language.German}

var matcher = language.NewMatcher(supported)

// Default returns the fallback language.
func Default() language.Tag {
	return language.English
}

// Supported returns the languages with a full catalog.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match picks the closest supported language for a locale string such as
// "de-AT" or an Accept-Language header. Unknown input yields English.
func Match(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return Default()
	}
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return Default()
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default()
	}
	return supported[idx]
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// Sprintf formats key for tag.
func Sprintf(tag language.Tag, key string, args ...interface{}) string {
	return Printer(tag).Sprintf(key, args...)
}
