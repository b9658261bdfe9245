// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, KeyEmptyURL, "Please enter a server URL")
	message.SetString(lang, KeyInvalidURL, "Please enter a valid URL")
	message.SetString(lang, KeyServerNotReachable, "Server is not reachable. Please check the URL and try again.")
	message.SetString(lang, KeyConnectionFailed, "Connection failed: %s")
	message.SetString(lang, KeyConnected, "Connected to %s")

	message.SetString(lang, KeyConnectingToServer, "Connecting to server...")
	message.SetString(lang, KeyOpeningServer, "Opening %s...")
	message.SetString(lang, KeyConnectionFailedTitle, "Connection takes too long")
	message.SetString(lang, KeyConnectionFailedBody, "The server %s is not responding. Retry or choose another server.")
	message.SetString(lang, KeyRetry, "Retry")
	message.SetString(lang, KeyBackToServerSelection, "Back to server selection")

	message.SetString(lang, KeyReconnectTitle, "Reconnect to %s?")
}
