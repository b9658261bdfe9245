// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.German

	message.SetString(lang, KeyEmptyURL, "Bitte geben Sie eine Server-URL ein")
	message.SetString(lang, KeyInvalidURL, "Bitte geben Sie eine gültige URL ein")
	message.SetString(lang, KeyServerNotReachable, "Server ist nicht erreichbar. Bitte prüfen Sie die URL und versuchen Sie es erneut.")
	message.SetString(lang, KeyConnectionFailed, "Verbindung fehlgeschlagen: %s")
	message.SetString(lang, KeyConnected, "Verbunden mit %s")

	message.SetString(lang, KeyConnectingToServer, "Verbindung zum Server wird hergestellt...")
	message.SetString(lang, KeyOpeningServer, "%s wird geöffnet...")
	message.SetString(lang, KeyConnectionFailedTitle, "Verbindung dauert zu lange")
	message.SetString(lang, KeyConnectionFailedBody, "Der Server %s antwortet nicht. Erneut versuchen oder einen anderen Server wählen.")
	message.SetString(lang, KeyRetry, "Erneut versuchen")
	message.SetString(lang, KeyBackToServerSelection, "Zurück zur Serverauswahl")

	message.SetString(lang, KeyReconnectTitle, "Erneut mit %s verbinden?")
}
