// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/teamnifty/nuxbe/internal/i18n"
)

// ErrNotAwaitingReconnect is returned by Reconnect outside the reconnect
// prompt.
var ErrNotAwaitingReconnect = errors.New("no reconnect prompt pending")

// ErrorCode classifies a setup failure.
type ErrorCode string

const (
	CodeEmptyURL          ErrorCode = "empty_url"
	CodeInvalidURL        ErrorCode = "invalid_url"
	CodeServerUnreachable ErrorCode = "server_unreachable"
	CodeConnectionFailed  ErrorCode = "connection_failed"
)

// SetupError is a failure shown inline on the setup screen.
type SetupError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

func newSetupError(tag language.Tag, code ErrorCode, err error) *SetupError {
	var msg string
	switch code {
	case CodeEmptyURL:
		msg = i18n.Sprintf(tag, i18n.KeyEmptyURL)
	case CodeInvalidURL:
		msg = i18n.Sprintf(tag, i18n.KeyInvalidURL)
	case CodeServerUnreachable:
		msg = i18n.Sprintf(tag, i18n.KeyServerNotReachable)
	default:
		detail := "unknown error"
		if err != nil {
			detail = err.Error()
		}
		msg = i18n.Sprintf(tag, i18n.KeyConnectionFailed, detail)
	}
	return &SetupError{Code: code, Message: msg, Err: err}
}
