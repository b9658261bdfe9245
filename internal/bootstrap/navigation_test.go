// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/teamnifty/nuxbe/internal/i18n"
)

func TestLoginURL(t *testing.T) {
	const server = "https://demo.nuxbe.com"

	tests := []struct {
		name   string
		params LoginParams
		want   string
	}{
		{
			name: "bare",
			want: server + "/login-mobile",
		},
		{
			name:   "redirect only",
			params: LoginParams{Redirect: "/orders?id=4"},
			want:   server + "/login-mobile?redirect=%2Forders%3Fid%3D4",
		},
		{
			name:   "token without native",
			params: LoginParams{PushToken: "tok", Platform: "web", DeviceID: "d"},
			want:   server + "/login-mobile",
		},
		{
			name:   "native without token",
			params: LoginParams{Native: true, Platform: "ios", DeviceID: "d"},
			want:   server + "/login-mobile",
		},
		{
			name: "native full",
			params: LoginParams{
				PushToken: "tok", Native: true, Platform: "ios", DeviceID: "d1",
				Model: "iPhone15,2", OSVersion: "17.4", Manufacturer: "Apple",
				DeviceName: "Lager", Redirect: "/x",
			},
			want: server + "/login-mobile?fcm_token=tok&platform=ios&device_id=d1&device_model=iPhone15%2C2" +
				"&device_os_version=17.4&device_manufacturer=Apple&device_name=Lager&redirect=%2Fx",
		},
		{
			name: "unknown manufacturer and name omitted",
			params: LoginParams{
				PushToken: "tok", Native: true, Platform: "android", DeviceID: "d1",
				Model: "Pixel", OSVersion: "14",
			},
			want: server + "/login-mobile?fcm_token=tok&platform=android&device_id=d1&device_model=Pixel&device_os_version=14",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LoginURL(server, tt.params))
		})
	}
}

func TestPhase_Terminal(t *testing.T) {
	assert.True(t, PhaseSetupRequired.Terminal())
	assert.True(t, PhaseNoOp.Terminal())
	assert.True(t, PhaseReconnectPrompt.Terminal())
	assert.True(t, PhaseNavigationCommitted.Terminal())
	assert.False(t, PhaseResumeCheck.Terminal())
	assert.False(t, PhaseFeatureInit.Terminal())
}

func TestSetupError(t *testing.T) {
	err := newSetupError(defaultTag(), CodeConnectionFailed, assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "connection_failed")
	assert.Equal(t, "Connection failed: "+assert.AnError.Error(), err.Message)

	plain := newSetupError(defaultTag(), CodeInvalidURL, nil)
	assert.Equal(t, "invalid_url", plain.Error())
}

func defaultTag() language.Tag {
	return i18n.Default()
}
