// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package bootstrap

// Phase is where the controller is in a bootstrap run.
type Phase string

const (
	PhaseInit                Phase = "init"
	PhaseResetCheck          Phase = "reset_check"
	PhaseSetupRequired       Phase = "setup_required"
	PhaseResumeCheck         Phase = "resume_check"
	PhaseDirectResume        Phase = "direct_resume"
	PhaseReconnectPrompt     Phase = "reconnect_prompt"
	PhaseFeatureInit         Phase = "feature_init"
	PhaseNavigationCommitted Phase = "navigation_committed"
	PhaseNoOp                Phase = "no_op"
)

// Terminal reports whether a run stops in p.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseSetupRequired, PhaseReconnectPrompt, PhaseNavigationCommitted, PhaseNoOp:
		return true
	}
	return false
}
