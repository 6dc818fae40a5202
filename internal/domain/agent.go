package domain

import "time"

// SecurityPolicy is the per-agent set of rules that bound what the agent
// may do unattended. A denylist match always overrides an allowlist match.
type SecurityPolicy struct {
	AllowPrivilegedShell bool      `json:"allow_privileged_shell"`
	RequireApproval      bool      `json:"require_approval"`
	CommandAllowlist     []string  `json:"command_allowlist"`
	CommandDenylist      []string  `json:"command_denylist"`
	RestrictedPaths      []string  `json:"restricted_paths"`
	MaxExecutionTimeSecs int       `json:"max_execution_time_seconds"`
	AutoApproveCeiling   RiskLevel `json:"auto_approve_ceiling"`
}

// DefaultSecurityPolicy mirrors the conservative defaults a fresh agent is
// created with: nothing privileged, approval required above low risk.
func DefaultSecurityPolicy() SecurityPolicy {
	return SecurityPolicy{
		AllowPrivilegedShell: false,
		RequireApproval:      false,
		CommandAllowlist:     nil,
		CommandDenylist:      nil,
		RestrictedPaths:      nil,
		MaxExecutionTimeSecs: 30,
		AutoApproveCeiling:   RiskLow,
	}
}

// Agent is an immutable snapshot of a configured LLM persona, as consumed
// by one execution. The owning store (out of scope, see spec §1) may
// mutate the live record; the loop only ever sees snapshots.
type Agent struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Provider           string         `json:"provider"`
	Model              string         `json:"model"`
	SystemInstructions string         `json:"system_instructions,omitempty"`
	Temperature        float64        `json:"temperature"`
	MaxTokens          int            `json:"max_tokens"`
	EnabledTools       []string       `json:"enabled_tools"`
	Policy             SecurityPolicy `json:"policy"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Clone returns a deep-enough copy safe for the loop to mutate across
// iterations without affecting the caller's original snapshot.
func (a Agent) Clone() Agent {
	clone := a
	clone.EnabledTools = append([]string(nil), a.EnabledTools...)
	clone.Policy.CommandAllowlist = append([]string(nil), a.Policy.CommandAllowlist...)
	clone.Policy.CommandDenylist = append([]string(nil), a.Policy.CommandDenylist...)
	clone.Policy.RestrictedPaths = append([]string(nil), a.Policy.RestrictedPaths...)
	return clone
}

// ClampTemperature clamps t into the valid sampling range [0, 2].
func ClampTemperature(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 2 {
		return 2
	}
	return t
}
