package domain

import "time"

// ApprovalRequest parks a policy engine "ask" decision for human
// adjudication. Exactly one terminal transition ever occurs; once
// terminal the request is immutable.
type ApprovalRequest struct {
	ID               string         `json:"id"`
	SessionID        string         `json:"session_id"`
	AgentID          string         `json:"agent_id"`
	ToolCall         ToolCall       `json:"tool_call"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	Reasoning        string         `json:"reasoning"`
	EstimatedImpact  string         `json:"estimated_impact"`
	Status           ApprovalStatus `json:"status"`
	Justification    string         `json:"justification,omitempty"`
	ModifiedCommand  string         `json:"modified_command,omitempty"`
	RequestedAt      time.Time      `json:"requested_at"`
	DecidedAt        *time.Time     `json:"decided_at,omitempty"`
	ExpiresAt        time.Time      `json:"expires_at"`
}
