package domain

import (
	"encoding/json"
	"time"
)

// ExecutionStep is one append-only entry in a session's ordered history.
type ExecutionStep struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Seq       int             `json:"seq"`
	Kind      StepKind        `json:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ExecutionResult is the terminal outcome of a session.
type ExecutionResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ExecutionSession carries one end-to-end run of an agent on a user
// prompt from start to a terminal status.
type ExecutionSession struct {
	ID          string           `json:"id"`
	AgentID     string           `json:"agent_id"`
	UserPrompt  string           `json:"user_prompt"`
	Status      SessionStatus    `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	EndedAt     *time.Time       `json:"ended_at,omitempty"`
	Result      *ExecutionResult `json:"result,omitempty"`
	AgentMode   bool             `json:"agent_mode"`
	Iterations  int              `json:"iterations"`
}

// Message is one entry in the conversation sent to/received from the LLM.
// Role is one of "user", "assistant", "tool". ToolCalls is populated on
// assistant turns that invoke tools; ToolCallID/ToolName tag a tool-role
// reply back to the call it answers. ImageJPEG optionally carries a
// screenshot on a user turn (vision feedback).
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
	ImageJPEG  []byte     `json:"image_jpeg,omitempty"`
}
