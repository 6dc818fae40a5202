package domain

import "context"

// ParamSchema describes one parameter a tool accepts.
type ParamSchema struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
	Required    bool     `json:"required"`
}

// Handler is the function signature every tool handler implements. It
// receives the raw string arguments declared by the descriptor's schema
// and returns a UTF-8 result string, or an error (the execution loop
// formats the error as an "Error: ..." string before handing it back to
// the model, per the tool-result contract).
type Handler func(ctx context.Context, args map[string]string) (string, error)

// ToolDescriptor is one entry in the tool registry: a named,
// side-effecting operation the model may request.
type ToolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Category    ToolCategory           `json:"category"`
	RiskLevel   RiskLevel              `json:"risk_level"`
	Params      map[string]ParamSchema `json:"params"`
	Handler     Handler                `json:"-"`
}

// ToolCall is a single invocation request produced by the LLM.
type ToolCall struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Args           map[string]string `json:"arguments"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}
