// Package llm abstracts the multi-provider LLM client the execution
// loop drives. The core treats it as an opaque service; this package
// defines only the contract and a deterministic mock for tests and
// local runs with no provider configured.
package llm

import (
	"context"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

// ToolDefinition is the subset of a domain.ToolDescriptor a provider
// needs to offer a tool to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Params      map[string]domain.ParamSchema
}

// Request carries everything send_message needs per the contract.
type Request struct {
	Provider           string
	Model              string
	Messages           []domain.Message
	SystemInstructions string
	Tools              []ToolDefinition
	Temperature        float64
	MaxTokens          int
}

// Usage reports token accounting for a single completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the model's reply to one Request.
type Response struct {
	Content      string
	ToolCalls    []domain.ToolCall
	FinishReason string
	Usage        Usage
}

// StreamDelta is one chunk of a streamed response.
type StreamDelta struct {
	ContentDelta   string
	ToolCallDelta  *domain.ToolCall
	FinishReason   string
}

// StreamCallback receives successive deltas; returning an error aborts
// the stream.
type StreamCallback func(StreamDelta) error

// Client is the contract the execution loop drives: a send and a
// streaming send, both provider-agnostic.
type Client interface {
	SendMessage(ctx context.Context, req Request) (*Response, error)
	SendMessageStream(ctx context.Context, req Request, cb StreamCallback) (*Usage, error)
}
