package llm

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

// MockClient is a deterministic stand-in for a real provider, used in
// tests and when no network-backed LLM is configured. With no tools
// offered it answers with a canned acknowledgement of the last user
// message; with tools offered it always calls the first one.
type MockClient struct{}

// NewMockClient returns a MockClient.
func NewMockClient() *MockClient {
	return &MockClient{}
}

var _ Client = (*MockClient)(nil)

// SendMessage implements Client.
func (m *MockClient) SendMessage(ctx context.Context, req Request) (*Response, error) {
	if len(req.Tools) > 0 {
		return &Response{
			ToolCalls: []domain.ToolCall{{
				ID:   "tc_" + uuid.New().String(),
				Name: req.Tools[0].Name,
				Args: map[string]string{},
			}},
			FinishReason: "tool_calls",
		}, nil
	}

	last := lastUserMessage(req.Messages)
	content := "[MOCK] This is a mock response from the LLM client."
	if last != "" {
		content = fmt.Sprintf("[MOCK] Received your message: %q.", truncate(last, 100))
	}
	return &Response{Content: content, FinishReason: "stop"}, nil
}

// SendMessageStream implements Client by sending the whole SendMessage
// result as a single delta.
func (m *MockClient) SendMessageStream(ctx context.Context, req Request, cb StreamCallback) (*Usage, error) {
	resp, err := m.SendMessage(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := cb(StreamDelta{ContentDelta: resp.Content, FinishReason: resp.FinishReason}); err != nil {
		return nil, err
	}
	return &resp.Usage, nil
}

func lastUserMessage(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
