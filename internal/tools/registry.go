// Package tools holds the typed catalog of side-effecting operations the
// LLM may invoke and dispatches invocations to their handlers.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

// Registry is an in-memory, read-after-init catalog of tool descriptors
// keyed by name. Registering a duplicate name replaces the prior
// descriptor (last-wins), which is the supported mechanism for a host
// to install custom tools before loop start.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]domain.ToolDescriptor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]domain.ToolDescriptor)}
}

// Register adds or replaces the descriptor for d.Name.
func (r *Registry) Register(d domain.ToolDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[d.Name] = d
}

// Get looks up a descriptor by name.
func (r *Registry) Get(name string) (domain.ToolDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tools[name]
	return d, ok
}

// List returns every registered descriptor, or only those named in
// enabledNames when it is non-empty.
func (r *Registry) List(enabledNames []string) []domain.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(enabledNames) == 0 {
		out := make([]domain.ToolDescriptor, 0, len(r.tools))
		for _, d := range r.tools {
			out = append(out, d)
		}
		return out
	}

	out := make([]domain.ToolDescriptor, 0, len(enabledNames))
	for _, name := range enabledNames {
		if d, ok := r.tools[name]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Dispatch runs the handler for call.Name with call.Args. update_self is
// a sentinel the Execution Loop intercepts before dispatch; it must never
// reach here.
func (r *Registry) Dispatch(ctx context.Context, call domain.ToolCall) (string, error) {
	d, ok := r.Get(call.Name)
	if !ok {
		return "", fmt.Errorf("tool not found: %s", call.Name)
	}
	if d.Handler == nil {
		return "", fmt.Errorf("tool %s has no handler", call.Name)
	}
	return d.Handler(ctx, call.Args)
}
