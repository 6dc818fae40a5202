// Package handlers implements the concrete tool handlers registered into
// the tool registry at process start. Every handler method on Handlers
// matches the domain.Handler signature and is safe to call concurrently.
package handlers

import (
	"fmt"

	"github.com/Lumicake/LumiAgent/internal/domain"
	"github.com/Lumicake/LumiAgent/internal/memory"
	"github.com/Lumicake/LumiAgent/internal/screencap"
	"github.com/Lumicake/LumiAgent/internal/secrets"
)

// Handlers bundles the side-effecting collaborators handlers need:
// the memory store for the memory_* tools, a screen capturer for
// take_screenshot and friends, and a secret store http_request can pull
// an auth token out of instead of the model ever seeing it in plaintext.
type Handlers struct {
	Memory   *memory.Store
	Capturer screencap.Capturer
	Secrets  secrets.Store
}

// New returns a Handlers bundle.
func New(mem *memory.Store, cap screencap.Capturer, secretStore secrets.Store) *Handlers {
	return &Handlers{Memory: mem, Capturer: cap, Secrets: secretStore}
}

// errString formats a handler failure as a Go error with result ""; the
// execution loop turns it into the "Error: ..." tool-result text the
// model sees. Handlers never stringify their own failures.
func errString(format string, args ...interface{}) (string, error) {
	return "", fmt.Errorf(format, args...)
}

func requireArg(args map[string]string, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == "" {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	return v, nil
}

// Registrations returns every built-in tool descriptor, wired to this
// Handlers bundle. Category and intrinsic risk come from the fixed
// built-in tool table.
func (h *Handlers) Registrations() []domain.ToolDescriptor {
	var all []domain.ToolDescriptor
	all = append(all, h.fileTools()...)
	all = append(all, h.shellTools()...)
	all = append(all, h.systemTools()...)
	all = append(all, h.networkTools()...)
	all = append(all, h.gitTools()...)
	all = append(all, h.textDataTools()...)
	all = append(all, h.clipboardTools()...)
	all = append(all, h.mediaTools()...)
	all = append(all, h.codeExecTools()...)
	all = append(all, h.screenControlTools()...)
	all = append(all, h.memoryTools()...)
	return all
}

func tool(name, desc string, category domain.ToolCategory, risk domain.RiskLevel, params map[string]domain.ParamSchema, handler domain.Handler) domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        name,
		Description: desc,
		Category:    category,
		RiskLevel:   risk,
		Params:      params,
		Handler:     handler,
	}
}

func requiredParam(typ, desc string) domain.ParamSchema {
	return domain.ParamSchema{Type: typ, Description: desc, Required: true}
}

func optionalParam(typ, desc string) domain.ParamSchema {
	return domain.ParamSchema{Type: typ, Description: desc, Required: false}
}
