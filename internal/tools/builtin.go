package tools

import (
	"github.com/Lumicake/LumiAgent/internal/domain"
	"github.com/Lumicake/LumiAgent/internal/tools/handlers"
)

// Bootstrap installs every built-in tool descriptor produced by h into r,
// plus the update_self sentinel. update_self carries no Handler: the
// Execution Loop recognizes the name and intercepts it before Dispatch is
// ever called, so it must never resolve to a real handler here.
func Bootstrap(r *Registry, h *handlers.Handlers) {
	for _, d := range h.Registrations() {
		r.Register(d)
	}
	r.Register(domain.ToolDescriptor{
		Name:        "update_self",
		Description: "Update this agent's name, system prompt, model, or temperature for the next iteration.",
		Category:    domain.CategorySelfModify,
		RiskLevel:   domain.RiskLow,
		Params: map[string]domain.ParamSchema{
			"name":          {Type: "string", Description: "new agent display name"},
			"system_prompt": {Type: "string", Description: "new system prompt"},
			"model":         {Type: "string", Description: "new model identifier"},
			"temperature":   {Type: "string", Description: "new temperature, clamped into [0, 2]"},
		},
	})
}
