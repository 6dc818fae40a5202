package handlers

import (
	"context"
	"strings"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func (h *Handlers) memoryTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		tool("memory_save", "Save a value under a key in the agent's persistent memory.", domain.CategoryMemory, domain.RiskLow,
			map[string]domain.ParamSchema{
				"key":   requiredParam("string", "memory key"),
				"value": requiredParam("string", "value to store"),
			}, h.memorySave),
		tool("memory_read", "Read the value stored under a key.", domain.CategoryMemory, domain.RiskLow,
			map[string]domain.ParamSchema{"key": requiredParam("string", "memory key")}, h.memoryRead),
		tool("memory_list", "List every key currently stored in memory.", domain.CategoryMemory, domain.RiskLow, nil, h.memoryList),
		tool("memory_delete", "Delete a key from memory.", domain.CategoryMemory, domain.RiskLow,
			map[string]domain.ParamSchema{"key": requiredParam("string", "memory key")}, h.memoryDelete),
	}
}

func (h *Handlers) memorySave(ctx context.Context, args map[string]string) (string, error) {
	key, err := requireArg(args, "key")
	if err != nil {
		return "", err
	}
	value := args["value"]
	if err := h.Memory.Save(key, value); err != nil {
		return errString("failed to save %q: %v", key, err)
	}
	return "saved", nil
}

func (h *Handlers) memoryRead(ctx context.Context, args map[string]string) (string, error) {
	key, err := requireArg(args, "key")
	if err != nil {
		return "", err
	}
	value, ok := h.Memory.Read(key)
	if !ok {
		return errString("not found: %s", key)
	}
	return value, nil
}

func (h *Handlers) memoryList(ctx context.Context, args map[string]string) (string, error) {
	keys := h.Memory.List()
	return strings.Join(keys, "\n"), nil
}

func (h *Handlers) memoryDelete(ctx context.Context, args map[string]string) (string, error) {
	key, err := requireArg(args, "key")
	if err != nil {
		return "", err
	}
	if err := h.Memory.Delete(key); err != nil {
		return errString("failed to delete %q: %v", key, err)
	}
	return "deleted", nil
}
