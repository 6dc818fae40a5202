package handlers

import (
	"context"

	"github.com/atotto/clipboard"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func (h *Handlers) clipboardTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		tool("read_clipboard", "Read the current contents of the system clipboard.", domain.CategoryClipboard, domain.RiskLow, nil, h.readClipboard),
		tool("write_clipboard", "Write text to the system clipboard.", domain.CategoryClipboard, domain.RiskLow,
			map[string]domain.ParamSchema{"text": requiredParam("string", "text to write")}, h.writeClipboard),
	}
}

func (h *Handlers) readClipboard(ctx context.Context, args map[string]string) (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return errString("failed to read clipboard: %v", err)
	}
	return text, nil
}

func (h *Handlers) writeClipboard(ctx context.Context, args map[string]string) (string, error) {
	text, err := requireArg(args, "text")
	if err != nil {
		return "", err
	}
	if err := clipboard.WriteAll(text); err != nil {
		return errString("failed to write clipboard: %v", err)
	}
	return "clipboard updated", nil
}
