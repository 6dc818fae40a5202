package handlers

import (
	"context"
	"encoding/base64"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func (h *Handlers) mediaTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		tool("take_screenshot", "Capture the primary display and return it as base64-encoded JPEG.", domain.CategoryMedia, domain.RiskMedium, nil, h.takeScreenshot),
	}
}

func (h *Handlers) takeScreenshot(ctx context.Context, args map[string]string) (string, error) {
	if h.Capturer == nil {
		return errString("no screen capture service configured on this host")
	}
	img, err := h.Capturer.Capture(ctx, "", 1440)
	if err != nil {
		return errString("failed to capture screen: %v", err)
	}
	return base64.StdEncoding.EncodeToString(img), nil
}
