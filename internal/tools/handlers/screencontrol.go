package handlers

import (
	"context"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

// Screen control has no input-automation driver wired on this host; every
// handler reports that plainly. get_screen_info degrades to reporting
// capture availability rather than failing outright, matching the
// graceful-degradation behavior specified for screen capture.
func (h *Handlers) screenControlTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		tool("get_screen_info", "Report whether screen capture is available on this host.", domain.CategoryScreenControl, domain.RiskHigh, nil, h.getScreenInfo),
		tool("move_mouse", "Move the mouse cursor to the given coordinates. Not supported on this host: always returns an error.", domain.CategoryScreenControl, domain.RiskHigh,
			map[string]domain.ParamSchema{"x": requiredParam("string", "x coordinate"), "y": requiredParam("string", "y coordinate")}, h.unsupportedControl),
		tool("click_mouse", "Click the mouse at its current position. Not supported on this host: always returns an error.", domain.CategoryScreenControl, domain.RiskHigh, nil, h.unsupportedControl),
		tool("scroll_mouse", "Scroll at the mouse's current position. Not supported on this host: always returns an error.", domain.CategoryScreenControl, domain.RiskHigh,
			map[string]domain.ParamSchema{"amount": requiredParam("string", "scroll amount, positive is down")}, h.unsupportedControl),
		tool("type_text", "Type text at the keyboard focus. Not supported on this host: always returns an error.", domain.CategoryScreenControl, domain.RiskHigh,
			map[string]domain.ParamSchema{"text": requiredParam("string", "text to type")}, h.unsupportedControl),
		tool("press_key", "Press a single key or key combination. Not supported on this host: always returns an error.", domain.CategoryScreenControl, domain.RiskHigh,
			map[string]domain.ParamSchema{"key": requiredParam("string", "key name, e.g. Enter")}, h.unsupportedControl),
		tool("run_applescript_or_platform_script", "Run a platform UI-automation script (AppleScript on macOS). Not supported on this host: always returns an error.", domain.CategoryScreenControl, domain.RiskHigh,
			map[string]domain.ParamSchema{"script": requiredParam("string", "script source")}, h.unsupportedControl),
	}
}

func (h *Handlers) getScreenInfo(ctx context.Context, args map[string]string) (string, error) {
	if h.Capturer == nil {
		return "screen capture unavailable on this host", nil
	}
	if _, err := h.Capturer.Capture(ctx, "", 1); err != nil {
		return "screen capture unavailable on this host", nil
	}
	return "screen capture available", nil
}

func (h *Handlers) unsupportedControl(ctx context.Context, args map[string]string) (string, error) {
	return errString("screen control is not supported on this host")
}
