// Package screencap provides the pluggable screen-capture capability the
// execution loop uses for vision feedback and the take_screenshot tool.
package screencap

import "context"

// Capturer captures the given display (empty string for primary) as a
// JPEG scaled to at most maxWidth pixels wide.
type Capturer interface {
	Capture(ctx context.Context, displayID string, maxWidth int) ([]byte, error)
}

// Unavailable is a Capturer that always reports no capture support,
// letting callers degrade gracefully on platforms without one.
type Unavailable struct{}

// Capture implements Capturer.
func (Unavailable) Capture(ctx context.Context, displayID string, maxWidth int) ([]byte, error) {
	return nil, errNoCapture
}

var errNoCapture = captureError("screen capture is not available on this host")

type captureError string

func (e captureError) Error() string { return string(e) }
