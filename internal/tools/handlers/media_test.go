package handlers

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lumicake/LumiAgent/internal/screencap"
)

type fakeCapturer struct {
	img []byte
	err error
}

func (f fakeCapturer) Capture(ctx context.Context, displayID string, maxWidth int) ([]byte, error) {
	return f.img, f.err
}

func TestMediaHandlers_TakeScreenshotEncodesAsBase64(t *testing.T) {
	h := &Handlers{Capturer: fakeCapturer{img: []byte("jpegbytes")}}
	result, err := h.takeScreenshot(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("jpegbytes")), result)
}

func TestMediaHandlers_TakeScreenshotNoCapturerReturnsGoError(t *testing.T) {
	h := &Handlers{}
	_, err := h.takeScreenshot(context.Background(), nil)
	require.Error(t, err)
}

func TestMediaHandlers_TakeScreenshotUnavailableCapturerReturnsGoError(t *testing.T) {
	h := &Handlers{Capturer: screencap.Unavailable{}}
	_, err := h.takeScreenshot(context.Background(), nil)
	require.Error(t, err)
}
