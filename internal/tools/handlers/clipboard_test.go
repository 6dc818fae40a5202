package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClipboardHandlers_WriteClipboardMissingArgReturnsGoError(t *testing.T) {
	h := &Handlers{}
	_, err := h.writeClipboard(context.Background(), map[string]string{})
	require.Error(t, err)
}

func TestClipboardHandlers_ReadClipboardReturnsTextWhenBackendAvailable(t *testing.T) {
	h := &Handlers{}
	result, err := h.readClipboard(context.Background(), nil)
	if err != nil {
		t.Skipf("no clipboard backend available on this host: %v", err)
	}
	require.NotNil(t, result)
}
