package handlers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lumicake/LumiAgent/internal/memory"
)

func newTestMemoryHandlers(t *testing.T) *Handlers {
	t.Helper()
	mem, err := memory.Open(filepath.Join(t.TempDir(), "memory.json"))
	require.NoError(t, err)
	return &Handlers{Memory: mem}
}

func TestMemoryHandlers_SaveReadRoundTrip(t *testing.T) {
	h := newTestMemoryHandlers(t)

	_, err := h.memorySave(context.Background(), map[string]string{"key": "name", "value": "ada"})
	require.NoError(t, err)

	result, err := h.memoryRead(context.Background(), map[string]string{"key": "name"})
	require.NoError(t, err)
	require.Equal(t, "ada", result)
}

func TestMemoryHandlers_ReadMissingKeyReturnsGoError(t *testing.T) {
	h := newTestMemoryHandlers(t)
	_, err := h.memoryRead(context.Background(), map[string]string{"key": "missing"})
	require.Error(t, err)
}

func TestMemoryHandlers_ListReportsAllKeys(t *testing.T) {
	h := newTestMemoryHandlers(t)
	_, err := h.memorySave(context.Background(), map[string]string{"key": "a", "value": "1"})
	require.NoError(t, err)
	_, err = h.memorySave(context.Background(), map[string]string{"key": "b", "value": "2"})
	require.NoError(t, err)

	result, err := h.memoryList(context.Background(), nil)
	require.NoError(t, err)
	require.Contains(t, result, "a")
	require.Contains(t, result, "b")
}

func TestMemoryHandlers_DeleteRemovesKey(t *testing.T) {
	h := newTestMemoryHandlers(t)
	_, err := h.memorySave(context.Background(), map[string]string{"key": "name", "value": "ada"})
	require.NoError(t, err)

	_, err = h.memoryDelete(context.Background(), map[string]string{"key": "name"})
	require.NoError(t, err)

	_, err = h.memoryRead(context.Background(), map[string]string{"key": "name"})
	require.Error(t, err)
}

func TestMemoryHandlers_SaveMissingKeyReturnsGoError(t *testing.T) {
	h := newTestMemoryHandlers(t)
	_, err := h.memorySave(context.Background(), map[string]string{"value": "ada"})
	require.Error(t, err)
}
