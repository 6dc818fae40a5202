package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShellHandlers_ExecuteCommandReturnsOutput(t *testing.T) {
	h := &Handlers{}
	result, err := h.executeCommand(context.Background(), map[string]string{"command": "echo hello"})
	require.NoError(t, err)
	require.Contains(t, result, "hello")
}

func TestShellHandlers_ExecuteCommandFailureReturnsGoError(t *testing.T) {
	h := &Handlers{}
	_, err := h.executeCommand(context.Background(), map[string]string{"command": "exit 7"})
	require.Error(t, err)
}

func TestShellHandlers_ExecuteCommandMissingArgReturnsGoError(t *testing.T) {
	h := &Handlers{}
	_, err := h.executeCommand(context.Background(), map[string]string{})
	require.Error(t, err)
}

func TestShellHandlers_ExecuteCommandRespectsContextTimeout(t *testing.T) {
	h := &Handlers{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.executeCommand(ctx, map[string]string{"command": "sleep 1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "timeout")
	require.True(t, errors.Is(err, context.DeadlineExceeded), "a timed-out command must wrap context.DeadlineExceeded so the loop's severity classification catches it")
}
