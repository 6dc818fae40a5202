package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCodeExecHandlers_RunPythonReturnsStdout(t *testing.T) {
	h := &Handlers{}
	result, err := h.runPython(context.Background(), map[string]string{"code": "print('hi')"})
	require.NoError(t, err)
	require.Contains(t, result, "hi")
}

func TestCodeExecHandlers_RunPythonSyntaxErrorReturnsGoError(t *testing.T) {
	h := &Handlers{}
	_, err := h.runPython(context.Background(), map[string]string{"code": "def(:"})
	require.Error(t, err)
}

func TestCodeExecHandlers_RunPythonMissingArgReturnsGoError(t *testing.T) {
	h := &Handlers{}
	_, err := h.runPython(context.Background(), map[string]string{})
	require.Error(t, err)
}

func TestCodeExecHandlers_RunNodeReturnsStdout(t *testing.T) {
	h := &Handlers{}
	result, err := h.runNode(context.Background(), map[string]string{"code": "console.log('hi')"})
	require.NoError(t, err)
	require.Contains(t, result, "hi")
}

func TestCodeExecHandlers_RunPythonTimeoutWrapsDeadlineExceeded(t *testing.T) {
	h := &Handlers{}
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()

	_, err := h.runPython(ctx, map[string]string{"code": "import time\ntime.sleep(1)"})
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded), "a timed-out run must wrap context.DeadlineExceeded so the loop's severity classification catches it")
}
