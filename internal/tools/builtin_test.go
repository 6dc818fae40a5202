package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lumicake/LumiAgent/internal/domain"
	"github.com/Lumicake/LumiAgent/internal/memory"
	"github.com/Lumicake/LumiAgent/internal/screencap"
	"github.com/Lumicake/LumiAgent/internal/secrets"
	"github.com/Lumicake/LumiAgent/internal/tools/handlers"
)

func TestBootstrap_RegistersBuiltinsAndUpdateSelfSentinel(t *testing.T) {
	mem, err := memory.Open(t.TempDir() + "/memory.json")
	require.NoError(t, err)

	h := handlers.New(mem, screencap.Unavailable{}, secrets.NewInProcess())
	r := NewRegistry()
	Bootstrap(r, h)

	d, ok := r.Get("update_self")
	require.True(t, ok)
	require.Nil(t, d.Handler, "update_self must carry no handler; the loop intercepts it before dispatch")

	_, ok = r.Get("read_file")
	require.True(t, ok)

	all := r.List(nil)
	require.Greater(t, len(all), 10)
}

func TestBootstrap_UpdateSelfIsNeverDispatchable(t *testing.T) {
	mem, err := memory.Open(t.TempDir() + "/memory.json")
	require.NoError(t, err)

	h := handlers.New(mem, screencap.Unavailable{}, secrets.NewInProcess())
	r := NewRegistry()
	Bootstrap(r, h)

	_, err = r.Dispatch(context.Background(), domain.ToolCall{Name: "update_self"})
	require.Error(t, err)
}
