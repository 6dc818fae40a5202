package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func echoDescriptor(name string) domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:      name,
		Category:  domain.CategoryFile,
		RiskLevel: domain.RiskLow,
		Handler: func(ctx context.Context, args map[string]string) (string, error) {
			return "ok:" + name, nil
		},
	}
}

func TestRegistry_RegisterLastWins(t *testing.T) {
	r := NewRegistry()
	r.Register(echoDescriptor("tool_a"))
	r.Register(domain.ToolDescriptor{Name: "tool_a", Category: domain.CategoryShell, RiskLevel: domain.RiskHigh})

	d, ok := r.Get("tool_a")
	require.True(t, ok)
	require.Equal(t, domain.CategoryShell, d.Category)
}

func TestRegistry_ListFiltersByEnabledNames(t *testing.T) {
	r := NewRegistry()
	r.Register(echoDescriptor("tool_a"))
	r.Register(echoDescriptor("tool_b"))
	r.Register(echoDescriptor("tool_c"))

	filtered := r.List([]string{"tool_b", "tool_missing"})
	require.Len(t, filtered, 1)
	require.Equal(t, "tool_b", filtered[0].Name)

	all := r.List(nil)
	require.Len(t, all, 3)
}

func TestRegistry_DispatchRunsHandler(t *testing.T) {
	r := NewRegistry()
	r.Register(echoDescriptor("tool_a"))

	result, err := r.Dispatch(context.Background(), domain.ToolCall{Name: "tool_a"})
	require.NoError(t, err)
	require.Equal(t, "ok:tool_a", result)
}

func TestRegistry_DispatchUnknownToolErrors(t *testing.T) {
	r := NewRegistry()
	_, err := r.Dispatch(context.Background(), domain.ToolCall{Name: "missing"})
	require.Error(t, err)
}
