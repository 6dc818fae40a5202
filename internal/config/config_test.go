package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		prev, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, prev)
			}
		})
	}
}

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	clearEnv(t, "AGENTCORE_EXTERNAL_PORT", "AGENTCORE_DEFAULT_PROVIDER", "AGENTCORE_APPROVAL_TIMEOUT_SECS")

	cfg := Load()
	require.Equal(t, 8080, cfg.ExternalHTTPPort)
	require.Equal(t, "ollama", cfg.DefaultProvider)
	require.Equal(t, 60*time.Second, cfg.ApprovalTimeout)
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	clearEnv(t, "AGENTCORE_EXTERNAL_PORT", "AGENTCORE_DEFAULT_PROVIDER")
	os.Setenv("AGENTCORE_EXTERNAL_PORT", "9090")
	os.Setenv("AGENTCORE_DEFAULT_PROVIDER", "anthropic")

	cfg := Load()
	require.Equal(t, 9090, cfg.ExternalHTTPPort)
	require.Equal(t, "anthropic", cfg.DefaultProvider)
}

func TestLoad_MalformedIntFallsBackToDefault(t *testing.T) {
	clearEnv(t, "AGENTCORE_NORMAL_CEILING")
	os.Setenv("AGENTCORE_NORMAL_CEILING", "not-a-number")

	cfg := Load()
	require.Equal(t, 10, cfg.NormalIterationCeiling)
}
