package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background())
	require.NoError(t, err)
	return e
}

func TestEngine_DenylistOverridesAllowlist(t *testing.T) {
	e := newEngine(t)
	policy := domain.SecurityPolicy{
		CommandAllowlist:   []string{"rm -rf /"},
		AutoApproveCeiling: domain.RiskCritical,
	}
	call := domain.ToolCall{Name: "execute_command", Args: map[string]string{"command": "rm -rf /"}}

	d, err := e.Evaluate(context.Background(), call, domain.RiskHigh, policy)
	require.NoError(t, err)
	require.Equal(t, domain.PolicyBlock, d.Action)
	require.Equal(t, domain.RiskCritical, d.RiskLevel)
}

func TestEngine_PrivilegedShellBlockedByDefault(t *testing.T) {
	e := newEngine(t)
	policy := domain.SecurityPolicy{AllowPrivilegedShell: false}
	call := domain.ToolCall{Name: "execute_command", Args: map[string]string{"command": "sudo apt-get install x"}}

	d, err := e.Evaluate(context.Background(), call, domain.RiskHigh, policy)
	require.NoError(t, err)
	require.Equal(t, domain.PolicyBlock, d.Action)
}

func TestEngine_EmptyAllowlistMeansAny(t *testing.T) {
	e := newEngine(t)
	policy := domain.SecurityPolicy{AutoApproveCeiling: domain.RiskLow}
	call := domain.ToolCall{Name: "read_file", Args: map[string]string{"path": "/etc/hosts"}}

	d, err := e.Evaluate(context.Background(), call, domain.RiskLow, policy)
	require.NoError(t, err)
	require.Equal(t, domain.PolicyAllow, d.Action)
}

func TestEngine_NonEmptyAllowlistBlocksUnlistedCommand(t *testing.T) {
	e := newEngine(t)
	policy := domain.SecurityPolicy{CommandAllowlist: []string{"git status"}}
	call := domain.ToolCall{Name: "execute_command", Args: map[string]string{"command": "ls -la"}}

	d, err := e.Evaluate(context.Background(), call, domain.RiskLow, policy)
	require.NoError(t, err)
	require.Equal(t, domain.PolicyBlock, d.Action)
}

func TestEngine_AutoApproveCeilingCriticalApprovesEverythingNotDenied(t *testing.T) {
	e := newEngine(t)
	policy := domain.SecurityPolicy{RequireApproval: false, AutoApproveCeiling: domain.RiskCritical}
	call := domain.ToolCall{Name: "delete_file", Args: map[string]string{"path": "/tmp/x"}}

	d, err := e.Evaluate(context.Background(), call, domain.RiskHigh, policy)
	require.NoError(t, err)
	require.Equal(t, domain.PolicyAllow, d.Action)
}

func TestEngine_RiskMonotonicity(t *testing.T) {
	e := newEngine(t)
	policy := domain.SecurityPolicy{RestrictedPaths: []string{"/etc"}, AutoApproveCeiling: domain.RiskCritical}
	call := domain.ToolCall{Name: "read_file", Args: map[string]string{"path": "/etc/shadow", "target": "/etc/shadow"}}

	d, err := e.Evaluate(context.Background(), call, domain.RiskLow, policy)
	require.NoError(t, err)
	require.True(t, d.RiskLevel.AtLeast(domain.RiskHigh))
}

func TestEngine_AskWhenAboveCeiling(t *testing.T) {
	e := newEngine(t)
	policy := domain.SecurityPolicy{RequireApproval: true, AutoApproveCeiling: domain.RiskLow}
	call := domain.ToolCall{Name: "write_file", Args: map[string]string{"path": "/tmp/x", "content": "hi"}}

	d, err := e.Evaluate(context.Background(), call, domain.RiskMedium, policy)
	require.NoError(t, err)
	require.Equal(t, domain.PolicyAsk, d.Action)
	require.Equal(t, domain.RiskMedium, d.RiskLevel)
}
