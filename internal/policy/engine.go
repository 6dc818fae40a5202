// Package policy turns a tool call plus an agent's security policy into
// one of {allow, ask, block} using an embedded Rego module.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

// Decision is the engine's verdict on one tool call.
type Decision struct {
	Action          domain.PolicyAction `json:"action"`
	RiskLevel       domain.RiskLevel    `json:"risk_level"`
	Reasoning       string              `json:"reasoning"`
	EstimatedImpact string              `json:"estimated_impact"`
}

// catastrophicPatterns always blocks regardless of allowlist content.
var catastrophicPatterns = []string{
	"rm -rf /",
	"dd if=/dev/zero",
	":(){ :|:& };:",
	"chmod -R 777",
	"chown -R",
	"mkfs",
	"format",
	"> /dev/sda",
	"mv /* /dev/null",
}

var deleteVerbs = []string{"rm ", "delete", "unlink", "rmdir", "del "}

var permissionVerbs = []string{"chmod", "chown", "icacls", "setfacl"}

// Engine classifies tool calls against an agent's security policy. The
// Rego module is compiled once at construction; Evaluate only runs the
// prepared query.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine compiles the embedded policy module.
func NewEngine(ctx context.Context) (*Engine, error) {
	r := rego.New(
		rego.Query("data.agentpolicy.decision"),
		rego.Module("agentpolicy.rego", policyModule),
		rego.SetRegoVersion(ast.RegoV1),
	)
	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare policy module: %w", err)
	}
	return &Engine{query: query}, nil
}

// Evaluate runs the five-step algorithm against one tool call.
func (e *Engine) Evaluate(ctx context.Context, call domain.ToolCall, intrinsicRisk domain.RiskLevel, p domain.SecurityPolicy) (Decision, error) {
	input := map[string]interface{}{
		"command":                call.Args["command"],
		"path":                   firstNonEmpty(call.Args["path"], call.Args["file_path"]),
		"target":                 firstNonEmpty(call.Args["target"], call.Args["path"], call.Args["file_path"]),
		"intrinsic_risk":         string(intrinsicRisk),
		"allow_privileged_shell": p.AllowPrivilegedShell,
		"require_approval":       p.RequireApproval,
		"command_allowlist":      nonNil(p.CommandAllowlist),
		"command_denylist":      nonNil(p.CommandDenylist),
		"restricted_paths":       nonNil(p.RestrictedPaths),
		"auto_approve_ceiling":   string(p.AutoApproveCeiling),
		"catastrophic_patterns":  catastrophicPatterns,
		"delete_verbs":           deleteVerbs,
		"permission_verbs":       permissionVerbs,
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("policy evaluation failed: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{}, fmt.Errorf("policy module produced no decision")
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return Decision{}, fmt.Errorf("policy module returned unexpected shape: %T", results[0].Expressions[0].Value)
	}

	action, _ := obj["action"].(string)
	risk, _ := obj["risk_level"].(string)
	reasoning, _ := obj["reasoning"].(string)
	impact, _ := obj["estimated_impact"].(string)

	return Decision{
		Action:          domain.PolicyAction(action),
		RiskLevel:       domain.RiskLevel(risk),
		Reasoning:       reasoning,
		EstimatedImpact: impact,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
