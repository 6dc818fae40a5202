package handlers

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func (h *Handlers) codeExecTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		tool("run_python", "Run a Python snippet and return its stdout/stderr.", domain.CategoryCodeExec, domain.RiskHigh,
			map[string]domain.ParamSchema{"code": requiredParam("string", "python source to run")}, h.runPython),
		tool("run_node", "Run a Node.js snippet and return its stdout/stderr.", domain.CategoryCodeExec, domain.RiskHigh,
			map[string]domain.ParamSchema{"code": requiredParam("string", "javascript source to run")}, h.runNode),
	}
}

func (h *Handlers) runPython(ctx context.Context, args map[string]string) (string, error) {
	return runInterpreter(ctx, args, "python3", "*.py")
}

func (h *Handlers) runNode(ctx context.Context, args map[string]string) (string, error) {
	return runInterpreter(ctx, args, "node", "*.js")
}

func runInterpreter(ctx context.Context, args map[string]string, interpreter, suffixPattern string) (string, error) {
	code, err := requireArg(args, "code")
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", strings.TrimPrefix(suffixPattern, "*"))
	if err != nil {
		return errString("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(code); err != nil {
		f.Close()
		return errString("failed to write source: %v", err)
	}
	f.Close()

	cmd := exec.CommandContext(ctx, interpreter, f.Name())
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("timeout: %w", ctx.Err())
		}
		return errString("%s failed: %v: %s", interpreter, err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}
