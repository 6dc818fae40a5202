package handlers

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func (h *Handlers) shellTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		tool("execute_command", "Run a shell command and return its combined output.", domain.CategoryShell, domain.RiskHigh,
			map[string]domain.ParamSchema{"command": requiredParam("string", "shell command to run")}, h.executeCommand),
	}
}

func (h *Handlers) executeCommand(ctx context.Context, args map[string]string) (string, error) {
	command, err := requireArg(args, "command")
	if err != nil {
		return "", err
	}

	shell, flag := "/bin/sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}

	cmd := exec.CommandContext(ctx, shell, flag, command)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("timeout: %w", ctx.Err())
		}
		return errString("command failed: %v: %s", err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}
