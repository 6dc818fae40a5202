package handlers

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	gops "github.com/mitchellh/go-ps"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func (h *Handlers) systemTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		tool("get_current_datetime", "Return the current date and time in RFC3339.", domain.CategorySystem, domain.RiskLow, nil, h.getCurrentDatetime),
		tool("get_system_info", "Return OS, architecture and CPU count of the host.", domain.CategorySystem, domain.RiskLow, nil, h.getSystemInfo),
		tool("list_processes", "List running processes by pid and executable name.", domain.CategorySystem, domain.RiskLow, nil, h.listProcesses),
	}
}

func (h *Handlers) getCurrentDatetime(ctx context.Context, args map[string]string) (string, error) {
	return time.Now().UTC().Format(time.RFC3339), nil
}

func (h *Handlers) getSystemInfo(ctx context.Context, args map[string]string) (string, error) {
	return fmt.Sprintf("os=%s arch=%s cpus=%d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU()), nil
}

func (h *Handlers) listProcesses(ctx context.Context, args map[string]string) (string, error) {
	procs, err := gops.Processes()
	if err != nil {
		return errString("failed to list processes: %v", err)
	}
	lines := make([]string, 0, len(procs))
	for _, p := range procs {
		lines = append(lines, fmt.Sprintf("%d\t%s", p.Pid(), p.Executable()))
	}
	return strings.Join(lines, "\n"), nil
}
