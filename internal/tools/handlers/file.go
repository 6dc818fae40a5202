package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func (h *Handlers) fileTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		tool("read_file", "Read the full contents of a file as text.", domain.CategoryFile, domain.RiskLow,
			map[string]domain.ParamSchema{"path": requiredParam("string", "path to the file")}, h.readFile),
		tool("list_directory", "List the entries of a directory.", domain.CategoryFile, domain.RiskLow,
			map[string]domain.ParamSchema{"path": requiredParam("string", "directory to list")}, h.listDirectory),
		tool("get_file_info", "Report size, mode and modification time for a path.", domain.CategoryFile, domain.RiskLow,
			map[string]domain.ParamSchema{"path": requiredParam("string", "path to inspect")}, h.getFileInfo),
		tool("search_files", "Find files under a directory whose name matches a glob pattern.", domain.CategoryFile, domain.RiskLow,
			map[string]domain.ParamSchema{
				"path":    requiredParam("string", "directory to search"),
				"pattern": requiredParam("string", "glob pattern to match file names against"),
			}, h.searchFiles),
		tool("count_lines", "Count the number of newline-terminated lines in a file.", domain.CategoryFile, domain.RiskLow,
			map[string]domain.ParamSchema{"path": requiredParam("string", "path to the file")}, h.countLines),
		tool("write_file", "Write text content to a file, creating or truncating it.", domain.CategoryFile, domain.RiskMedium,
			map[string]domain.ParamSchema{
				"path":    requiredParam("string", "path to the file"),
				"content": requiredParam("string", "text to write"),
			}, h.writeFile),
		tool("append_to_file", "Append text content to the end of a file.", domain.CategoryFile, domain.RiskMedium,
			map[string]domain.ParamSchema{
				"path":    requiredParam("string", "path to the file"),
				"content": requiredParam("string", "text to append"),
			}, h.appendToFile),
		tool("move_file", "Move or rename a file.", domain.CategoryFile, domain.RiskMedium,
			map[string]domain.ParamSchema{
				"source":      requiredParam("string", "existing path"),
				"destination": requiredParam("string", "new path"),
			}, h.moveFile),
		tool("copy_file", "Copy a file to a new path.", domain.CategoryFile, domain.RiskMedium,
			map[string]domain.ParamSchema{
				"source":      requiredParam("string", "existing path"),
				"destination": requiredParam("string", "new path"),
			}, h.copyFile),
		tool("create_directory", "Create a directory, including parents.", domain.CategoryFile, domain.RiskMedium,
			map[string]domain.ParamSchema{"path": requiredParam("string", "directory to create")}, h.createDirectory),
		tool("delete_file", "Permanently delete a file or directory.", domain.CategoryFile, domain.RiskHigh,
			map[string]domain.ParamSchema{"path": requiredParam("string", "path to delete")}, h.deleteFile),
	}
}

func (h *Handlers) readFile(ctx context.Context, args map[string]string) (string, error) {
	path, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errString("failed to read %s: %v", path, err)
	}
	return string(data), nil
}

func (h *Handlers) listDirectory(ctx context.Context, args map[string]string) (string, error) {
	path, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return errString("failed to list %s: %v", path, err)
	}
	var lines []string
	for _, e := range entries {
		kind := "file"
		if e.IsDir() {
			kind = "dir"
		}
		lines = append(lines, fmt.Sprintf("%s\t%s", kind, e.Name()))
	}
	return strings.Join(lines, "\n"), nil
}

func (h *Handlers) getFileInfo(ctx context.Context, args map[string]string) (string, error) {
	path, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return errString("failed to stat %s: %v", path, err)
	}
	return fmt.Sprintf("size=%d mode=%s modified=%s is_dir=%t", info.Size(), info.Mode(), info.ModTime().Format("2006-01-02T15:04:05Z07:00"), info.IsDir()), nil
}

func (h *Handlers) searchFiles(ctx context.Context, args map[string]string) (string, error) {
	dir, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	pattern, err := requireArg(args, "pattern")
	if err != nil {
		return "", err
	}

	var matches []string
	err = filepath.WalkDir(dir, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		ok, matchErr := filepath.Match(pattern, d.Name())
		if matchErr != nil {
			return matchErr
		}
		if ok {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		return errString("failed to search %s: %v", dir, err)
	}
	return strings.Join(matches, "\n"), nil
}

func (h *Handlers) countLines(ctx context.Context, args map[string]string) (string, error) {
	path, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return errString("failed to open %s: %v", path, err)
	}
	defer f.Close()

	count := 0
	buf := make([]byte, 32*1024)
	for {
		n, readErr := f.Read(buf)
		for _, b := range buf[:n] {
			if b == '\n' {
				count++
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return errString("failed to read %s: %v", path, readErr)
		}
	}
	return fmt.Sprintf("%d", count), nil
}

func (h *Handlers) writeFile(ctx context.Context, args map[string]string) (string, error) {
	path, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	content := args["content"]
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errString("failed to write %s: %v", path, err)
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(content), path), nil
}

func (h *Handlers) appendToFile(ctx context.Context, args map[string]string) (string, error) {
	path, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	content := args["content"]
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errString("failed to open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return errString("failed to append to %s: %v", path, err)
	}
	return fmt.Sprintf("appended %d bytes to %s", len(content), path), nil
}

func (h *Handlers) moveFile(ctx context.Context, args map[string]string) (string, error) {
	src, err := requireArg(args, "source")
	if err != nil {
		return "", err
	}
	dst, err := requireArg(args, "destination")
	if err != nil {
		return "", err
	}
	if err := os.Rename(src, dst); err != nil {
		return errString("failed to move %s to %s: %v", src, dst, err)
	}
	return fmt.Sprintf("moved %s to %s", src, dst), nil
}

func (h *Handlers) copyFile(ctx context.Context, args map[string]string) (string, error) {
	src, err := requireArg(args, "source")
	if err != nil {
		return "", err
	}
	dst, err := requireArg(args, "destination")
	if err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return errString("failed to open %s: %v", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errString("failed to create %s: %v", dst, err)
	}
	defer out.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return errString("failed to copy %s to %s: %v", src, dst, err)
	}
	return fmt.Sprintf("copied %d bytes from %s to %s", n, src, dst), nil
}

func (h *Handlers) createDirectory(ctx context.Context, args map[string]string) (string, error) {
	path, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errString("failed to create directory %s: %v", path, err)
	}
	return fmt.Sprintf("created directory %s", path), nil
}

func (h *Handlers) deleteFile(ctx context.Context, args map[string]string) (string, error) {
	path, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(path); err != nil {
		return errString("failed to delete %s: %v", path, err)
	}
	return fmt.Sprintf("deleted %s", path), nil
}
