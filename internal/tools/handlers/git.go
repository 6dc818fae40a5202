package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func (h *Handlers) gitTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		tool("git_status", "Report the working tree status of a repository.", domain.CategoryGit, domain.RiskLow,
			map[string]domain.ParamSchema{"path": optionalParam("string", "repository path, defaults to .")}, h.gitStatus),
		tool("git_log", "List recent commits on the current branch.", domain.CategoryGit, domain.RiskLow,
			map[string]domain.ParamSchema{
				"path":  optionalParam("string", "repository path, defaults to ."),
				"limit": optionalParam("string", "max commits to return, defaults to 10"),
			}, h.gitLog),
		tool("git_diff", "Report which tracked files have unstaged changes in the working tree.", domain.CategoryGit, domain.RiskLow,
			map[string]domain.ParamSchema{"path": optionalParam("string", "repository path, defaults to .")}, h.gitDiff),
		tool("git_branch", "List local branches and mark the current one.", domain.CategoryGit, domain.RiskMedium,
			map[string]domain.ParamSchema{"path": optionalParam("string", "repository path, defaults to .")}, h.gitBranch),
		tool("git_clone", "Clone a remote repository to a local path.", domain.CategoryGit, domain.RiskMedium,
			map[string]domain.ParamSchema{
				"url":         requiredParam("string", "remote repository URL"),
				"destination": requiredParam("string", "local destination path"),
			}, h.gitClone),
		tool("git_commit", "Stage all changes and create a commit.", domain.CategoryGit, domain.RiskHigh,
			map[string]domain.ParamSchema{
				"path":    optionalParam("string", "repository path, defaults to ."),
				"message": requiredParam("string", "commit message"),
			}, h.gitCommit),
	}
}

func repoPath(args map[string]string) string {
	if p := args["path"]; p != "" {
		return p
	}
	return "."
}

func (h *Handlers) gitStatus(ctx context.Context, args map[string]string) (string, error) {
	repo, err := git.PlainOpen(repoPath(args))
	if err != nil {
		return errString("failed to open repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return errString("failed to get worktree: %v", err)
	}
	status, err := wt.Status()
	if err != nil {
		return errString("failed to get status: %v", err)
	}
	if status.IsClean() {
		return "clean", nil
	}
	var lines []string
	for file, s := range status {
		lines = append(lines, fmt.Sprintf("%c%c %s", s.Staging, s.Worktree, file))
	}
	return strings.Join(lines, "\n"), nil
}

func (h *Handlers) gitLog(ctx context.Context, args map[string]string) (string, error) {
	repo, err := git.PlainOpen(repoPath(args))
	if err != nil {
		return errString("failed to open repository: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		return errString("failed to resolve HEAD: %v", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return errString("failed to read log: %v", err)
	}

	limit := 10
	if args["limit"] != "" {
		fmt.Sscanf(args["limit"], "%d", &limit)
	}

	var lines []string
	count := 0
	_ = iter.ForEach(func(c *object.Commit) error {
		if count >= limit {
			return fmt.Errorf("limit reached")
		}
		lines = append(lines, fmt.Sprintf("%s %s", c.Hash.String()[:8], strings.SplitN(c.Message, "\n", 2)[0]))
		count++
		return nil
	})
	return strings.Join(lines, "\n"), nil
}

func (h *Handlers) gitDiff(ctx context.Context, args map[string]string) (string, error) {
	repo, err := git.PlainOpen(repoPath(args))
	if err != nil {
		return errString("failed to open repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return errString("failed to get worktree: %v", err)
	}
	status, err := wt.Status()
	if err != nil {
		return errString("failed to get status: %v", err)
	}
	if status.IsClean() {
		return "no differences from HEAD", nil
	}
	var lines []string
	for file, s := range status {
		if s.Worktree != git.Unmodified && s.Worktree != git.Untracked {
			lines = append(lines, fmt.Sprintf("modified: %s", file))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (h *Handlers) gitBranch(ctx context.Context, args map[string]string) (string, error) {
	repo, err := git.PlainOpen(repoPath(args))
	if err != nil {
		return errString("failed to open repository: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		return errString("failed to resolve HEAD: %v", err)
	}
	refs, err := repo.Branches()
	if err != nil {
		return errString("failed to list branches: %v", err)
	}
	var lines []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		marker := "  "
		if ref.Name() == head.Name() {
			marker = "* "
		}
		lines = append(lines, marker+ref.Name().Short())
		return nil
	})
	if err != nil {
		return errString("failed to enumerate branches: %v", err)
	}
	return strings.Join(lines, "\n"), nil
}

func (h *Handlers) gitClone(ctx context.Context, args map[string]string) (string, error) {
	url, err := requireArg(args, "url")
	if err != nil {
		return "", err
	}
	dest, err := requireArg(args, "destination")
	if err != nil {
		return "", err
	}
	_, err = git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{URL: url})
	if err != nil {
		return errString("failed to clone %s: %v", url, err)
	}
	return fmt.Sprintf("cloned %s into %s", url, dest), nil
}

func (h *Handlers) gitCommit(ctx context.Context, args map[string]string) (string, error) {
	message, err := requireArg(args, "message")
	if err != nil {
		return "", err
	}
	repo, err := git.PlainOpen(repoPath(args))
	if err != nil {
		return errString("failed to open repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return errString("failed to get worktree: %v", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return errString("failed to stage changes: %v", err)
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "agent", Email: "agent@localhost", When: time.Now()},
	})
	if err != nil {
		return errString("failed to commit: %v", err)
	}
	return fmt.Sprintf("committed %s: %s", hash.String()[:8], message), nil
}
