package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommitFieldSep separates header fields. Author names may contain "|",
// the ASCII unit separator does not occur in them.
const CommitFieldSep = "\x1f"

// CommitLogFormat is the pretty format used by GetCommitLog. Each commit
// header starts with "--" and carries hash, author, date and subject.
const CommitLogFormat = "--pretty=format:--%H%x1f%an%x1f%ad%x1f%s"

// LocalGitClient shells out to the git binary on PATH.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{}

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes git inside repoPath and returns stdout.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "git", append([]string{"-C", repoPath}, args...)...).Output()
	if err == nil {
		return out, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, fmt.Errorf("git %s failed in %q: %s", firstArg(args), repoPath, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return nil, fmt.Errorf("unable to run git, is it installed and on PATH? %w", err)
}

// GetCommitLog returns non-merge commits with numstat between the bounds.
// A zero bound is left open.
func (c *LocalGitClient) GetCommitLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error) {
	return c.Run(ctx, repoPath, commitLogArgs(startTime, endTime)...)
}

// GetRepoHash returns the HEAD commit.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	return c.revParse(ctx, repoPath, "HEAD")
}

// GetRepoRoot returns the top-level directory containing contextPath.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	return c.revParse(ctx, contextPath, "--show-toplevel")
}

func (c *LocalGitClient) revParse(ctx context.Context, path, arg string) (string, error) {
	out, err := c.Run(ctx, path, "rev-parse", arg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func commitLogArgs(since, until time.Time) []string {
	args := []string{"log", "--no-merges", "--numstat", CommitLogFormat, "--date=iso-strict"}
	if !since.IsZero() {
		args = append(args, "--since="+since.Format(DateTimeFormat))
	}
	if !until.IsZero() {
		args = append(args, "--until="+until.Format(DateTimeFormat))
	}
	return args
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
