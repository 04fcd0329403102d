package contract

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// initRepo creates a throwaway repository with a single commit.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir, "-c", "user.name=Tester", "-c", "user.email=tester@example.com"}, args...)...)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	run("add", "main.go")
	run("commit", "-q", "-m", "initial | commit")
	return dir
}

// TestMockGitClient_Run ensures the mock correctly records and returns
// expected values when its Run method is called.
func TestMockGitClient_Run(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()
	expectedOutput := []byte("a1b2c3d commit message")
	expectedError := errors.New("mocked git error")

	mockClient.On("Run", ctx, "/path/to/repo", "log", "-1", "--oneline").Return(expectedOutput, expectedError).Once()

	actualOutput, actualError := mockClient.Run(ctx, "/path/to/repo", "log", "-1", "--oneline")
	assert.Equal(t, expectedOutput, actualOutput)
	assert.Equal(t, expectedError, actualError)
	mockClient.AssertExpectations(t)
}

func TestNewLocalGitClient(t *testing.T) {
	client := NewLocalGitClient()
	assert.NotNil(t, client)
	assert.IsType(t, &LocalGitClient{}, client)
}

func TestLocalGitClient_Run(t *testing.T) {
	skipIfGitNotAvailable(t)
	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initRepo(t)

	_, err := client.Run(ctx, "/nonexistent/path", "status")
	assert.Error(t, err)

	_, err = client.Run(ctx, repo, "invalid-command")
	assert.Error(t, err)

	out, err := client.Run(ctx, repo, "status", "--porcelain")
	assert.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(out)))
}

func TestLocalGitClient_GetRepoRootAndHash(t *testing.T) {
	skipIfGitNotAvailable(t)
	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initRepo(t)

	root, err := client.GetRepoRoot(ctx, repo)
	require.NoError(t, err)
	assert.NotEmpty(t, root)

	hash, err := client.GetRepoHash(ctx, root)
	require.NoError(t, err)
	assert.Len(t, hash, 40)

	_, err = client.GetRepoRoot(ctx, "/nonexistent/path")
	assert.Error(t, err)
}

func TestLocalGitClient_GetCommitLog(t *testing.T) {
	skipIfGitNotAvailable(t)
	client := NewLocalGitClient()
	ctx := context.Background()
	repo := initRepo(t)

	out, err := client.GetCommitLog(ctx, repo, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	log := string(out)
	assert.True(t, strings.HasPrefix(log, "--"))
	assert.Contains(t, log, CommitFieldSep+"Tester"+CommitFieldSep)
	assert.Contains(t, log, "initial | commit")
	assert.Contains(t, log, "3\t0\tmain.go")

	out, err = client.GetCommitLog(ctx, repo, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
