package harvest

import (
	"context"
	_ "embed"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/commit_log.txt
var commitLogFixture []byte

func TestParseCommitLog(t *testing.T) {
	commits, err := ParseCommitLog(commitLogFixture)
	require.NoError(t, err)
	require.Len(t, commits, 3)

	assert.Equal(t, "3f2a9c1d8e7b6a5f4e3d2c1b0a9f8e7d6c5b4a39", commits[0].SHA)
	assert.Equal(t, "alice", commits[0].Author)
	assert.Equal(t, "Add retry to client", commits[0].Message)
	assert.Equal(t, 16, commits[0].Additions)
	assert.Equal(t, 3, commits[0].Deletions)
	assert.Equal(t, 2, commits[0].FilesChanged)

	assert.Equal(t, "bob | ops", commits[1].Author)
	assert.Equal(t, "Update logo | assets", commits[1].Message)
	assert.Equal(t, 1, commits[1].Additions)
	assert.Equal(t, 2, commits[1].FilesChanged)
	assert.Equal(t, time.Date(2024, 6, 11, 12, 2, 11, 0, time.UTC), commits[1].Timestamp.UTC())

	assert.Equal(t, 0, commits[2].Churn())
	assert.Equal(t, 0, commits[2].FilesChanged)
}

func TestParseCommitLogEdgeCases(t *testing.T) {
	commits, err := ParseCommitLog(nil)
	require.NoError(t, err)
	assert.NotNil(t, commits)
	assert.Empty(t, commits)

	_, err = ParseCommitLog([]byte("--abc\x1falice\x1fyesterday\x1fmsg\n"))
	assert.ErrorContains(t, err, "invalid commit date")

	_, err = ParseCommitLog([]byte("--abc\n"))
	assert.ErrorContains(t, err, "malformed commit header")

	commits, err = ParseCommitLog([]byte("--abc\x1f\x1f2024-06-10T09:15:00Z\x1fanon\n"))
	require.NoError(t, err)
	assert.Equal(t, schema.UnknownAuthor, commits[0].Author)

	commits, err = ParseCommitLog([]byte("--abc\x1fA|B Corp\x1f2024-06-10T09:15:00Z\x1fpipe | in subject\n1\t2\tx.go\n"))
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "A|B Corp", commits[0].Author)
	assert.Equal(t, "pipe | in subject", commits[0].Message)
	assert.Equal(t, 3, commits[0].Churn())
}

func TestLocalHarvesterFetch(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetCommitLog", mock.Anything, "/repo", windowStart, windowEnd).Return(commitLogFixture, nil)

	activity, err := NewLocalHarvester(client, "/repo").Fetch(context.Background(), windowStart, windowEnd)
	require.NoError(t, err)
	assert.Len(t, activity.Commits, 3)
	assert.NotNil(t, activity.PullRequests)
	assert.Empty(t, activity.PullRequests)
	client.AssertExpectations(t)
}

func TestLocalHarvesterFetchError(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetCommitLog", mock.Anything, "/repo", mock.Anything, mock.Anything).Return(nil, errors.New("not a git repository"))

	_, err := NewLocalHarvester(client, "/repo").Fetch(context.Background(), windowStart, windowEnd)
	assert.ErrorContains(t, err, "not a git repository")
}
