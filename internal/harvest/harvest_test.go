package harvest

import (
	"context"
	"testing"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	gh, err := New(ctx, &contract.Config{Source: schema.GitHubSource, GitHubOwner: "octo", GitHubRepo: "hello"}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &GitHubHarvester{}, gh)

	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("deadbeef", nil)
	store := &contract.MockCacheStore{}
	local, err := New(ctx, &contract.Config{Source: schema.LocalSource, RepoPath: "/repo"}, client, store)
	require.NoError(t, err)
	cached, ok := local.(*CachedHarvester)
	require.True(t, ok)
	assert.Equal(t, "local:/repo:deadbeef", cached.source)
	assert.Equal(t, contract.DefaultCacheTTL, cached.ttl)

	_, err = New(ctx, &contract.Config{Source: "svn"}, nil, nil)
	assert.Error(t, err)
}
