// Package harvest fetches commits and pull requests for a time window.
package harvest

import (
	"context"
	"fmt"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// New builds the harvester selected by cfg. When store is not nil the result
// is wrapped with a cache keyed by source and window.
func New(ctx context.Context, cfg *contract.Config, client contract.GitClient, store contract.CacheStore) (contract.Harvester, error) {
	var (
		inner  contract.Harvester
		source string
	)
	switch cfg.Source {
	case schema.GitHubSource:
		gh, err := NewGitHubClient(cfg.GitHubToken, cfg.GitHubBaseURL)
		if err != nil {
			return nil, err
		}
		inner = NewGitHubHarvester(gh, cfg.GitHubOwner, cfg.GitHubRepo, cfg.Retries)
		source = fmt.Sprintf("github:%s/%s", cfg.GitHubOwner, cfg.GitHubRepo)
	case schema.LocalSource:
		inner = NewLocalHarvester(client, cfg.RepoPath)
		// Repo head is part of the identity so new commits invalidate entries.
		head, err := client.GetRepoHash(ctx, cfg.RepoPath)
		if err != nil {
			head = ""
		}
		source = fmt.Sprintf("local:%s:%s", cfg.RepoPath, head)
	default:
		return nil, fmt.Errorf("unsupported harvest source: %s", cfg.Source)
	}

	if store == nil {
		return inner, nil
	}
	return NewCachedHarvester(inner, store, source, cfg.CacheTTL), nil
}
