package harvest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// githubPageSize is the maximum page size the GitHub REST API accepts.
const githubPageSize = 100

// GitHubHarvester reads commits and pull requests through the GitHub REST API.
type GitHubHarvester struct {
	client  *github.Client
	owner   string
	repo    string
	retries int
}

var _ contract.Harvester = &GitHubHarvester{} // Compile-time check

// NewGitHubClient creates an API client. An empty baseURL targets api.github.com.
func NewGitHubClient(token, baseURL string) (*github.Client, error) {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", baseURL, err)
		}
		client.BaseURL = u
	}
	return client, nil
}

// NewGitHubHarvester creates a harvester for owner/repo. Failed calls are
// retried up to retries times.
func NewGitHubHarvester(client *github.Client, owner, repo string, retries int) *GitHubHarvester {
	return &GitHubHarvester{client: client, owner: owner, repo: repo, retries: retries}
}

// Fetch implements the Harvester interface.
func (h *GitHubHarvester) Fetch(ctx context.Context, windowStart, windowEnd time.Time) (schema.Activity, error) {
	commits, err := h.fetchCommits(ctx, windowStart, windowEnd)
	if err != nil {
		return schema.Activity{}, fmt.Errorf("fetch commits for %s/%s: %w", h.owner, h.repo, err)
	}
	prs, err := h.fetchPullRequests(ctx, windowStart, windowEnd)
	if err != nil {
		return schema.Activity{}, fmt.Errorf("fetch pull requests for %s/%s: %w", h.owner, h.repo, err)
	}
	return schema.Activity{Commits: commits, PullRequests: prs}, nil
}

func (h *GitHubHarvester) fetchCommits(ctx context.Context, start, end time.Time) ([]schema.CommitRecord, error) {
	opts := &github.CommitsListOptions{
		Since:       start,
		Until:       end,
		ListOptions: github.ListOptions{PerPage: githubPageSize},
	}

	var listed []*github.RepositoryCommit
	for {
		var (
			page []*github.RepositoryCommit
			resp *github.Response
		)
		err := h.call(ctx, func() (*github.Response, error) {
			var err error
			page, resp, err = h.client.Repositories.ListCommits(ctx, h.owner, h.repo, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		listed = append(listed, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	commits := make([]schema.CommitRecord, 0, len(listed))
	for _, item := range listed {
		var detail *github.RepositoryCommit
		err := h.call(ctx, func() (*github.Response, error) {
			var (
				resp *github.Response
				err  error
			)
			detail, resp, err = h.client.Repositories.GetCommit(ctx, h.owner, h.repo, item.GetSHA(), nil)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		commits = append(commits, toCommitRecord(detail))
	}
	return commits, nil
}

func (h *GitHubHarvester) fetchPullRequests(ctx context.Context, start, end time.Time) ([]schema.PullRequestRecord, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: githubPageSize},
	}

	var kept []*github.PullRequest
	for done := false; !done; {
		var (
			page []*github.PullRequest
			resp *github.Response
		)
		err := h.call(ctx, func() (*github.Response, error) {
			var err error
			page, resp, err = h.client.PullRequests.List(ctx, h.owner, h.repo, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		for _, pr := range page {
			// Sorted by update time, so nothing older can be in range.
			if pr.GetUpdatedAt().Time.Before(start) {
				done = true
				break
			}
			created := pr.GetCreatedAt().Time
			if !created.Before(start) && !created.After(end) {
				kept = append(kept, pr)
			}
		}
		if resp.NextPage == 0 {
			done = true
		}
		opts.Page = resp.NextPage
	}

	prs := make([]schema.PullRequestRecord, 0, len(kept))
	for _, item := range kept {
		var detail *github.PullRequest
		err := h.call(ctx, func() (*github.Response, error) {
			var (
				resp *github.Response
				err  error
			)
			detail, resp, err = h.client.PullRequests.Get(ctx, h.owner, h.repo, item.GetNumber())
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		prs = append(prs, toPullRequestRecord(detail))
	}
	return prs, nil
}

// call runs one API request with retries. Rate limits, server errors and
// transport failures are retried; other client errors are not.
func (h *GitHubHarvester) call(ctx context.Context, op func() (*github.Response, error)) error {
	return contract.Retry(ctx, h.retries, func() error {
		resp, err := op()
		if err == nil {
			return nil
		}
		if retryable(resp, err) {
			contract.Logger.WithError(err).Debug("Retrying GitHub request")
			return err
		}
		return contract.Permanent(err)
	})
}

func retryable(resp *github.Response, err error) bool {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return true
	}
	if resp == nil || resp.Response == nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}

func toCommitRecord(c *github.RepositoryCommit) schema.CommitRecord {
	author := c.GetAuthor().GetLogin()
	if author == "" {
		author = c.GetCommit().GetAuthor().GetName()
	}
	if author == "" {
		author = schema.UnknownAuthor
	}
	ts := c.GetCommit().GetAuthor().GetDate().Time
	if ts.IsZero() {
		ts = c.GetCommit().GetCommitter().GetDate().Time
	}
	return schema.CommitRecord{
		SHA:          c.GetSHA(),
		Author:       author,
		Message:      c.GetCommit().GetMessage(),
		Timestamp:    ts,
		Additions:    c.GetStats().GetAdditions(),
		Deletions:    c.GetStats().GetDeletions(),
		FilesChanged: len(c.Files),
	}
}

func toPullRequestRecord(pr *github.PullRequest) schema.PullRequestRecord {
	author := pr.GetUser().GetLogin()
	if author == "" {
		author = schema.UnknownAuthor
	}
	record := schema.PullRequestRecord{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Author:         author,
		State:          pr.GetState(),
		CreatedAt:      pr.GetCreatedAt().Time,
		Additions:      pr.GetAdditions(),
		Deletions:      pr.GetDeletions(),
		ChangedFiles:   pr.GetChangedFiles(),
		ReviewComments: pr.GetReviewComments(),
	}
	if pr.MergedAt != nil {
		merged := pr.MergedAt.Time
		record.MergedAt = &merged
	}
	return record
}
