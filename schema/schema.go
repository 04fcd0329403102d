package schema

import (
	"errors"
	"fmt"
	"time"
)

// CommitRecord is a single commit harvested from the activity source.
type CommitRecord struct {
	SHA          string    `json:"sha"`
	Author       string    `json:"author"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	FilesChanged int       `json:"files_changed"`
}

// PullRequestRecord is a single pull request harvested from the activity source.
type PullRequestRecord struct {
	Number         int        `json:"number"`
	Title          string     `json:"title"`
	Author         string     `json:"author"`
	State          string     `json:"state"`
	CreatedAt      time.Time  `json:"created_at"`
	MergedAt       *time.Time `json:"merged_at,omitempty"`
	Additions      int        `json:"additions"`
	Deletions      int        `json:"deletions"`
	ChangedFiles   int        `json:"changed_files"`
	ReviewComments int        `json:"review_comments"`
}

// Activity groups the records harvested for one window.
type Activity struct {
	Commits      []CommitRecord      `json:"commits"`
	PullRequests []PullRequestRecord `json:"pull_requests"`
}

// Churn returns the lines added plus lines deleted.
func (c CommitRecord) Churn() int {
	return c.Additions + c.Deletions
}

// ShortSHA returns the commit reference used in anomaly reports.
func (c CommitRecord) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// AuthorKey returns the developer key for the commit.
func (c CommitRecord) AuthorKey() string {
	return authorKey(c.Author)
}

// IsMerged reports whether the pull request has a merge time.
func (p PullRequestRecord) IsMerged() bool {
	return p.MergedAt != nil
}

// CycleTimeHours returns the hours between creation and merge.
// The second value is false when the pull request is not merged.
func (p PullRequestRecord) CycleTimeHours() (float64, bool) {
	if p.MergedAt == nil || p.CreatedAt.IsZero() {
		return 0, false
	}
	return p.MergedAt.Sub(p.CreatedAt).Hours(), true
}

// AuthorKey returns the developer key for the pull request.
func (p PullRequestRecord) AuthorKey() string {
	return authorKey(p.Author)
}

// Validate checks the commit invariants.
func (c CommitRecord) Validate() error {
	if c.SHA == "" {
		return errors.New("commit has empty sha")
	}
	if c.Additions < 0 || c.Deletions < 0 || c.FilesChanged < 0 {
		return fmt.Errorf("commit %s has negative line or file counts", c.ShortSHA())
	}
	return nil
}

// Validate checks the pull request invariants.
func (p PullRequestRecord) Validate() error {
	if p.Additions < 0 || p.Deletions < 0 || p.ChangedFiles < 0 || p.ReviewComments < 0 {
		return fmt.Errorf("pull request #%d has negative counts", p.Number)
	}
	if p.MergedAt != nil && p.MergedAt.Before(p.CreatedAt) {
		return fmt.Errorf("pull request #%d merged before it was created", p.Number)
	}
	return nil
}

func authorKey(author string) string {
	if author == "" {
		return UnknownAuthor
	}
	return author
}
