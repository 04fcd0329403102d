// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/devpulse/schema"
)

// GitClient defines the git operations needed by the local harvester.
// This allows harvesting to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns the combined output.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetCommitLog returns the raw numstat commit log between the two times.
	GetCommitLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error)
}

// Harvester fetches raw activity records for a window.
// Implementations return a non-nil error when the fetch failed or is partial.
type Harvester interface {
	Fetch(ctx context.Context, windowStart, windowEnd time.Time) (schema.Activity, error)
}

// Narrator turns a structured prompt context into text.
type Narrator interface {
	Generate(ctx context.Context, prompt schema.PromptContext) (text string, err error)
}

// PromptRenderer renders the wording sent for a prompt context. Narrators that
// implement it let the pipeline store the exact prompt with the conversation.
type PromptRenderer interface {
	RenderPrompt(prompt schema.PromptContext) (string, error)
}

// ChartRenderer turns metrics into opaque chart payloads.
type ChartRenderer interface {
	Render(ctx context.Context, input schema.ChartInput) ([]schema.Chart, error)
}

// RunObserver receives timing and outcome events from pipeline runs.
type RunObserver interface {
	ObserveStage(stage schema.Stage, duration time.Duration, err error)
	ObserveRun(state *schema.PipelineState, duration time.Duration)
}

// CacheManager defines the interface for managing stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetActivityStore() CacheStore
	GetReportStore() ReportStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// ReportStore defines the interface for persisting report snapshots and
// narrator conversations.
type ReportStore interface {
	// SaveMetricsSnapshot stores the metrics for one run
	SaveMetricsSnapshot(metrics schema.Metrics, timeRange schema.TimeRange) error

	// SaveConversation stores one prompt and response pair
	SaveConversation(agentName, prompt, response string) error

	// RecentSnapshots returns up to limit snapshots, oldest first
	RecentSnapshots(limit int) ([]schema.SnapshotRecord, error)

	// GetAllSnapshots returns every stored snapshot, oldest first
	GetAllSnapshots() ([]schema.SnapshotRecord, error)

	// GetAllConversations returns every stored conversation, oldest first
	GetAllConversations() ([]schema.ConversationRecord, error)

	// GetStatus returns status information about the report store
	GetStatus() (schema.ReportStatus, error)

	// Close closes the underlying connection
	Close() error
}
