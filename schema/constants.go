package schema

import "time"

// Custom string types for type safety.
type (
	// TimeRange represents the reporting window requested by the caller.
	TimeRange string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for stores.
	DatabaseBackend string

	// HarvestSource represents where activity records come from.
	HarvestSource string

	// NarratorProvider represents the text generation backend.
	NarratorProvider string

	// Phase represents the last completed state of a pipeline run.
	Phase string

	// Stage represents a pipeline stage name.
	Stage string

	// AnomalyType represents the kind of unusual commit that was flagged.
	AnomalyType string

	// RiskLevel represents how serious an anomaly is.
	RiskLevel string

	// ChartType represents the chart produced by the renderer.
	ChartType string

	// PromptKind represents which narration step a prompt is built for.
	PromptKind string
)

// All time ranges supported.
const (
	Daily   TimeRange = "daily"
	Weekly  TimeRange = "weekly" // default
	Monthly TimeRange = "monthly"
)

// All output modes supported.
const (
	TextOut     OutputMode = "text" // default
	JSONOut     OutputMode = "json"
	CSVOut      OutputMode = "csv"
	MarkdownOut OutputMode = "markdown"
	HTMLOut     OutputMode = "html"
	ParquetOut  OutputMode = "parquet" // export only
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	MemoryBackend     DatabaseBackend = "memory" // cache only
	NoneBackend       DatabaseBackend = "none"
)

// All harvest sources supported.
const (
	GitHubSource HarvestSource = "github" // default
	LocalSource  HarvestSource = "local"
)

// All narrator providers supported.
const (
	OpenAIProvider  NarratorProvider = "openai"
	GeminiProvider  NarratorProvider = "gemini"
	OfflineProvider NarratorProvider = "offline" // default
)

// Pipeline phases, strictly linear.
const (
	PhaseStart     Phase = "start"
	PhaseHarvested Phase = "harvested"
	PhaseAnalyzed  Phase = "analyzed"
	PhaseNarrated  Phase = "narrated"
	PhaseDone      Phase = "done"
)

// Pipeline stages.
const (
	StageHarvest Stage = "harvest"
	StageAnalyze Stage = "analyze"
	StageNarrate Stage = "narrate"
)

// Anomaly types.
const (
	HighChurnAnomaly AnomalyType = "high_churn"
	ManyFilesAnomaly AnomalyType = "many_files_changed"
)

// Risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Chart types.
const (
	DeveloperActivityChart ChartType = "developer_activity"
	CodeHealthChart        ChartType = "code_health"
	TrendsChart            ChartType = "trends"
)

// Prompt kinds.
const (
	AnalysisPrompt  PromptKind = "analysis"
	NarrativePrompt PromptKind = "narrative"
)

// Agent names recorded with stored conversations.
const (
	DiffAnalystAgent     = "diff_analyst"
	InsightNarratorAgent = "insight_narrator"
)

// UnknownAuthor is the developer key used when a record has no author.
const UnknownAuthor = "unknown"

// ManyFilesThreshold is the file count a commit must exceed to be flagged.
const ManyFilesThreshold = 20

// ChurnSigmaMultiplier is the number of standard deviations above the mean
// a commit's churn must exceed to be flagged.
const ChurnSigmaMultiplier = 2.0

// HistoryLimit is the number of stored snapshots fed to the trends chart.
const HistoryLimit = 10

// ConversationTextLimit caps stored prompt and response lengths.
const ConversationTextLimit = 1000

// AllTimeRanges lists the supported time ranges in ascending length.
var AllTimeRanges = []TimeRange{Daily, Weekly, Monthly}

// ValidTimeRanges lists all valid time ranges.
var ValidTimeRanges = map[TimeRange]struct{}{
	Daily:   {},
	Weekly:  {},
	Monthly: {},
}

// ValidOutputModes lists all valid report output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:     {},
	JSONOut:     {},
	CSVOut:      {},
	MarkdownOut: {},
	HTMLOut:     {},
}

// ValidExportModes lists all valid snapshot export modes.
var ValidExportModes = map[OutputMode]struct{}{
	JSONOut:    {},
	CSVOut:     {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	MemoryBackend:     {},
	NoneBackend:       {},
}

// ValidReportBackends lists all valid report store backends.
var ValidReportBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidHarvestSources lists all valid harvest sources.
var ValidHarvestSources = map[HarvestSource]struct{}{
	GitHubSource: {},
	LocalSource:  {},
}

// ValidNarratorProviders lists all valid narrator providers.
var ValidNarratorProviders = map[NarratorProvider]struct{}{
	OpenAIProvider:  {},
	GeminiProvider:  {},
	OfflineProvider: {},
}

// Lookback returns the window length for the time range.
// Unrecognized values fall back to the monthly window.
func (t TimeRange) Lookback() time.Duration {
	switch t {
	case Daily:
		return 24 * time.Hour
	case Weekly:
		return 7 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// Window returns the [start, end] interval ending at now.
func (t TimeRange) Window(now time.Time) (time.Time, time.Time) {
	return now.Add(-t.Lookback()), now
}

// IsValid reports whether the time range is supported.
func (t TimeRange) IsValid() bool {
	_, ok := ValidTimeRanges[t]
	return ok
}
