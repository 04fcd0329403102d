package schema

import "time"

// PipelineState is the record threaded through one pipeline run.
// It is owned by a single run and never shared across runs.
type PipelineState struct {
	RunID        string              `json:"run_id"`
	Command      string              `json:"command"`
	TimeRange    TimeRange           `json:"time_range"`
	TargetUser   string              `json:"target_user,omitempty"`
	Phase        Phase               `json:"phase"`
	WindowStart  time.Time           `json:"window_start"`
	WindowEnd    time.Time           `json:"window_end"`
	Commits      []CommitRecord      `json:"commits"`
	PullRequests []PullRequestRecord `json:"pull_requests"`
	Metrics      Metrics             `json:"metrics"`
	Anomalies    []Anomaly           `json:"anomalies"`
	CodeAnalysis string              `json:"code_analysis,omitempty"`
	Narrative    string              `json:"narrative,omitempty"`
	Summary      string              `json:"summary,omitempty"`
	Charts       []Chart             `json:"charts,omitempty"`
	Errors       []string            `json:"errors"`
	Timestamp    time.Time           `json:"timestamp"`

	harvestFailed bool
}

// NewPipelineState returns a state in the start phase with empty lists.
func NewPipelineState(runID, command string, timeRange TimeRange, targetUser string, now time.Time) *PipelineState {
	start, end := timeRange.Window(now)
	return &PipelineState{
		RunID:        runID,
		Command:      command,
		TimeRange:    timeRange,
		TargetUser:   targetUser,
		Phase:        PhaseStart,
		WindowStart:  start,
		WindowEnd:    end,
		Commits:      []CommitRecord{},
		PullRequests: []PullRequestRecord{},
		Metrics:      Metrics{Developers: map[string]DeveloperMetrics{}},
		Anomalies:    []Anomaly{},
		Errors:       []string{},
		Timestamp:    now,
	}
}

// AddError appends an error description.
func (s *PipelineState) AddError(err error) {
	if err == nil {
		return
	}
	s.Errors = append(s.Errors, err.Error())
}

// MarkHarvestFailed records that the harvest stage did not produce data.
func (s *PipelineState) MarkHarvestFailed() {
	s.harvestFailed = true
}

// HarvestFailed reports whether the harvest stage recorded an error.
func (s *PipelineState) HarvestFailed() bool {
	return s.harvestFailed
}

// Degraded reports whether any stage recorded an error.
func (s *PipelineState) Degraded() bool {
	return len(s.Errors) > 0
}

// Status returns "degraded" or "ok".
func (s *PipelineState) Status() string {
	if s.Degraded() {
		return "degraded"
	}
	return "ok"
}

// Chart is a rendered chart. Data is base64 encoded and opaque to the pipeline.
type Chart struct {
	Type        ChartType `json:"type"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	Data        string    `json:"data"`
}

// ChartInput is what the chart renderer receives.
// History is ordered oldest first.
type ChartInput struct {
	Metrics Metrics          `json:"metrics"`
	History []SnapshotRecord `json:"history"`
}

// DeveloperFocus is the per-developer section of a prompt.
type DeveloperFocus struct {
	Name     string            `json:"name"`
	Metrics  DeveloperMetrics  `json:"metrics"`
	Velocity DeveloperVelocity `json:"velocity"`
}

// PromptContext is the structured summary handed to the narrator.
// The narrator owns the wording.
type PromptContext struct {
	Kind             PromptKind        `json:"kind"`
	TimeRange        TimeRange         `json:"time_range"`
	Team             TeamMetrics       `json:"team"`
	Dora             DoraMetrics       `json:"dora"`
	CodeHealth       CodeHealthMetrics `json:"code_health"`
	ActiveDevelopers int               `json:"active_developers"`
	Anomalies        []Anomaly         `json:"anomalies"`
	CodeAnalysis     string            `json:"code_analysis,omitempty"`
	TargetUser       string            `json:"target_user,omitempty"`
	Focus            *DeveloperFocus   `json:"focus,omitempty"`
}
