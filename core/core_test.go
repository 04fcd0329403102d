package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sampleActivity() schema.Activity {
	created := fixedNow.Add(-48 * time.Hour)
	merged := created.Add(5 * time.Hour)
	return schema.Activity{
		Commits: []schema.CommitRecord{
			{SHA: "aaaaaaa111", Author: "alice", Additions: 5, Deletions: 5, FilesChanged: 2},
			{SHA: "bbbbbbb222", Author: "bob", Additions: 8, Deletions: 2, FilesChanged: 25},
			{SHA: "ccccccc333", Author: "alice", Additions: 150, Deletions: 50, FilesChanged: 4},
		},
		PullRequests: []schema.PullRequestRecord{
			{Number: 1, Author: "alice", State: "closed", CreatedAt: created, MergedAt: &merged},
			{Number: 2, Author: "bob", State: "open", CreatedAt: created},
		},
	}
}

func newTestPipeline(h contract.Harvester, opts ...Option) *Pipeline {
	base := []Option{WithClock(fixedClock), WithIDGenerator(func() string { return "run-1" })}
	return NewPipeline(h, append(base, opts...)...)
}

func TestRunHarvestFailure(t *testing.T) {
	h := &contract.MockHarvester{}
	partial := schema.Activity{Commits: []schema.CommitRecord{{SHA: "partial1"}}}
	h.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(partial, errors.New("connection refused"))

	state := newTestPipeline(h).Run(context.Background(), "weekly report", schema.Weekly, "")

	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "data source error")
	assert.Contains(t, state.Errors[0], "connection refused")
	assert.Empty(t, state.Commits)
	assert.NotNil(t, state.Commits)
	assert.Empty(t, state.PullRequests)
	assert.Empty(t, state.Anomalies)
	assert.Equal(t, schema.PhaseDone, state.Phase)
	assert.True(t, state.Degraded())
	assert.True(t, state.HarvestFailed())
	assert.Equal(t, 0, state.Metrics.Team.TotalCommits)
	require.NotNil(t, state.Metrics.Dora)
	assert.NotEmpty(t, state.Summary, "narrate stage still runs")
}

func TestRunEmptyActivity(t *testing.T) {
	for _, tr := range schema.AllTimeRanges {
		t.Run(string(tr), func(t *testing.T) {
			h := &contract.MockHarvester{}
			h.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(schema.Activity{}, nil)

			state := newTestPipeline(h).Run(context.Background(), "report", tr, "")

			assert.Empty(t, state.Errors)
			assert.False(t, state.Degraded())
			assert.Empty(t, state.Metrics.Developers)
			assert.Equal(t, schema.TeamMetrics{}, state.Metrics.Team)
			assert.Equal(t, schema.DoraMetrics{}, *state.Metrics.Dora)
			assert.Equal(t, schema.CodeHealthMetrics{}, *state.Metrics.CodeHealth)
			assert.NotNil(t, state.Anomalies)
			assert.Empty(t, state.Anomalies)
		})
	}
}

func TestRunWindow(t *testing.T) {
	tests := []struct {
		timeRange schema.TimeRange
		lookback  time.Duration
	}{
		{schema.Daily, 24 * time.Hour},
		{schema.Weekly, 7 * 24 * time.Hour},
		{schema.Monthly, 30 * 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(string(tt.timeRange), func(t *testing.T) {
			h := &contract.MockHarvester{}
			h.On("Fetch", mock.Anything, fixedNow.Add(-tt.lookback), fixedNow).Return(schema.Activity{}, nil).Once()

			state := newTestPipeline(h).Run(context.Background(), "report", tt.timeRange, "")
			assert.Equal(t, fixedNow.Add(-tt.lookback), state.WindowStart)
			assert.Equal(t, fixedNow, state.WindowEnd)
			assert.Equal(t, fixedNow, state.Timestamp)
			h.AssertExpectations(t)
		})
	}
}

func TestRunFullPipeline(t *testing.T) {
	h := &contract.MockHarvester{}
	h.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(sampleActivity(), nil)

	n := &contract.MockNarrator{}
	n.On("Generate", mock.Anything, mock.MatchedBy(func(pc schema.PromptContext) bool {
		return pc.Kind == schema.AnalysisPrompt
	})).Return("analysis text", nil).Once()
	n.On("Generate", mock.Anything, mock.MatchedBy(func(pc schema.PromptContext) bool {
		return pc.Kind == schema.NarrativePrompt && pc.CodeAnalysis == "analysis text"
	})).Return("narrative text", nil).Once()

	history := []schema.SnapshotRecord{{ID: 1}, {ID: 2}}
	store := &contract.MockReportStore{}
	store.On("RecentSnapshots", schema.HistoryLimit).Return(history, nil)
	store.On("SaveConversation", schema.DiffAnalystAgent, mock.Anything, "analysis text").Return(nil).Once()
	store.On("SaveConversation", schema.InsightNarratorAgent, mock.Anything, "narrative text").Return(nil).Once()
	store.On("SaveMetricsSnapshot", mock.Anything, schema.Weekly).Return(nil).Once()

	charts := &contract.MockChartRenderer{}
	rendered := []schema.Chart{{Type: schema.CodeHealthChart, Title: "Code Health Score", Data: "PGh0bWw+"}}
	charts.On("Render", mock.Anything, mock.MatchedBy(func(in schema.ChartInput) bool {
		return len(in.History) == 2 && in.Metrics.Team.TotalCommits == 3
	})).Return(rendered, nil).Once()

	state := newTestPipeline(h, WithNarrator(n), WithReportStore(store), WithChartRenderer(charts)).
		Run(context.Background(), "weekly report", schema.Weekly, "")

	assert.Empty(t, state.Errors)
	assert.Equal(t, "run-1", state.RunID)
	assert.Equal(t, "weekly report", state.Command)
	assert.Equal(t, "analysis text", state.CodeAnalysis)
	assert.Equal(t, "narrative text", state.Narrative)
	assert.Equal(t, rendered, state.Charts)
	assert.Equal(t, 3, state.Metrics.Team.TotalCommits)
	assert.Equal(t, 1, state.Metrics.Dora.DeploymentFrequency)
	assert.InDelta(t, 5.0, state.Metrics.Dora.LeadTimeHours, 1e-9)
	assert.Equal(t, 2, state.Metrics.Developers["alice"].Commits)
	assert.InDelta(t, 100.0, state.Metrics.Velocity["alice"].PRMergeRate, 1e-9)
	assert.InDelta(t, 0.0, state.Metrics.Velocity["bob"].PRMergeRate, 1e-9)

	require.Len(t, state.Anomalies, 1)
	assert.Equal(t, schema.ManyFilesAnomaly, state.Anomalies[0].Type)
	assert.Equal(t, "bbbbbbb", state.Anomalies[0].Commit)

	assert.Equal(t, "Team delivered 3 commits with 1 merged PRs. Code health risk level: Low. Average cycle time: 5.0 hours.", state.Summary)

	n.AssertExpectations(t)
	store.AssertExpectations(t)
	charts.AssertExpectations(t)
}

func TestRunGenerationFailuresAreIndependent(t *testing.T) {
	h := &contract.MockHarvester{}
	h.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(sampleActivity(), nil)

	n := &contract.MockNarrator{}
	n.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	charts := &contract.MockChartRenderer{}
	charts.On("Render", mock.Anything, mock.Anything).Return([]schema.Chart{{Type: schema.TrendsChart}}, nil)

	state := newTestPipeline(h, WithNarrator(n), WithChartRenderer(charts)).
		Run(context.Background(), "report", schema.Daily, "")

	require.Len(t, state.Errors, 2)
	assert.Contains(t, state.Errors[0], "generation error in narrate stage: code analysis: quota exceeded")
	assert.Contains(t, state.Errors[1], "narrative: quota exceeded")
	assert.Len(t, state.Charts, 1)
	assert.Empty(t, state.Narrative)
	assert.NotEmpty(t, state.Summary)
	assert.False(t, state.HarvestFailed())
}

func TestRunPersistenceFailuresAreNotErrors(t *testing.T) {
	h := &contract.MockHarvester{}
	h.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(sampleActivity(), nil)

	store := &contract.MockReportStore{}
	store.On("RecentSnapshots", mock.Anything).Return(nil, errors.New("db locked"))
	store.On("SaveMetricsSnapshot", mock.Anything, mock.Anything).Return(errors.New("db locked"))

	charts := &contract.MockChartRenderer{}
	charts.On("Render", mock.Anything, mock.MatchedBy(func(in schema.ChartInput) bool {
		return in.History == nil
	})).Return([]schema.Chart{}, nil)

	state := newTestPipeline(h, WithReportStore(store), WithChartRenderer(charts)).
		Run(context.Background(), "report", schema.Weekly, "")
	assert.Empty(t, state.Errors)
	store.AssertExpectations(t)
}

func TestRunMalformedInputIsAnalysisError(t *testing.T) {
	h := &contract.MockHarvester{}
	bad := schema.Activity{Commits: []schema.CommitRecord{{SHA: "neg0001", Additions: -3}}}
	h.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(bad, nil)

	state := newTestPipeline(h).Run(context.Background(), "report", schema.Weekly, "")
	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "analysis error in analyze stage: aggregate metrics")
	assert.Empty(t, state.Anomalies)
	assert.Equal(t, schema.PhaseDone, state.Phase)
}

type panickyHarvester struct{}

func (panickyHarvester) Fetch(context.Context, time.Time, time.Time) (schema.Activity, error) {
	panic("nil pointer somewhere")
}

func TestRunRecoversFromPanics(t *testing.T) {
	state := newTestPipeline(panickyHarvester{}).Run(context.Background(), "report", schema.Weekly, "")
	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "data source error in harvest stage: panic: nil pointer somewhere")
	assert.Equal(t, schema.PhaseDone, state.Phase)
}

func TestRunWithoutHarvester(t *testing.T) {
	state := newTestPipeline(nil).Run(context.Background(), "report", schema.Weekly, "")
	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "no harvester configured")
	assert.True(t, state.HarvestFailed())
}

type recordingObserver struct {
	mu     sync.Mutex
	stages []schema.Stage
	failed []schema.Stage
	runs   int
}

func (o *recordingObserver) ObserveStage(stage schema.Stage, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
	if err != nil {
		o.failed = append(o.failed, stage)
	}
}

func (o *recordingObserver) ObserveRun(*schema.PipelineState, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs++
}

func TestRunStageOrderAndObserver(t *testing.T) {
	h := &contract.MockHarvester{}
	h.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(schema.Activity{}, errors.New("timeout"))
	obs := &recordingObserver{}

	newTestPipeline(h, WithObserver(obs)).Run(context.Background(), "report", schema.Weekly, "")

	assert.Equal(t, []schema.Stage{schema.StageHarvest, schema.StageAnalyze, schema.StageNarrate}, obs.stages)
	assert.Equal(t, []schema.Stage{schema.StageHarvest}, obs.failed)
	assert.Equal(t, 1, obs.runs)
}

type staticHarvester struct{ activity schema.Activity }

func (s staticHarvester) Fetch(context.Context, time.Time, time.Time) (schema.Activity, error) {
	return s.activity, nil
}

func TestConcurrentRunsOwnTheirState(t *testing.T) {
	var counter int
	var mu sync.Mutex
	p := NewPipeline(staticHarvester{activity: sampleActivity()}, WithIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return fmt.Sprintf("run-%d", counter)
	}))

	const runs = 8
	states := make([]*schema.PipelineState, runs)
	var wg sync.WaitGroup
	for i := range runs {
		wg.Go(func() {
			states[i] = p.Run(context.Background(), "report", schema.Weekly, "")
		})
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, s := range states {
		require.NotNil(t, s)
		assert.Empty(t, s.Errors)
		assert.Equal(t, 3, s.Metrics.Team.TotalCommits)
		seen[s.RunID] = true
	}
	assert.Len(t, seen, runs)
}

func TestRunPassesRunIDInContext(t *testing.T) {
	h := &contract.MockHarvester{}
	h.On("Fetch", mock.MatchedBy(func(ctx context.Context) bool {
		return RunIDFromContext(ctx) == "run-1"
	}), mock.Anything, mock.Anything).Return(schema.Activity{}, nil).Once()

	newTestPipeline(h).Run(context.Background(), "report", schema.Weekly, "")
	h.AssertExpectations(t)
	assert.Empty(t, RunIDFromContext(context.Background()))
}
