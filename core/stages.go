package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/huangsam/devpulse/core/agg"
	"github.com/huangsam/devpulse/core/algo"
	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

var errNoHarvester = errors.New("no harvester configured")

// harvest fills Commits and PullRequests. A failed or partial fetch leaves
// both lists empty.
func (p *Pipeline) harvest(ctx context.Context, state *schema.PipelineState) error {
	if p.harvester == nil {
		state.MarkHarvestFailed()
		return newStageError(schema.StageHarvest, ErrDataSource, errNoHarvester)
	}

	activity, err := p.harvester.Fetch(ctx, state.WindowStart, state.WindowEnd)
	if err != nil {
		state.MarkHarvestFailed()
		state.Commits = []schema.CommitRecord{}
		state.PullRequests = []schema.PullRequestRecord{}
		return newStageError(schema.StageHarvest, ErrDataSource, err)
	}

	if activity.Commits != nil {
		state.Commits = activity.Commits
	}
	if activity.PullRequests != nil {
		state.PullRequests = activity.PullRequests
	}
	return nil
}

// analyze fills Metrics and Anomalies. It only reads the state and calls pure
// functions. Aggregation and DORA run in parallel and are merged after both
// complete.
func analyze(state *schema.PipelineState) error {
	var (
		wg      sync.WaitGroup
		metrics schema.Metrics
		dora    schema.DoraMetrics
		aggErr  error
		doraErr error
	)
	wg.Go(func() {
		metrics, aggErr = agg.AggregateMetrics(state.Commits, state.PullRequests)
	})
	wg.Go(func() {
		dora, doraErr = agg.CalculateDora(state.Commits, state.PullRequests)
	})
	wg.Wait()

	var result *multierror.Error
	if aggErr != nil {
		result = multierror.Append(result, newStageError(schema.StageAnalyze, ErrAnalysis, fmt.Errorf("aggregate metrics: %w", aggErr)))
	}
	if doraErr != nil {
		result = multierror.Append(result, newStageError(schema.StageAnalyze, ErrAnalysis, fmt.Errorf("dora metrics: %w", doraErr)))
	}
	if result != nil {
		return result.ErrorOrNil()
	}

	agg.MergeDora(&metrics, dora)
	health := agg.CodeHealth(state.Commits)
	metrics.CodeHealth = &health
	metrics.Velocity = agg.DeveloperVelocity(metrics.Developers)

	state.Metrics = metrics
	state.Anomalies = algo.DetectAnomalies(state.Commits, metrics.Team)
	return nil
}

// narrate fills CodeAnalysis, Narrative, Charts and Summary. Each generation
// step fails on its own; persistence failures are logged only.
func (p *Pipeline) narrate(ctx context.Context, state *schema.PipelineState) error {
	var result *multierror.Error
	fail := func(step string, err error) {
		result = multierror.Append(result, newStageError(schema.StageNarrate, ErrGeneration, fmt.Errorf("%s: %w", step, err)))
	}

	if p.narrator != nil {
		analysisPrompt := BuildPromptContext(state, schema.AnalysisPrompt)
		if text, err := p.narrator.Generate(ctx, analysisPrompt); err != nil {
			fail("code analysis", err)
		} else {
			state.CodeAnalysis = text
			p.saveConversation(schema.DiffAnalystAgent, analysisPrompt, text)
		}

		narrativePrompt := BuildPromptContext(state, schema.NarrativePrompt)
		if text, err := p.narrator.Generate(ctx, narrativePrompt); err != nil {
			fail("narrative", err)
		} else {
			state.Narrative = text
			p.saveConversation(schema.InsightNarratorAgent, narrativePrompt, text)
		}
	}

	if p.charts != nil {
		input := schema.ChartInput{Metrics: state.Metrics, History: p.recentHistory()}
		if charts, err := p.charts.Render(ctx, input); err != nil {
			fail("charts", err)
		} else {
			state.Charts = charts
		}
	}

	p.saveSnapshot(state)
	state.Summary = ExecutiveSummary(state.Metrics, state.Anomalies)
	return result.ErrorOrNil()
}

// recentHistory returns stored snapshots for the trends chart.
func (p *Pipeline) recentHistory() []schema.SnapshotRecord {
	if p.store == nil {
		return nil
	}
	history, err := p.store.RecentSnapshots(schema.HistoryLimit)
	if err != nil {
		contract.LogWarn("Failed to load snapshot history", err)
		return nil
	}
	return history
}

func (p *Pipeline) saveSnapshot(state *schema.PipelineState) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveMetricsSnapshot(state.Metrics, state.TimeRange); err != nil {
		contract.LogWarn("Failed to save metrics snapshot", err)
	}
}

func (p *Pipeline) saveConversation(agent string, prompt schema.PromptContext, response string) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveConversation(agent, p.promptText(prompt), response); err != nil {
		contract.LogWarn("Failed to save conversation", err)
	}
}

// promptText returns the wording the narrator used, or the structured
// context as JSON when the narrator does not expose it.
func (p *Pipeline) promptText(prompt schema.PromptContext) string {
	if r, ok := p.narrator.(contract.PromptRenderer); ok {
		if text, err := r.RenderPrompt(prompt); err == nil {
			return text
		}
	}
	data, err := json.Marshal(prompt)
	if err != nil {
		return string(prompt.Kind)
	}
	return string(data)
}
