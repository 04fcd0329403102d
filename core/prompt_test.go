package core

import (
	"context"
	"testing"

	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzedState(t *testing.T, targetUser string) *schema.PipelineState {
	t.Helper()
	state := newTestPipeline(staticHarvester{activity: sampleActivity()}).
		Run(context.Background(), "report", schema.Weekly, targetUser)
	require.Empty(t, state.Errors)
	return state
}

func TestBuildPromptContext(t *testing.T) {
	state := analyzedState(t, "")
	state.CodeAnalysis = "prior analysis"

	pc := BuildPromptContext(state, schema.AnalysisPrompt)
	assert.Equal(t, schema.AnalysisPrompt, pc.Kind)
	assert.Equal(t, schema.Weekly, pc.TimeRange)
	assert.Equal(t, 3, pc.Team.TotalCommits)
	assert.Equal(t, 1, pc.Dora.DeploymentFrequency)
	assert.Equal(t, 2, pc.ActiveDevelopers)
	assert.Len(t, pc.Anomalies, 1)
	assert.Empty(t, pc.CodeAnalysis, "analysis prompt does not include prior text")
	assert.Nil(t, pc.Focus)

	narrative := BuildPromptContext(state, schema.NarrativePrompt)
	assert.Equal(t, "prior analysis", narrative.CodeAnalysis)

	pc.Anomalies[0].Message = "changed"
	assert.NotEqual(t, "changed", state.Anomalies[0].Message)
}

func TestBuildPromptContextFocus(t *testing.T) {
	state := analyzedState(t, "alice")
	pc := BuildPromptContext(state, schema.NarrativePrompt)
	require.NotNil(t, pc.Focus)
	assert.Equal(t, "alice", pc.Focus.Name)
	assert.Equal(t, 2, pc.Focus.Metrics.Commits)
	assert.Equal(t, 210, pc.Focus.Velocity.CodeVelocity)

	unknown := analyzedState(t, "mallory")
	assert.Nil(t, BuildPromptContext(unknown, schema.NarrativePrompt).Focus)
	assert.Equal(t, "mallory", BuildPromptContext(unknown, schema.NarrativePrompt).TargetUser)
}
