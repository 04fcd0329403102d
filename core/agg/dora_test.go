package agg

import (
	"testing"
	"time"

	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDoraMergedAndOpen(t *testing.T) {
	prs := []schema.PullRequestRecord{
		{Number: 1, CreatedAt: baseTime, MergedAt: mergedAt(5 * time.Hour)},
		{Number: 2, CreatedAt: baseTime, State: "open"},
	}
	dora, err := CalculateDora(nil, prs)
	require.NoError(t, err)
	assert.Equal(t, 1, dora.DeploymentFrequency)
	assert.InDelta(t, 5.0, dora.LeadTimeHours, 1e-9)
	assert.Zero(t, dora.ChangeFailureRate)
	assert.Zero(t, dora.MTTRHours)
	assert.ElementsMatch(t, []string{"change_failure_rate", "mttr_hours"}, dora.PlaceholderFields())
}

func TestCalculateDoraCountsOnlyMerged(t *testing.T) {
	prs := samplePRs()
	dora, err := CalculateDora(sampleCommits(), prs)
	require.NoError(t, err)

	var merged int
	for _, pr := range prs {
		if pr.MergedAt != nil {
			merged++
		}
	}
	assert.Equal(t, merged, dora.DeploymentFrequency)
	assert.InDelta(t, 4.0, dora.LeadTimeHours, 1e-9)
}

func TestCalculateDoraEmpty(t *testing.T) {
	dora, err := CalculateDora(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.DoraMetrics{}, dora)
}

func TestMergeDoraKeepsAggregation(t *testing.T) {
	m, err := AggregateMetrics(sampleCommits(), samplePRs())
	require.NoError(t, err)
	team := m.Team
	devs := m.Developers

	dora, err := CalculateDora(sampleCommits(), samplePRs())
	require.NoError(t, err)
	MergeDora(&m, dora)
	require.NotNil(t, m.Dora)
	assert.Equal(t, dora, *m.Dora)
	assert.Equal(t, team, m.Team)
	assert.Equal(t, devs, m.Developers)

	MergeDora(&m, dora)
	assert.Equal(t, dora, *m.Dora)
	assert.Equal(t, team, m.Team)

	replaced := schema.DoraMetrics{DeploymentFrequency: 9}
	MergeDora(&m, replaced)
	assert.Equal(t, 9, m.Dora.DeploymentFrequency)
	// The caller's value is copied.
	replaced.DeploymentFrequency = 10
	assert.Equal(t, 9, m.Dora.DeploymentFrequency)
}
