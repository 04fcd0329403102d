package agg

import (
	"math"
	"testing"

	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
)

func TestCodeHealth(t *testing.T) {
	commits := []schema.CommitRecord{
		{SHA: "h1", Additions: 10, Deletions: 0},
		{SHA: "h2", Additions: 10, Deletions: 10},
		{SHA: "h3", Additions: 20, Deletions: 10},
	}
	h := CodeHealth(commits)
	assert.Equal(t, 60, h.TotalChurn)
	assert.Equal(t, 40, h.Additions)
	assert.Equal(t, 20, h.Deletions)
	assert.InDelta(t, 20.0, h.ChurnRate, 1e-9)
	assert.InDelta(t, 20.0, h.CommitSizeAvg, 1e-9)
	assert.InDelta(t, math.Sqrt(200.0/2.0), h.CommitSizeStd, 1e-9)
	assert.InDelta(t, 0.5, h.RefactorRatio, 1e-9)
}

func TestCodeHealthEdgeCases(t *testing.T) {
	assert.Equal(t, schema.CodeHealthMetrics{}, CodeHealth(nil))

	single := CodeHealth([]schema.CommitRecord{{SHA: "s", Deletions: 4}})
	assert.Zero(t, single.CommitSizeStd)
	assert.Zero(t, single.RefactorRatio)
	assert.Equal(t, 4, single.TotalChurn)
}

func TestDeveloperVelocity(t *testing.T) {
	v := DeveloperVelocity(map[string]schema.DeveloperMetrics{
		"alice": {Commits: 2, Additions: 30, Deletions: 10, PRsCreated: 4, PRsMerged: 3},
		"bob":   {PRsCreated: 0, PRsMerged: 0},
	})
	assert.Equal(t, schema.DeveloperVelocity{
		CommitFrequency: 2, CodeVelocity: 40, AvgCommitSize: 20, PRMergeRate: 75,
	}, v["alice"])
	assert.Equal(t, schema.DeveloperVelocity{}, v["bob"])
	assert.Empty(t, DeveloperVelocity(nil))
}
