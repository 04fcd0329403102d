package agg

import (
	"github.com/huangsam/devpulse/core/algo"
	"github.com/huangsam/devpulse/schema"
)

// CodeHealth summarizes commit sizes. Commit size deviation uses the sample
// formula and is 0 with fewer than two commits.
func CodeHealth(commits []schema.CommitRecord) schema.CodeHealthMetrics {
	var health schema.CodeHealthMetrics
	if len(commits) == 0 {
		return health
	}

	sizes := make([]float64, len(commits))
	for i, c := range commits {
		health.Additions += c.Additions
		health.Deletions += c.Deletions
		sizes[i] = float64(c.Churn())
	}
	health.TotalChurn = health.Additions + health.Deletions
	health.ChurnRate = churnRate(health.TotalChurn, len(commits))
	health.CommitSizeAvg = algo.Mean(sizes)
	health.CommitSizeStd = algo.SampleStdDev(sizes)
	if health.Additions > 0 {
		health.RefactorRatio = float64(health.Deletions) / float64(health.Additions)
	}
	return health
}

// DeveloperVelocity derives throughput figures per developer.
func DeveloperVelocity(devs map[string]schema.DeveloperMetrics) map[string]schema.DeveloperVelocity {
	out := make(map[string]schema.DeveloperVelocity, len(devs))
	for name, d := range devs {
		changes := d.Additions + d.Deletions
		v := schema.DeveloperVelocity{
			CommitFrequency: d.Commits,
			CodeVelocity:    changes,
			PRMergeRate:     float64(d.PRsMerged) / float64(max(d.PRsCreated, 1)) * 100,
		}
		if d.Commits > 0 {
			v.AvgCommitSize = float64(changes) / float64(d.Commits)
		}
		out[name] = v
	}
	return out
}
