// Package agg has aggregation logic for commit and pull request activity.
package agg

import (
	"fmt"

	"github.com/huangsam/devpulse/core/algo"
	"github.com/huangsam/devpulse/schema"
)

// AggregateMetrics reduces commits and pull requests into per-developer and
// team counters. It is deterministic and has no side effects. Records that
// violate their invariants are rejected with an error.
func AggregateMetrics(commits []schema.CommitRecord, prs []schema.PullRequestRecord) (schema.Metrics, error) {
	if err := validateRecords(commits, prs); err != nil {
		return schema.Metrics{Developers: map[string]schema.DeveloperMetrics{}}, err
	}

	devs := make(map[string]*schema.DeveloperMetrics)
	entry := func(author string) *schema.DeveloperMetrics {
		d, ok := devs[author]
		if !ok {
			d = &schema.DeveloperMetrics{}
			devs[author] = d
		}
		return d
	}

	var team schema.TeamMetrics
	for _, c := range commits {
		d := entry(c.AuthorKey())
		d.Commits++
		d.Additions += c.Additions
		d.Deletions += c.Deletions
		d.FilesTouched += c.FilesChanged

		team.TotalAdditions += c.Additions
		team.TotalDeletions += c.Deletions
	}
	team.TotalCommits = len(commits)

	var cycleTimes []float64
	for _, pr := range prs {
		d := entry(pr.AuthorKey())
		d.PRsCreated++
		if pr.IsMerged() {
			d.PRsMerged++
			team.MergedPRs++
		}
		if hours, ok := pr.CycleTimeHours(); ok {
			cycleTimes = append(cycleTimes, hours)
		}
	}
	team.TotalPRs = len(prs)

	team.CodeChurn = team.TotalAdditions + team.TotalDeletions
	team.ChurnRate = churnRate(team.CodeChurn, team.TotalCommits)
	team.AvgCycleTimeHours = algo.Mean(cycleTimes)
	team.ActiveDevelopers = len(devs)

	out := make(map[string]schema.DeveloperMetrics, len(devs))
	for name, d := range devs {
		out[name] = *d
	}
	return schema.Metrics{Developers: out, Team: team}, nil
}

// churnRate returns churn per commit, or 0 when there are no commits.
func churnRate(churn, commits int) float64 {
	if commits == 0 {
		return 0
	}
	return float64(churn) / float64(commits)
}

func validateRecords(commits []schema.CommitRecord, prs []schema.PullRequestRecord) error {
	for i, c := range commits {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("commit %d: %w", i, err)
		}
	}
	for i, pr := range prs {
		if err := pr.Validate(); err != nil {
			return fmt.Errorf("pull request %d: %w", i, err)
		}
	}
	return nil
}
