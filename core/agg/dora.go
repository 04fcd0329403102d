package agg

import (
	"fmt"

	"github.com/huangsam/devpulse/core/algo"
	"github.com/huangsam/devpulse/schema"
)

// CalculateDora derives delivery metrics from merged pull requests.
// The commit list is accepted so the calculation can run standalone on the
// same inputs as AggregateMetrics; it does not contribute to any value.
// Change failure rate and MTTR have no data source and stay 0.
func CalculateDora(_ []schema.CommitRecord, prs []schema.PullRequestRecord) (schema.DoraMetrics, error) {
	var (
		merged    int
		leadTimes []float64
	)
	for i, pr := range prs {
		if err := pr.Validate(); err != nil {
			return schema.DoraMetrics{}, fmt.Errorf("pull request %d: %w", i, err)
		}
		if !pr.IsMerged() {
			continue
		}
		merged++
		if hours, ok := pr.CycleTimeHours(); ok {
			leadTimes = append(leadTimes, hours)
		}
	}
	return schema.DoraMetrics{
		DeploymentFrequency: merged,
		LeadTimeHours:       algo.Mean(leadTimes),
		ChangeFailureRate:   0,
		MTTRHours:           0,
	}, nil
}

// MergeDora stores the DORA metrics under their own sub-key. Other fields are
// left untouched and a second merge replaces the first.
func MergeDora(metrics *schema.Metrics, dora schema.DoraMetrics) {
	d := dora
	metrics.Dora = &d
}
