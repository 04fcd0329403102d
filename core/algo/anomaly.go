package algo

import (
	"fmt"

	"github.com/huangsam/devpulse/schema"
)

// ChurnThreshold returns mean + 2 population standard deviations of the
// per-commit churn. The second value is false for an empty list.
func ChurnThreshold(commits []schema.CommitRecord) (float64, bool) {
	if len(commits) == 0 {
		return 0, false
	}
	churn := make([]float64, len(commits))
	for i, c := range commits {
		churn[i] = float64(c.Churn())
	}
	return Mean(churn) + schema.ChurnSigmaMultiplier*PopulationStdDev(churn), true
}

// DetectAnomalies flags unusual commits. The high churn pass runs first and
// the many files pass second; each pass keeps the input order. The team
// metrics are accepted as context only and never affect the thresholds.
func DetectAnomalies(commits []schema.CommitRecord, _ schema.TeamMetrics) []schema.Anomaly {
	anomalies := []schema.Anomaly{}
	threshold, ok := ChurnThreshold(commits)
	if !ok {
		return anomalies
	}

	for _, c := range commits {
		churn := c.Churn()
		if float64(churn) > threshold {
			anomalies = append(anomalies, schema.Anomaly{
				Type:      schema.HighChurnAnomaly,
				Commit:    c.ShortSHA(),
				Author:    c.AuthorKey(),
				Value:     churn,
				Message:   fmt.Sprintf("High code churn detected: %d lines changed", churn),
				RiskLevel: schema.RiskHigh,
			})
		}
	}

	for _, c := range commits {
		if c.FilesChanged > schema.ManyFilesThreshold {
			anomalies = append(anomalies, schema.Anomaly{
				Type:      schema.ManyFilesAnomaly,
				Commit:    c.ShortSHA(),
				Author:    c.AuthorKey(),
				Value:     c.FilesChanged,
				Message:   fmt.Sprintf("Many files changed in single commit: %d files", c.FilesChanged),
				RiskLevel: schema.RiskMedium,
			})
		}
	}

	return anomalies
}
