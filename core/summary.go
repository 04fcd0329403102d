package core

import (
	"fmt"

	"github.com/huangsam/devpulse/schema"
)

// Summary risk bands by anomaly count.
const (
	highRiskAnomalies   = 5
	mediumRiskAnomalies = 2
)

// SummaryRiskLevel maps an anomaly count to the code health risk band.
func SummaryRiskLevel(anomalyCount int) schema.RiskLevel {
	switch {
	case anomalyCount > highRiskAnomalies:
		return schema.RiskHigh
	case anomalyCount > mediumRiskAnomalies:
		return schema.RiskMedium
	default:
		return schema.RiskLow
	}
}

// ExecutiveSummary builds the one-paragraph summary of a run.
func ExecutiveSummary(metrics schema.Metrics, anomalies []schema.Anomaly) string {
	dora := metrics.DoraOrZero()
	risk := SummaryRiskLevel(len(anomalies))
	return fmt.Sprintf(
		"Team delivered %d commits with %d merged PRs. Code health risk level: %s. Average cycle time: %.1f hours.",
		metrics.Team.TotalCommits,
		dora.DeploymentFrequency,
		summaryRiskLabel(risk),
		dora.LeadTimeHours,
	)
}

func summaryRiskLabel(risk schema.RiskLevel) string {
	switch risk {
	case schema.RiskHigh:
		return "High"
	case schema.RiskMedium:
		return "Medium"
	default:
		return "Low"
	}
}
