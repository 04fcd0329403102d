package schema

import "time"

// SnapshotRecord represents a row from the metrics_snapshots table.
type SnapshotRecord struct {
	ID                  int64     `json:"id"`
	Timestamp           time.Time `json:"timestamp"`
	TimeRange           TimeRange `json:"time_range"`
	DeploymentFrequency int       `json:"deployment_frequency"`
	LeadTimeHours       float64   `json:"lead_time_hours"`
	ChangeFailureRate   float64   `json:"change_failure_rate"`
	MTTRHours           float64   `json:"mttr_hours"`
	TotalChurn          int       `json:"total_churn"`
	ChurnRate           float64   `json:"churn_rate"`
	AvgCommitSize       float64   `json:"avg_commit_size"`
	RawMetrics          string    `json:"raw_metrics"`
}

// ConversationRecord represents a row from the agent_conversations table.
type ConversationRecord struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	AgentName string    `json:"agent_name"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
}

// NewSnapshotRecord flattens metrics into a snapshot row.
// RawMetrics is filled by the store.
func NewSnapshotRecord(metrics Metrics, timeRange TimeRange, ts time.Time) SnapshotRecord {
	dora := metrics.DoraOrZero()
	return SnapshotRecord{
		Timestamp:           ts,
		TimeRange:           timeRange,
		DeploymentFrequency: dora.DeploymentFrequency,
		LeadTimeHours:       dora.LeadTimeHours,
		ChangeFailureRate:   dora.ChangeFailureRate,
		MTTRHours:           dora.MTTRHours,
		TotalChurn:          metrics.Team.CodeChurn,
		ChurnRate:           metrics.Team.ChurnRate,
		AvgCommitSize:       metrics.CodeHealthOrZero().CommitSizeAvg,
	}
}
