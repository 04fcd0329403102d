package schema

// MetricDefinition documents one reported metric.
type MetricDefinition struct {
	Key         string `json:"key"`
	Group       string `json:"group"`
	Name        string `json:"name"`
	Unit        string `json:"unit,omitempty"`
	Formula     string `json:"formula"`
	Description string `json:"description"`
}

// Metric groups.
const (
	TeamGroup       = "team"
	DoraGroup       = "dora"
	CodeHealthGroup = "code_health"
	VelocityGroup   = "velocity"
	AnomalyGroup    = "anomalies"
)

var metricDefinitions = []MetricDefinition{
	{Key: "total_commits", Group: TeamGroup, Name: "Total Commits", Formula: "count(commits)", Description: "Commits authored in the window."},
	{Key: "code_churn", Group: TeamGroup, Name: "Code Churn", Unit: "lines", Formula: "sum(additions + deletions)", Description: "Lines added plus lines deleted across all commits."},
	{Key: "churn_rate", Group: TeamGroup, Name: "Churn Rate", Unit: "lines/commit", Formula: "code_churn / total_commits", Description: "Average churn per commit; 0 when there are no commits."},
	{Key: "avg_cycle_time_hours", Group: TeamGroup, Name: "Average Cycle Time", Unit: "hours", Formula: "mean(merged_at - created_at)", Description: "Mean time from PR creation to merge over merged PRs."},
	{Key: "active_developers", Group: TeamGroup, Name: "Active Developers", Formula: "count(distinct authors)", Description: "Developers with at least one commit or PR."},

	{Key: "deployment_frequency", Group: DoraGroup, Name: "Deployment Frequency", Formula: "count(merged PRs)", Description: "Merged pull requests, used as a deployment proxy."},
	{Key: "lead_time_hours", Group: DoraGroup, Name: "Lead Time for Changes", Unit: "hours", Formula: "mean(merged_at - created_at)", Description: "Mean PR cycle time."},
	{Key: "change_failure_rate", Group: DoraGroup, Name: "Change Failure Rate", Unit: "%", Formula: "0", Description: "Not measured; no incident source is available."},
	{Key: "mttr_hours", Group: DoraGroup, Name: "Mean Time to Restore", Unit: "hours", Formula: "0", Description: "Not measured; no incident source is available."},

	{Key: "commit_size_avg", Group: CodeHealthGroup, Name: "Average Commit Size", Unit: "lines", Formula: "mean(additions + deletions)", Description: "Mean churn per commit."},
	{Key: "commit_size_std", Group: CodeHealthGroup, Name: "Commit Size Deviation", Unit: "lines", Formula: "stddev(additions + deletions)", Description: "Sample standard deviation of commit churn; 0 with fewer than two commits."},
	{Key: "refactor_ratio", Group: CodeHealthGroup, Name: "Refactor Ratio", Formula: "deletions / additions", Description: "Share of removed code relative to added code; 0 when nothing was added."},
	{Key: "health_score", Group: CodeHealthGroup, Name: "Code Health Score", Formula: "max(0, 100 - churn_rate*10)", Description: "Gauge value shown on the code health chart."},

	{Key: "commit_frequency", Group: VelocityGroup, Name: "Commit Frequency", Formula: "count(commits by developer)", Description: "Commits per developer."},
	{Key: "code_velocity", Group: VelocityGroup, Name: "Code Velocity", Unit: "lines", Formula: "additions + deletions", Description: "Lines changed per developer."},
	{Key: "pr_merge_rate", Group: VelocityGroup, Name: "PR Merge Rate", Unit: "%", Formula: "prs_merged / max(prs_created, 1) * 100", Description: "Share of a developer's PRs that merged."},

	{Key: string(HighChurnAnomaly), Group: AnomalyGroup, Name: "High Churn", Formula: "churn > mean + 2*population_stddev", Description: "Commits far above the window's churn distribution; high risk."},
	{Key: string(ManyFilesAnomaly), Group: AnomalyGroup, Name: "Many Files Changed", Formula: "files_changed > 20", Description: "Commits touching an unusually wide set of files; medium risk."},
}

// MetricDefinitions returns the documented metrics in display order.
func MetricDefinitions() []MetricDefinition {
	out := make([]MetricDefinition, len(metricDefinitions))
	copy(out, metricDefinitions)
	return out
}
