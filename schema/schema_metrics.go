package schema

import "sort"

// DeveloperMetrics holds the counters accumulated for one author.
type DeveloperMetrics struct {
	Commits      int `json:"commits"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	FilesTouched int `json:"files_touched"`
	PRsCreated   int `json:"prs_created"`
	PRsMerged    int `json:"prs_merged"`
}

// TeamMetrics holds totals over every record in the window.
type TeamMetrics struct {
	TotalCommits      int     `json:"total_commits"`
	TotalAdditions    int     `json:"total_additions"`
	TotalDeletions    int     `json:"total_deletions"`
	CodeChurn         int     `json:"code_churn"`
	ChurnRate         float64 `json:"churn_rate"`
	AvgCycleTimeHours float64 `json:"avg_cycle_time_hours"`
	TotalPRs          int     `json:"total_prs"`
	MergedPRs         int     `json:"merged_prs"`
	ActiveDevelopers  int     `json:"active_developers"`
}

// DoraMetrics holds the delivery indicators derived from pull requests.
// ChangeFailureRate and MTTRHours have no data source and are always 0.
type DoraMetrics struct {
	DeploymentFrequency int     `json:"deployment_frequency"`
	LeadTimeHours       float64 `json:"lead_time_hours"`
	ChangeFailureRate   float64 `json:"change_failure_rate"`
	MTTRHours           float64 `json:"mttr_hours"`
}

// PlaceholderFields names the DORA fields that are not measured.
func (DoraMetrics) PlaceholderFields() []string {
	return []string{"change_failure_rate", "mttr_hours"}
}

// CodeHealthMetrics describes the shape of the commits in the window.
type CodeHealthMetrics struct {
	TotalChurn    int     `json:"total_churn"`
	ChurnRate     float64 `json:"churn_rate"`
	CommitSizeAvg float64 `json:"commit_size_avg"`
	CommitSizeStd float64 `json:"commit_size_std"`
	RefactorRatio float64 `json:"refactor_ratio"`
	Additions     int     `json:"additions"`
	Deletions     int     `json:"deletions"`
}

// DeveloperVelocity holds throughput figures for one author.
type DeveloperVelocity struct {
	CommitFrequency int     `json:"commit_frequency"`
	CodeVelocity    int     `json:"code_velocity"`
	AvgCommitSize   float64 `json:"avg_commit_size"`
	PRMergeRate     float64 `json:"pr_merge_rate"`
}

// Metrics is the structure produced by the analyze stage. Aggregation fills
// Developers and Team; the DORA, code health and velocity calculations each
// own their sub-key.
type Metrics struct {
	Developers map[string]DeveloperMetrics  `json:"developers"`
	Team       TeamMetrics                  `json:"team"`
	Dora       *DoraMetrics                 `json:"dora,omitempty"`
	CodeHealth *CodeHealthMetrics           `json:"code_health,omitempty"`
	Velocity   map[string]DeveloperVelocity `json:"velocity,omitempty"`
}

// DoraOrZero returns the DORA metrics or a zero value when absent.
func (m Metrics) DoraOrZero() DoraMetrics {
	if m.Dora == nil {
		return DoraMetrics{}
	}
	return *m.Dora
}

// CodeHealthOrZero returns the code health metrics or a zero value when absent.
func (m Metrics) CodeHealthOrZero() CodeHealthMetrics {
	if m.CodeHealth == nil {
		return CodeHealthMetrics{}
	}
	return *m.CodeHealth
}

// DeveloperNames returns developer keys in ascending order.
func (m Metrics) DeveloperNames() []string {
	names := make([]string, 0, len(m.Developers))
	for name := range m.Developers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Anomaly is a commit flagged as unusual.
type Anomaly struct {
	Type      AnomalyType `json:"type"`
	Commit    string      `json:"commit"`
	Author    string      `json:"author"`
	Value     int         `json:"value"`
	Message   string      `json:"message"`
	RiskLevel RiskLevel   `json:"risk_level"`
}
