package narrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// Churn rate bands used by the offline wording.
const (
	highChurnRate     = 200
	moderateChurnRate = 100
)

// OfflineNarrator produces deterministic text from the metrics alone. It is
// used when no LLM provider is configured and in tests.
type OfflineNarrator struct {
	*Templates
}

var _ contract.Narrator = &OfflineNarrator{} // Compile-time check

// NewOfflineNarrator creates an OfflineNarrator.
func NewOfflineNarrator() *OfflineNarrator {
	return &OfflineNarrator{Templates: NewTemplates()}
}

// Generate implements the Narrator interface.
func (n *OfflineNarrator) Generate(_ context.Context, pc schema.PromptContext) (string, error) {
	switch pc.Kind {
	case schema.AnalysisPrompt:
		return offlineAnalysis(pc), nil
	case schema.NarrativePrompt:
		return offlineNarrative(pc), nil
	default:
		return "", fmt.Errorf("unknown prompt kind: %s", pc.Kind)
	}
}

func offlineAnalysis(pc schema.PromptContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d commits changed %d lines (%.1f lines per commit).",
		pc.Team.TotalCommits, pc.Team.CodeChurn, pc.Team.ChurnRate)

	switch {
	case pc.Team.TotalCommits == 0:
		sb.WriteString(" No activity was recorded in this window.")
	case pc.Team.ChurnRate > highChurnRate:
		sb.WriteString(" Churn per commit is high; consider smaller, more focused changes.")
	case pc.Team.ChurnRate > moderateChurnRate:
		sb.WriteString(" Churn per commit is moderate.")
	default:
		sb.WriteString(" Churn per commit is healthy.")
	}

	if len(pc.Anomalies) > 0 {
		fmt.Fprintf(&sb, "\n\nAnomalies detected: %d\n%s", len(pc.Anomalies), FormatAnomalies(pc.Anomalies))
	}
	return sb.String()
}

func offlineNarrative(pc schema.PromptContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "During the %s window %d active developers delivered %d commits and merged %d pull requests",
		pc.TimeRange, pc.ActiveDevelopers, pc.Team.TotalCommits, pc.Dora.DeploymentFrequency)
	if pc.Dora.DeploymentFrequency > 0 {
		fmt.Fprintf(&sb, " with an average lead time of %.1f hours", pc.Dora.LeadTimeHours)
	}
	sb.WriteString(".")

	if n := len(pc.Anomalies); n > 0 {
		fmt.Fprintf(&sb, " %d anomalies need review.", n)
	} else {
		sb.WriteString(" No unusual commits were found.")
	}

	if f := pc.Focus; f != nil {
		fmt.Fprintf(&sb, " %s made %d commits touching %d lines and merged %d of %d pull requests.",
			f.Name, f.Metrics.Commits, f.Velocity.CodeVelocity, f.Metrics.PRsMerged, f.Metrics.PRsCreated)
	}
	return sb.String()
}
