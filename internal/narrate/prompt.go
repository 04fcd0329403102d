package narrate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// maxPromptAnomalies is how many anomalies the analysis prompt lists.
const maxPromptAnomalies = 5

const analysisTemplate = `Analyze the following code metrics and provide insights:

Team Metrics:
- Total commits: {{.Team.TotalCommits}}
- Code churn: {{.Team.CodeChurn}} lines
- Average cycle time: {{fixed .Team.AvgCycleTimeHours}} hours
- Deployment frequency: {{.Dora.DeploymentFrequency}} deployments

Anomalies detected: {{len .Anomalies}}
{{anomalies .Anomalies}}
{{- template "focus" .}}

Provide:
1. Key patterns in the code changes
2. Risk assessment based on code churn
3. Recommendations for improving development practices

Keep the analysis concise and actionable.
`

const narrativeTemplate = `Generate an actionable insight narrative for the {{.TimeRange}} engineering performance report.

Context from Diff Analyst:
{{.CodeAnalysis}}

Key Metrics:
- Total Commits: {{.Team.TotalCommits}}
- Deployment Frequency: {{.Dora.DeploymentFrequency}}
- Average Lead Time: {{fixed .Dora.LeadTimeHours}} hours
- Code Churn: {{.Team.CodeChurn}} lines
- Active Developers: {{.ActiveDevelopers}}

Anomalies Detected: {{len .Anomalies}}
{{- template "focus" .}}

Please provide:
1. Executive summary (2-3 sentences)
2. Key achievements and concerns
3. Specific recommendations for improvement
4. Risk areas that need attention
Keep the narrative concise, actionable, and focused on business value.
Use clear language suitable for engineering leadership.
`

const focusTemplate = `{{define "focus"}}{{with .Focus}}

Developer Focus ({{.Name}}):
- Commits: {{.Metrics.Commits}}
- Lines changed: {{.Velocity.CodeVelocity}}
- Average commit size: {{fixed .Velocity.AvgCommitSize}} lines
- PRs created: {{.Metrics.PRsCreated}}, merged: {{.Metrics.PRsMerged}} ({{fixed .Velocity.PRMergeRate}}%)
{{- end}}{{end}}`

// Templates renders narrator prompts. The zero value is not usable; use
// NewTemplates.
type Templates struct {
	analysis  *template.Template
	narrative *template.Template
}

var _ contract.PromptRenderer = &Templates{} // Compile-time check

// NewTemplates parses the built-in prompt templates.
func NewTemplates() *Templates {
	funcs := template.FuncMap{
		"fixed":     func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"anomalies": FormatAnomalies,
	}
	parse := func(name, text string) *template.Template {
		return template.Must(template.Must(template.New(name).Funcs(funcs).Parse(focusTemplate)).Parse(text))
	}
	return &Templates{
		analysis:  parse("analysis", analysisTemplate),
		narrative: parse("narrative", narrativeTemplate),
	}
}

// RenderPrompt implements the PromptRenderer interface.
func (t *Templates) RenderPrompt(pc schema.PromptContext) (string, error) {
	var tmpl *template.Template
	switch pc.Kind {
	case schema.AnalysisPrompt:
		tmpl = t.analysis
	case schema.NarrativePrompt:
		tmpl = t.narrative
	default:
		return "", fmt.Errorf("unknown prompt kind: %s", pc.Kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pc); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", pc.Kind, err)
	}
	return buf.String(), nil
}

// FormatAnomalies lists the first few anomalies, one per line.
func FormatAnomalies(anomalies []schema.Anomaly) string {
	if len(anomalies) == 0 {
		return "No significant anomalies detected."
	}
	lines := make([]string, 0, maxPromptAnomalies)
	for _, a := range anomalies[:min(len(anomalies), maxPromptAnomalies)] {
		lines = append(lines, fmt.Sprintf("- %s: %s (Risk: %s)", a.Type, a.Message, a.RiskLevel))
	}
	return strings.Join(lines, "\n")
}
