package outwriter

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeReportText writes the human-readable report with tables.
func writeReportText(w io.Writer, state *schema.PipelineState, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	title := fmt.Sprintf("DevPulse %s report", state.TimeRange)
	if cfg.UseEmojis {
		title = "📊 " + title
	}
	if _, err := fmt.Fprintf(w, "%s (run %s)\n", title, state.RunID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Window: %s to %s\n\n",
		state.WindowStart.Format(contract.DateTimeFormat), state.WindowEnd.Format(contract.DateTimeFormat)); err != nil {
		return err
	}

	if state.Degraded() {
		banner := fmt.Sprintf("DEGRADED: %d stage error(s)", len(state.Errors))
		if cfg.UseEmojis {
			banner = "⚠️  " + banner
		}
		if cfg.UseColors {
			banner = contract.HighColor.Sprint(banner)
		}
		if _, err := fmt.Fprintln(w, banner); err != nil {
			return err
		}
		for _, e := range state.Errors {
			if _, err := fmt.Fprintf(w, "  - %s\n", e); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if state.Summary != "" {
		if _, err := fmt.Fprintf(w, "%s\n\n", state.Summary); err != nil {
			return err
		}
	}

	if err := renderTable(w, []string{"Metric", "Value"}, teamRows(state.Metrics, fmtFloat, intFmt)); err != nil {
		return err
	}

	if len(state.Metrics.Developers) > 0 {
		if _, err := fmt.Fprintln(w, "\nDevelopers"); err != nil {
			return err
		}
		if err := renderTable(w, developerHeader, developerRows(state.Metrics, fmtFloat, intFmt)); err != nil {
			return err
		}
	}

	if len(state.Anomalies) > 0 {
		if _, err := fmt.Fprintln(w, "\nAnomalies"); err != nil {
			return err
		}
		maxWidth := messageWidth(terminalWidth(cfg))
		var rows [][]string
		for _, a := range state.Anomalies {
			risk := contract.GetPlainRiskLabel(a.RiskLevel)
			if cfg.UseColors {
				risk = contract.GetColorRiskLabel(a.RiskLevel)
			}
			rows = append(rows, []string{
				string(a.Type),
				a.Commit,
				a.Author,
				fmt.Sprintf(intFmt, a.Value),
				risk,
				contract.TruncateWithEllipsis(a.Message, maxWidth),
			})
		}
		if err := renderTable(w, []string{"Type", "Commit", "Author", "Value", "Risk", "Message"}, rows); err != nil {
			return err
		}
	}

	for _, section := range []struct{ title, body string }{
		{"Code Analysis", state.CodeAnalysis},
		{"Narrative", state.Narrative},
	} {
		if section.body == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s\n%s\n", section.title, strings.TrimSpace(section.body)); err != nil {
			return err
		}
	}

	if len(state.Charts) > 0 {
		types := make([]string, len(state.Charts))
		for i, c := range state.Charts {
			types[i] = string(c.Type)
		}
		if _, err := fmt.Fprintf(w, "\nCharts: %s\n", strings.Join(types, ", ")); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nReport completed in %v. Status: %s. Report backend: %s\n", duration, state.Status(), cfg.ReportBackend)
	return err
}

// renderTable writes a minimal right-aligned table.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// placeholderLabels maps unmeasured DORA fields to their row labels.
var placeholderLabels = map[string]string{
	"change_failure_rate": "Change failure rate",
	"mttr_hours":          "MTTR (h)",
}

// teamRows lists team, DORA and code health values as label/value pairs.
// Unmeasured DORA fields are shown as such rather than as zeros.
func teamRows(m schema.Metrics, fmtFloat func(float64) string, intFmt string) [][]string {
	dora := m.DoraOrZero()
	health := m.CodeHealthOrZero()
	rows := [][]string{
		{"Commits", fmt.Sprintf(intFmt, m.Team.TotalCommits)},
		{"Additions", fmt.Sprintf(intFmt, m.Team.TotalAdditions)},
		{"Deletions", fmt.Sprintf(intFmt, m.Team.TotalDeletions)},
		{"Code churn", fmt.Sprintf(intFmt, m.Team.CodeChurn)},
		{"Churn rate", fmtFloat(m.Team.ChurnRate)},
		{"Pull requests", fmt.Sprintf(intFmt, m.Team.TotalPRs)},
		{"Merged PRs", fmt.Sprintf(intFmt, m.Team.MergedPRs)},
		{"Avg cycle time (h)", fmtFloat(m.Team.AvgCycleTimeHours)},
		{"Active developers", fmt.Sprintf(intFmt, m.Team.ActiveDevelopers)},
		{"Deployment frequency", fmt.Sprintf(intFmt, dora.DeploymentFrequency)},
		{"Lead time (h)", fmtFloat(dora.LeadTimeHours)},
	}
	for _, field := range dora.PlaceholderFields() {
		rows = append(rows, []string{placeholderLabels[field], notMeasured})
	}
	return append(rows,
		[]string{"Avg commit size", fmtFloat(health.CommitSizeAvg)},
		[]string{"Commit size std", fmtFloat(health.CommitSizeStd)},
		[]string{"Refactor ratio", fmtFloat(health.RefactorRatio)},
	)
}

const notMeasured = "not measured"

var developerHeader = []string{"Developer", "Commits", "Additions", "Deletions", "Files", "PRs", "Merged", "Velocity", "Merge %"}

// developerRows returns one row per developer, sorted by name.
func developerRows(m schema.Metrics, fmtFloat func(float64) string, intFmt string) [][]string {
	names := m.DeveloperNames()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		d := m.Developers[name]
		v := m.Velocity[name]
		rows = append(rows, []string{
			name,
			fmt.Sprintf(intFmt, d.Commits),
			fmt.Sprintf(intFmt, d.Additions),
			fmt.Sprintf(intFmt, d.Deletions),
			fmt.Sprintf(intFmt, d.FilesTouched),
			fmt.Sprintf(intFmt, d.PRsCreated),
			fmt.Sprintf(intFmt, d.PRsMerged),
			fmt.Sprintf(intFmt, v.CodeVelocity),
			fmtFloat(v.PRMergeRate),
		})
	}
	return rows
}

// writeReportCSV writes one row per developer with the run context repeated.
func writeReportCSV(w io.Writer, state *schema.PipelineState, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"run_id", "time_range", "status", "developer", "commits", "additions", "deletions",
		"files_touched", "prs_created", "prs_merged", "code_velocity", "avg_commit_size", "pr_merge_rate",
	}
	names := state.Metrics.DeveloperNames()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		d := state.Metrics.Developers[name]
		v := state.Metrics.Velocity[name]
		rows = append(rows, []string{
			state.RunID,
			string(state.TimeRange),
			state.Status(),
			name,
			strconv.Itoa(d.Commits),
			strconv.Itoa(d.Additions),
			strconv.Itoa(d.Deletions),
			strconv.Itoa(d.FilesTouched),
			strconv.Itoa(d.PRsCreated),
			strconv.Itoa(d.PRsMerged),
			fmt.Sprintf(intFmt, v.CodeVelocity),
			fmtFloat(v.AvgCommitSize),
			fmtFloat(v.PRMergeRate),
		})
	}
	return writeCSV(w, header, rows)
}

// renderReportMarkdown builds the Markdown document for a report.
func renderReportMarkdown(state *schema.PipelineState, fmtFloat func(float64) string, intFmt string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# DevPulse %s report\n\n", state.TimeRange)
	fmt.Fprintf(&b, "- Run: `%s`\n", state.RunID)
	fmt.Fprintf(&b, "- Window: %s to %s\n", state.WindowStart.Format(contract.DateTimeFormat), state.WindowEnd.Format(contract.DateTimeFormat))
	fmt.Fprintf(&b, "- Status: **%s**\n\n", state.Status())

	if state.Degraded() {
		b.WriteString("> **DEGRADED**\n>\n")
		for _, e := range state.Errors {
			fmt.Fprintf(&b, "> - %s\n", e)
		}
		b.WriteString("\n")
	}

	if state.Summary != "" {
		fmt.Fprintf(&b, "## Summary\n\n%s\n\n", state.Summary)
	}

	b.WriteString("## Team\n\n")
	writeMarkdownTable(&b, []string{"Metric", "Value"}, teamRows(state.Metrics, fmtFloat, intFmt))

	if len(state.Metrics.Developers) > 0 {
		b.WriteString("## Developers\n\n")
		writeMarkdownTable(&b, developerHeader, developerRows(state.Metrics, fmtFloat, intFmt))
	}

	if len(state.Anomalies) > 0 {
		b.WriteString("## Anomalies\n\n")
		for _, a := range state.Anomalies {
			fmt.Fprintf(&b, "- **%s** `%s` by %s: %s (Risk: %s)\n",
				a.Type, a.Commit, a.Author, a.Message, contract.GetPlainRiskLabel(a.RiskLevel))
		}
		b.WriteString("\n")
	}

	if state.CodeAnalysis != "" {
		fmt.Fprintf(&b, "## Code Analysis\n\n%s\n\n", strings.TrimSpace(state.CodeAnalysis))
	}
	if state.Narrative != "" {
		fmt.Fprintf(&b, "## Narrative\n\n%s\n\n", strings.TrimSpace(state.Narrative))
	}
	return b.Bytes()
}

func writeMarkdownTable(b *bytes.Buffer, header []string, rows [][]string) {
	fmt.Fprintf(b, "| %s |\n", strings.Join(header, " | "))
	seps := make([]string, len(header))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(seps, " | "))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	}
	b.WriteString("\n")
}

// renderReportHTML renders the Markdown report as a complete HTML page.
func renderReportHTML(state *schema.PipelineState, fmtFloat func(float64) string, intFmt string) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(renderReportMarkdown(state, fmtFloat, intFmt))

	opts := html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.CompletePage,
		Title: fmt.Sprintf("DevPulse %s report", state.TimeRange),
	}
	return markdown.Render(doc, html.NewRenderer(opts))
}
