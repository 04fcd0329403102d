package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/devpulse/core"
	"github.com/huangsam/devpulse/internal/charts"
	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/internal/harvest"
	"github.com/huangsam/devpulse/internal/narrate"
	"github.com/huangsam/devpulse/internal/outwriter"
	"github.com/huangsam/devpulse/schema"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// reportCmd runs one pipeline pass and prints the report.
var reportCmd = &cobra.Command{
	Use:   "report [daily|weekly|monthly]",
	Short: "Generate a team performance report for a time window",
	Long: `Harvest commits and pull requests for the window, compute DORA and team
metrics, flag anomalous commits and write a narrative report.

A failing stage never aborts the run. The report is still printed and
marked DEGRADED with the stage errors listed.

Examples:
  # Weekly report for the repository in the current directory
  devpulse report

  # Daily report from GitHub focused on one developer
  devpulse report daily --source github --github-owner acme --github-repo api --target-user alice

  # Monthly report as HTML with chart files
  devpulse report monthly --output html --output-file report.html --charts-dir charts`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		p, err := newPipeline(rootCtx, nil)
		if err != nil {
			return err
		}
		return runReport(rootCtx, p, cfg, cfg.Command, cfg.TimeRange)
	},
}

// newPipeline wires the configured collaborators into a pipeline.
func newPipeline(ctx context.Context, observer contract.RunObserver) (*core.Pipeline, error) {
	var (
		activity contract.CacheStore
		reports  contract.ReportStore
	)
	if cacheManager != nil {
		activity = cacheManager.GetActivityStore()
		reports = cacheManager.GetReportStore()
	}

	h, err := harvest.New(ctx, cfg, contract.NewLocalGitClient(), activity)
	if err != nil {
		return nil, fmt.Errorf("failed to create harvester: %w", err)
	}
	n, err := narrate.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create narrator: %w", err)
	}

	opts := []core.Option{
		core.WithNarrator(n),
		core.WithChartRenderer(charts.NewRenderer()),
	}
	if reports != nil {
		opts = append(opts, core.WithReportStore(reports))
	}
	if observer != nil {
		opts = append(opts, core.WithObserver(observer))
	}
	return core.NewPipeline(h, opts...), nil
}

// runReport executes one run and writes its report and charts.
func runReport(ctx context.Context, p *core.Pipeline, runCfg *contract.Config, command string, timeRange schema.TimeRange) error {
	started := time.Now()
	state := p.Run(ctx, command, timeRange, runCfg.TargetUser)
	duration := time.Since(started)

	ow := outwriter.NewOutWriter()
	if runCfg.ChartsDir != "" {
		paths, err := ow.WriteCharts(state.Charts, runCfg.ChartsDir)
		if err != nil {
			contract.LogWarn("Cannot write chart files", err)
		}
		contract.Logger.WithFields(logrus.Fields{"run_id": state.RunID, "charts": paths}).Debug("Chart files written")
	}
	return ow.WriteReport(state, runCfg, duration)
}

// outputFileFor returns a per-range output file so scheduled runs for
// different ranges never overwrite each other.
func outputFileFor(outputFile string, timeRange schema.TimeRange) string {
	if outputFile == "" {
		return ""
	}
	ext := filepath.Ext(outputFile)
	return fmt.Sprintf("%s.%s%s", strings.TrimSuffix(outputFile, ext), timeRange, ext)
}
