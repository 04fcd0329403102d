package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/internal/scheduler"
	"github.com/huangsam/devpulse/internal/telemetry"
	"github.com/huangsam/devpulse/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// scheduleCmd runs reports on a cron schedule until interrupted.
var scheduleCmd = &cobra.Command{
	Use:   "schedule [daily|weekly|monthly]...",
	Short: "Run reports on a cron schedule",
	Long: `Run the report pipeline on a cron schedule until interrupted.

Every tick runs one report per listed time range, each with its own
pipeline state. A tick is skipped when the previous one is still running.
With --output-file, each range writes to its own file (report.weekly.md).

Examples:
  # Weekly report every Monday at 09:00
  devpulse schedule --cron "0 9 * * 1" weekly

  # Daily and weekly reports with prometheus metrics
  devpulse schedule --cron "@daily" daily weekly --metrics-addr :9090`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return sharedSetup(rootCtx, cmd, nil)
	},
	RunE: func(_ *cobra.Command, args []string) error {
		ranges := make([]schema.TimeRange, 0, len(args))
		for _, arg := range args {
			tr, err := contract.ParseTimeRange(arg)
			if err != nil {
				return err
			}
			ranges = append(ranges, tr)
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		p, err := newPipeline(rootCtx, telemetry.NewRecorder(reg))
		if err != nil {
			return err
		}

		s, err := scheduler.New(cfg.CronSpec, ranges, func(ctx context.Context, tr schema.TimeRange) error {
			runCfg := *cfg
			runCfg.OutputFile = outputFileFor(cfg.OutputFile, tr)
			return runReport(ctx, p, &runCfg, fmt.Sprintf("scheduled %s report", tr), tr)
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.MetricsAddr != "" {
			go func() {
				if err := telemetry.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
					contract.LogWarn("Metrics server stopped", err)
				}
			}()
		}
		return s.Run(ctx)
	},
}
