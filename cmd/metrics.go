package cmd

import (
	"fmt"

	"github.com/huangsam/devpulse/internal/outwriter"
	"github.com/spf13/cobra"
)

// metricsCmd displays the formal definitions of all report metrics.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display formulas and definitions for all report metrics",
	Long: `Show the formal definitions, formulas and units for every metric in a report.

Covers team metrics, DORA metrics, code health, developer velocity and the
anomaly rules. No harvesting is performed - this is purely informational.

Examples:
  # Show metric definitions
  devpulse metrics

  # Machine readable definitions
  devpulse metrics --output json`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return storeSetup()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := outwriter.NewOutWriter().WriteMetrics(cfg); err != nil {
			return fmt.Errorf("cannot display metrics: %w", err)
		}
		return nil
	},
}
