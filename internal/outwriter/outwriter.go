// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints a finished pipeline state using the configured output format.
func (ow *OutWriter) WriteReport(state *schema.PipelineState, cfg *contract.Config, duration time.Duration) error {
	return PrintReport(state, cfg, duration)
}

// WriteCharts decodes each chart into dir and returns the written paths.
func (ow *OutWriter) WriteCharts(charts []schema.Chart, dir string) ([]string, error) {
	return WriteChartFiles(charts, dir)
}

// WriteSnapshots prints stored snapshots using the configured output format.
func (ow *OutWriter) WriteSnapshots(records []schema.SnapshotRecord, cfg *contract.Config) error {
	return PrintSnapshots(records, cfg)
}

// WriteMetrics prints metric definitions using the configured output format.
func (ow *OutWriter) WriteMetrics(cfg *contract.Config) error {
	return PrintMetricsDefinitions(schema.MetricDefinitions(), cfg)
}
