package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// PrintReport outputs a pipeline state, dispatching based on the output format configured.
func PrintReport(state *schema.PipelineState, cfg *contract.Config, duration time.Duration) error {
	if state == nil {
		return fmt.Errorf("no report to write")
	}
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, schema.JSONOut, func(w io.Writer) error {
			return writeJSON(w, state)
		})
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, schema.CSVOut, func(w io.Writer) error {
			return writeReportCSV(w, state, fmtFloat, intFmt)
		})
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, schema.MarkdownOut, func(w io.Writer) error {
			_, err := w.Write(renderReportMarkdown(state, fmtFloat, intFmt))
			return err
		})
	case schema.HTMLOut:
		return writeWithFile(cfg.OutputFile, schema.HTMLOut, func(w io.Writer) error {
			_, err := w.Write(renderReportHTML(state, fmtFloat, intFmt))
			return err
		})
	default:
		return writeWithFile(cfg.OutputFile, schema.TextOut, func(w io.Writer) error {
			return writeReportText(w, state, cfg, fmtFloat, intFmt, duration)
		})
	}
}
