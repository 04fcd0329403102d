package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// groupTitles maps a metric group to its display emoji and heading.
var groupTitles = map[string][2]string{
	schema.TeamGroup:       {"👥", "TEAM"},
	schema.DoraGroup:       {"🚀", "DORA"},
	schema.CodeHealthGroup: {"🩺", "CODE HEALTH"},
	schema.VelocityGroup:   {"⚡", "VELOCITY"},
	schema.AnomalyGroup:    {"🚨", "ANOMALIES"},
}

// PrintMetricsDefinitions displays the definitions of all reported metrics.
// This is a static display that does not require any harvesting.
func PrintMetricsDefinitions(defs []schema.MetricDefinition, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, schema.JSONOut, func(w io.Writer) error {
			return writeJSON(w, defs)
		})
	case schema.CSVOut:
		rows := make([][]string, 0, len(defs))
		for _, d := range defs {
			rows = append(rows, []string{d.Group, d.Key, d.Name, d.Unit, d.Formula, d.Description})
		}
		return writeWithFile(cfg.OutputFile, schema.CSVOut, func(w io.Writer) error {
			return writeCSV(w, []string{"group", "key", "name", "unit", "formula", "description"}, rows)
		})
	default:
		return writeWithFile(cfg.OutputFile, schema.TextOut, func(w io.Writer) error {
			return printMetricsText(w, defs, cfg.UseEmojis)
		})
	}
}

// printMetricsText displays metrics in human-readable text format, grouped
// in first-seen order.
func printMetricsText(w io.Writer, defs []schema.MetricDefinition, emojis bool) error {
	if _, err := fmt.Fprintf(w, "DevPulse Metrics\n================\n"); err != nil {
		return err
	}
	group := ""
	for _, d := range defs {
		if d.Group != group {
			group = d.Group
			if _, err := fmt.Fprintf(w, "\n%s\n", groupHeading(group, emojis)); err != nil {
				return err
			}
		}
		name := d.Name
		if d.Unit != "" {
			name = fmt.Sprintf("%s (%s)", d.Name, d.Unit)
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n   Formula: %s\n", name, d.Description, d.Formula); err != nil {
			return err
		}
	}
	return nil
}

func groupHeading(group string, emojis bool) string {
	title, ok := groupTitles[group]
	if !ok {
		return group
	}
	if emojis {
		return title[0] + " " + title[1]
	}
	return title[1]
}
