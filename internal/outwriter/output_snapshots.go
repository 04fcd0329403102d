package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

var snapshotCSVHeader = []string{"id", "timestamp", "time_range", "deployment_frequency", "lead_time_hours", "total_churn", "churn_rate", "avg_commit_size"}

// PrintSnapshots lists stored snapshots, oldest first.
func PrintSnapshots(records []schema.SnapshotRecord, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if records == nil {
			records = []schema.SnapshotRecord{}
		}
		return writeWithFile(cfg.OutputFile, schema.JSONOut, func(w io.Writer) error {
			return writeJSON(w, records)
		})
	case schema.CSVOut:
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				strconv.FormatInt(r.ID, 10),
				r.Timestamp.Format(contract.DateTimeFormat),
				string(r.TimeRange),
				fmt.Sprintf(intFmt, r.DeploymentFrequency),
				fmtFloat(r.LeadTimeHours),
				fmt.Sprintf(intFmt, r.TotalChurn),
				fmtFloat(r.ChurnRate),
				fmtFloat(r.AvgCommitSize),
			})
		}
		return writeWithFile(cfg.OutputFile, schema.CSVOut, func(w io.Writer) error {
			return writeCSV(w, snapshotCSVHeader, rows)
		})
	default:
		return writeWithFile(cfg.OutputFile, schema.TextOut, func(w io.Writer) error {
			if len(records) == 0 {
				_, err := fmt.Fprintln(w, "No snapshots stored yet.")
				return err
			}
			var rows [][]string
			for _, r := range records {
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					humanize.Time(r.Timestamp),
					string(r.TimeRange),
					fmt.Sprintf(intFmt, r.DeploymentFrequency),
					fmtFloat(r.LeadTimeHours),
					humanize.Comma(int64(r.TotalChurn)),
					fmtFloat(r.AvgCommitSize),
				})
			}
			return renderTable(w, []string{"ID", "Taken", "Range", "Deploys", "Lead Time (h)", "Churn", "Avg Commit"}, rows)
		})
	}
}
