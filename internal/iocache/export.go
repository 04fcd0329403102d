package iocache

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/internal/parquet"
	"github.com/huangsam/devpulse/schema"
)

// reportExport is the JSON export document.
type reportExport struct {
	Snapshots     []schema.SnapshotRecord     `json:"snapshots"`
	Conversations []schema.ConversationRecord `json:"conversations"`
}

// ExportReports writes the stored report history in the given mode. Parquet
// writes two files next to outputFile; JSON writes one document with both
// tables; CSV writes snapshots only. Progress is reported on w.
func ExportReports(store contract.ReportStore, mode schema.OutputMode, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if _, ok := schema.ValidExportModes[mode]; !ok {
		return fmt.Errorf("unsupported export format: %s", mode)
	}
	if store == nil {
		return errors.New("report store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get report status: %w", err)
	}
	if status.TotalSnapshots == 0 && status.TotalConversations == 0 {
		return errors.New("no report data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total snapshots: %d\n", status.TotalSnapshots)
	_, _ = fmt.Fprintf(w, "Total conversations: %d\n", status.TotalConversations)

	snapshots, err := store.GetAllSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve snapshots: %w", err)
	}
	conversations, err := store.GetAllConversations()
	if err != nil {
		return fmt.Errorf("failed to retrieve conversations: %w", err)
	}

	switch mode {
	case schema.ParquetOut:
		return exportParquet(snapshots, conversations, outputFile, w)
	case schema.JSONOut:
		if err := exportJSON(snapshots, conversations, outputFile); err != nil {
			return err
		}
	case schema.CSVOut:
		if err := exportCSV(snapshots, outputFile); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(w, "Exported %d snapshots to: %s\n", len(snapshots), outputFile)
	return nil
}

func exportParquet(snapshots []schema.SnapshotRecord, conversations []schema.ConversationRecord, outputFile string, w io.Writer) error {
	snapshotsFile := outputFile + ".snapshots.parquet"
	if err := parquet.WriteSnapshotsParquet(parquet.ConvertSnapshotRecords(snapshots), snapshotsFile); err != nil {
		return fmt.Errorf("failed to write snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d snapshots to: %s\n", len(snapshots), snapshotsFile)

	conversationsFile := outputFile + ".conversations.parquet"
	if err := parquet.WriteConversationsParquet(parquet.ConvertConversationRecords(conversations), conversationsFile); err != nil {
		return fmt.Errorf("failed to write conversations: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d conversations to: %s\n", len(conversations), conversationsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Apache Spark")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	return nil
}

func exportJSON(snapshots []schema.SnapshotRecord, conversations []schema.ConversationRecord, outputFile string) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	doc := reportExport{Snapshots: snapshots, Conversations: conversations}
	if doc.Snapshots == nil {
		doc.Snapshots = []schema.SnapshotRecord{}
	}
	if doc.Conversations == nil {
		doc.Conversations = []schema.ConversationRecord{}
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

var snapshotCSVHeader = []string{
	"id", "timestamp", "time_range", "deployment_frequency", "lead_time_hours",
	"change_failure_rate", "mttr_hours", "total_churn", "churn_rate", "avg_commit_size",
}

func exportCSV(snapshots []schema.SnapshotRecord, outputFile string) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	cw := csv.NewWriter(file)
	if err := cw.Write(snapshotCSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, s := range snapshots {
		row := []string{
			strconv.FormatInt(s.ID, 10),
			s.Timestamp.UTC().Format(time.RFC3339),
			string(s.TimeRange),
			strconv.Itoa(s.DeploymentFrequency),
			strconv.FormatFloat(s.LeadTimeHours, 'f', 2, 64),
			strconv.FormatFloat(s.ChangeFailureRate, 'f', 2, 64),
			strconv.FormatFloat(s.MTTRHours, 'f', 2, 64),
			strconv.Itoa(s.TotalChurn),
			strconv.FormatFloat(s.ChurnRate, 'f', 2, 64),
			strconv.FormatFloat(s.AvgCommitSize, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
