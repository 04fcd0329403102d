// Package parquet exports stored report history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/devpulse/schema"
	"github.com/parquet-go/parquet-go"
)

// Snapshot represents one stored metrics snapshot.
// This struct maps to the metrics_snapshots database table.
type Snapshot struct {
	// ID is the row identifier assigned by the store
	ID int64 `parquet:"id,snappy"`

	// Timestamp is when the snapshot was taken (TIMESTAMP with nanosecond precision)
	Timestamp time.Time `parquet:"timestamp,snappy"`

	// TimeRange is the reporting window the snapshot covers
	TimeRange string `parquet:"time_range,snappy,dict"`

	DeploymentFrequency int32   `parquet:"deployment_frequency,snappy"`
	LeadTimeHours       float64 `parquet:"lead_time_hours,snappy"`
	ChangeFailureRate   float64 `parquet:"change_failure_rate,snappy"`
	MTTRHours           float64 `parquet:"mttr_hours,snappy"`
	TotalChurn          int64   `parquet:"total_churn,snappy"`
	ChurnRate           float64 `parquet:"churn_rate,snappy"`
	AvgCommitSize       float64 `parquet:"avg_commit_size,snappy"`

	// RawMetrics is the JSON-encoded metrics structure (nullable)
	RawMetrics *string `parquet:"raw_metrics,optional,snappy"`
}

// Conversation represents one stored narrator exchange.
// This struct maps to the agent_conversations database table.
type Conversation struct {
	ID        int64     `parquet:"id,snappy"`
	Timestamp time.Time `parquet:"timestamp,snappy"`
	AgentName string    `parquet:"agent_name,snappy,dict"`
	Prompt    string    `parquet:"prompt,snappy"`
	Response  string    `parquet:"response,snappy"`
}

// WriteSnapshotsParquet writes snapshots to a Parquet file.
func WriteSnapshotsParquet(data []Snapshot, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteConversationsParquet writes conversations to a Parquet file.
func WriteConversationsParquet(data []Conversation, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using the schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer; a failure here leaves an unreadable file
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertSnapshotRecords converts schema.SnapshotRecord to Snapshot for Parquet export.
func ConvertSnapshotRecords(records []schema.SnapshotRecord) []Snapshot {
	result := make([]Snapshot, len(records))
	for i, record := range records {
		var raw *string
		if record.RawMetrics != "" {
			raw = &record.RawMetrics
		}
		result[i] = Snapshot{
			ID:                  record.ID,
			Timestamp:           record.Timestamp,
			TimeRange:           string(record.TimeRange),
			DeploymentFrequency: int32(record.DeploymentFrequency),
			LeadTimeHours:       record.LeadTimeHours,
			ChangeFailureRate:   record.ChangeFailureRate,
			MTTRHours:           record.MTTRHours,
			TotalChurn:          int64(record.TotalChurn),
			ChurnRate:           record.ChurnRate,
			AvgCommitSize:       record.AvgCommitSize,
			RawMetrics:          raw,
		}
	}
	return result
}

// ConvertConversationRecords converts schema.ConversationRecord to Conversation for Parquet export.
func ConvertConversationRecords(records []schema.ConversationRecord) []Conversation {
	result := make([]Conversation, len(records))
	for i, record := range records {
		result[i] = Conversation{
			ID:        record.ID,
			Timestamp: record.Timestamp,
			AgentName: record.AgentName,
			Prompt:    record.Prompt,
			Response:  record.Response,
		}
	}
	return result
}
