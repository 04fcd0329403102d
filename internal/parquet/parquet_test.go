package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/devpulse/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshotRecords() []schema.SnapshotRecord {
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return []schema.SnapshotRecord{
		{
			ID:                  1,
			Timestamp:           base,
			TimeRange:           schema.Weekly,
			DeploymentFrequency: 4,
			LeadTimeHours:       12.5,
			TotalChurn:          900,
			ChurnRate:           3.2,
			AvgCommitSize:       45.0,
			RawMetrics:          `{"team":{"total_commits":20}}`,
		},
		{
			ID:            2,
			Timestamp:     base.Add(24 * time.Hour),
			TimeRange:     schema.Daily,
			TotalChurn:    0,
			AvgCommitSize: 0,
		},
	}
}

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[T](file)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestSnapshotStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Snapshot))
	require.NotNil(t, s)

	for _, colName := range []string{
		"id", "timestamp", "time_range", "deployment_frequency", "lead_time_hours",
		"change_failure_rate", "mttr_hours", "total_churn", "churn_rate",
		"avg_commit_size", "raw_metrics",
	} {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col)
	}
}

func TestConversationStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Conversation))
	require.NotNil(t, s)

	for _, colName := range []string{"id", "timestamp", "agent_name", "prompt", "response"} {
		_, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestConvertSnapshotRecords(t *testing.T) {
	rows := ConvertSnapshotRecords(sampleSnapshotRecords())
	require.Len(t, rows, 2)

	assert.Equal(t, "weekly", rows[0].TimeRange)
	assert.Equal(t, int32(4), rows[0].DeploymentFrequency)
	assert.Equal(t, int64(900), rows[0].TotalChurn)
	require.NotNil(t, rows[0].RawMetrics)
	assert.Contains(t, *rows[0].RawMetrics, "total_commits")

	assert.Nil(t, rows[1].RawMetrics, "empty raw metrics should export as null")
}

func TestWriteSnapshotsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "snapshots.parquet")
	data := ConvertSnapshotRecords(sampleSnapshotRecords())

	require.NoError(t, WriteSnapshotsParquet(data, outputPath))

	readData := readAll[Snapshot](t, outputPath)
	require.Len(t, readData, len(data))
	for i := range data {
		assert.Equal(t, data[i].ID, readData[i].ID)
		assert.Equal(t, data[i].TimeRange, readData[i].TimeRange)
		assert.InDelta(t, data[i].LeadTimeHours, readData[i].LeadTimeHours, 0.001)
		assert.WithinDuration(t, data[i].Timestamp, readData[i].Timestamp, time.Nanosecond)
	}
	require.NotNil(t, readData[0].RawMetrics)
	assert.Equal(t, *data[0].RawMetrics, *readData[0].RawMetrics)
	assert.Nil(t, readData[1].RawMetrics)
}

func TestWriteConversationsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "conversations.parquet")
	data := ConvertConversationRecords([]schema.ConversationRecord{
		{ID: 1, Timestamp: time.Now(), AgentName: schema.DiffAnalystAgent, Prompt: "p1", Response: "r1"},
		{ID: 2, Timestamp: time.Now(), AgentName: schema.InsightNarratorAgent, Prompt: "p2", Response: "r2"},
	})

	require.NoError(t, WriteConversationsParquet(data, outputPath))

	readData := readAll[Conversation](t, outputPath)
	require.Len(t, readData, 2)
	assert.Equal(t, schema.InsightNarratorAgent, readData[1].AgentName)
	assert.Equal(t, "r2", readData[1].Response)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")

	require.NoError(t, WriteSnapshotsParquet([]Snapshot{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteConversationsParquet(nil, "/nonexistent/directory/output.parquet")
	require.Error(t, err)
}
