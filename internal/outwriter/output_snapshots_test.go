package outwriter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshots() []schema.SnapshotRecord {
	return []schema.SnapshotRecord{
		{ID: 1, Timestamp: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), TimeRange: schema.Weekly, DeploymentFrequency: 3, LeadTimeHours: 8.26, TotalChurn: 12000, AvgCommitSize: 40},
		{ID: 2, Timestamp: time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC), TimeRange: schema.Weekly, DeploymentFrequency: 5, LeadTimeHours: 6.5, TotalChurn: 800, AvgCommitSize: 20},
	}
}

func TestPrintSnapshots_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.txt")
	cfg := &contract.Config{Precision: 1, OutputFile: path}

	require.NoError(t, NewOutWriter().WriteSnapshots(sampleSnapshots(), cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "12,000")
	assert.Contains(t, string(data), "8.3")
	assert.Contains(t, string(data), "weekly")
}

func TestPrintSnapshots_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.txt")
	require.NoError(t, PrintSnapshots(nil, &contract.Config{OutputFile: path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "No snapshots stored yet.\n", string(data))

	jsonPath := filepath.Join(t.TempDir(), "snapshots.json")
	require.NoError(t, PrintSnapshots(nil, &contract.Config{Output: schema.JSONOut, OutputFile: jsonPath}))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestPrintSnapshots_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.csv")
	cfg := &contract.Config{Precision: 2, Output: schema.CSVOut, OutputFile: path}

	require.NoError(t, PrintSnapshots(sampleSnapshots(), cfg))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"2", "2024-06-08T09:00:00Z", "weekly", "5", "6.50", "800", "0.00", "20.00"}, records[2])
}
