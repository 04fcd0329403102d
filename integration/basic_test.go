//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offlineEnv(reportDB string) []string {
	return []string{
		"DEVPULSE_CACHE_BACKEND=none",
		"DEVPULSE_REPORT_BACKEND=sqlite",
		"DEVPULSE_REPORT_DB_CONNECT=" + reportDB,
		"DEVPULSE_PROVIDER=offline",
	}
}

func TestVersion(t *testing.T) {
	out, err := runDevpulse(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "devpulse CLI")
}

func TestMetricsDefinitions(t *testing.T) {
	out, err := runDevpulse(t, offlineEnv(filepath.Join(t.TempDir(), "r.db")), "metrics", "--output", "json")
	require.NoError(t, err)

	var defs []schema.MetricDefinition
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	assert.Len(t, defs, len(schema.MetricDefinitions()))
}

func TestReportLocalRepo(t *testing.T) {
	repo := newTempRepo(t, map[string]string{
		"a.txt": "one\ntwo\nthree\n",
		"b.txt": "four\n",
	})
	reportDB := filepath.Join(t.TempDir(), "reports.db")
	env := offlineEnv(reportDB)

	out, err := runDevpulse(t, env, "report", "daily", "--repo-path", repo, "--output", "json")
	require.NoError(t, err)

	var state schema.PipelineState
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.NotEmpty(t, state.RunID)
	assert.Equal(t, schema.Daily, state.TimeRange)
	assert.Equal(t, schema.PhaseDone, state.Phase)
	assert.Len(t, state.Commits, 2)
	assert.Equal(t, 2, state.Metrics.Team.TotalCommits)
	assert.Empty(t, state.Errors)
	assert.NotEmpty(t, state.Narrative)

	// The run left one snapshot behind
	out, err = runDevpulse(t, env, "snapshots", "list", "--output", "json")
	require.NoError(t, err)
	var records []schema.SnapshotRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, schema.Daily, records[0].TimeRange)
	assert.Equal(t, 4, records[0].TotalChurn)

	_, err = runDevpulse(t, env, "snapshots", "status")
	require.NoError(t, err)

	exportBase := filepath.Join(t.TempDir(), "history")
	_, err = runDevpulse(t, env, "snapshots", "export", "--output-file", exportBase)
	require.NoError(t, err)
	_, err = os.Stat(exportBase + ".snapshots.parquet")
	assert.NoError(t, err)

	_, err = runDevpulse(t, env, "snapshots", "clear")
	require.NoError(t, err)
	_, err = os.Stat(reportDB)
	assert.True(t, os.IsNotExist(err))
}

func TestReportWritesCharts(t *testing.T) {
	repo := newTempRepo(t, map[string]string{"main.go": "package main\n"})
	chartsDir := filepath.Join(t.TempDir(), "charts")

	_, err := runDevpulse(t, offlineEnv(filepath.Join(t.TempDir(), "r.db")),
		"report", "daily", "--repo-path", repo, "--output", "markdown", "--charts-dir", chartsDir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(chartsDir, "code_health.html"))
	assert.NoError(t, err)
}

func TestReportRejectsInvalidRange(t *testing.T) {
	_, err := runDevpulse(t, offlineEnv(filepath.Join(t.TempDir(), "r.db")), "report", "yearly")
	assert.Error(t, err)
}

func TestScheduleRejectsInvalidCron(t *testing.T) {
	repo := newTempRepo(t, map[string]string{"a.txt": "x\n"})
	_, err := runDevpulse(t, offlineEnv(filepath.Join(t.TempDir(), "r.db")),
		"schedule", "--cron", "not a cron", "--repo-path", repo)
	assert.Error(t, err)
}
