package telemetry

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huangsam/devpulse/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveStage(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.ObserveStage(schema.StageHarvest, 200*time.Millisecond, nil)
	rec.ObserveStage(schema.StageHarvest, time.Second, errors.New("boom"))
	rec.ObserveStage(schema.StageNarrate, time.Second, errors.New("quota"))

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.stageErrors.WithLabelValues("harvest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.stageErrors.WithLabelValues("narrate")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.stageErrors.WithLabelValues("analyze")))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.stageDuration))
}

func TestRecorder_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)
	ts := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

	ok := schema.NewPipelineState("a", "report", schema.Weekly, "", ts)
	ok.Anomalies = []schema.Anomaly{
		{Type: schema.HighChurnAnomaly},
		{Type: schema.ManyFilesAnomaly},
		{Type: schema.ManyFilesAnomaly},
	}
	rec.ObserveRun(ok, time.Second)

	degraded := schema.NewPipelineState("b", "report", schema.Weekly, "", ts)
	degraded.AddError(errors.New("data source error"))
	rec.ObserveRun(degraded, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("weekly", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("weekly", "degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.anomalies.WithLabelValues("high_churn")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.anomalies.WithLabelValues("many_files_changed")))
	assert.Equal(t, float64(ts.Unix()), testutil.ToFloat64(rec.lastRun.WithLabelValues("weekly")))
}

func TestRecorder_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.Panics(t, func() { NewRecorder(reg) })
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)
	rec.ObserveRun(schema.NewPipelineState("a", "report", schema.Daily, "", time.Now()), time.Second)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `devpulse_runs_total{status="ok",time_range="daily"} 1`)
}
