package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrkbench/internal/benchmark"
)

func TestObserveCampaign(t *testing.T) {
	m := New()
	ts := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	m.ObserveCampaign([]benchmark.Result{
		{Success: true, Timestamp: ts, RequestsPerSec: 1000, AvgLatencyMs: 3.5, TransferMB: 64},
		{Success: true, Timestamp: ts, RequestsPerSec: 1200, AvgLatencyMs: 4.0, TransferMB: 80},
		{Success: false, Timestamp: ts, Error: "connect refused"},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1200.0, testutil.ToFloat64(m.BestRequestsPerSec))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.BestAvgLatencyMs))
	assert.Equal(t, 80.0, testutil.ToFloat64(m.BestTransferMB))
	assert.Equal(t, float64(ts.Unix()), testutil.ToFloat64(m.LastRunTimestamp))
}

func TestObserveCampaignAllFailed(t *testing.T) {
	m := New()

	m.ObserveCampaign([]benchmark.Result{{Success: false}})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BestRequestsPerSec), "gauges untouched without a best run")
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveCampaign([]benchmark.Result{{Success: true, RequestsPerSec: 500}})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "wrkbench_runs_total")
	assert.Contains(t, body, "wrkbench_best_requests_per_sec")
}
