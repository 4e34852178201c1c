// Package metrics exposes campaign outcomes as Prometheus metrics, scraped
// from the watch mode's /metrics endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wrkbench/internal/benchmark"
)

// Metrics holds the registry and collectors for one watch process.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal *prometheus.CounterVec

	BestRequestsPerSec prometheus.Gauge
	BestAvgLatencyMs   prometheus.Gauge
	BestTransferMB     prometheus.Gauge
	LastRunTimestamp   prometheus.Gauge
}

// New creates and registers all collectors on a private registry, so tests
// can build as many instances as they like.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wrkbench_runs_total",
			Help: "Total number of benchmark runs executed",
		},
		[]string{"status"},
	)

	m.BestRequestsPerSec = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wrkbench_best_requests_per_sec",
		Help: "Requests per second of the best run in the last campaign",
	})

	m.BestAvgLatencyMs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wrkbench_best_avg_latency_ms",
		Help: "Average latency of the best run in the last campaign",
	})

	m.BestTransferMB = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wrkbench_best_transfer_mb",
		Help: "Megabytes transferred by the best run in the last campaign",
	})

	m.LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wrkbench_last_run_timestamp_seconds",
		Help: "Unix time of the last completed campaign",
	})

	m.registry.MustRegister(
		m.RunsTotal,
		m.BestRequestsPerSec,
		m.BestAvgLatencyMs,
		m.BestTransferMB,
		m.LastRunTimestamp,
	)
	return m
}

// ObserveCampaign records the outcome of one campaign.
func (m *Metrics) ObserveCampaign(runs []benchmark.Result) {
	for _, r := range runs {
		if r.Success {
			m.RunsTotal.WithLabelValues("success").Inc()
		} else {
			m.RunsTotal.WithLabelValues("failed").Inc()
		}
	}
	if best, err := benchmark.Best(runs); err == nil {
		m.BestRequestsPerSec.Set(best.RequestsPerSec)
		m.BestAvgLatencyMs.Set(best.AvgLatencyMs)
		m.BestTransferMB.Set(best.TransferMB)
		m.LastRunTimestamp.Set(float64(best.Timestamp.Unix()))
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
