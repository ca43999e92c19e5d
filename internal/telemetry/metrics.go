package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielpatrickdp/policy-dash/internal/dashboard"
	"github.com/danielpatrickdp/policy-dash/internal/gate"
)

// Metrics exposes the latest dashboard view and import activity. All methods
// are safe on a nil receiver.
type Metrics struct {
	// Latest KPI values by name
	KPI *prometheus.GaugeVec

	// 1 when the gate passed on the latest evaluation, else 0
	GatePass *prometheus.GaugeVec

	// Evaluations by caller: "http", "cli", "replay"
	Evaluations *prometheus.CounterVec

	// Record imports by format and result
	Imports *prometheus.CounterVec

	// Remote config fetches that failed and left the config unchanged
	FetchFailures prometheus.Counter

	BuildLatency prometheus.Histogram
}

// New registers the dashboard metrics on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		KPI: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "policydash_kpi",
			Help: "Latest KPI value of the filtered record set",
		}, []string{"kpi"}),

		GatePass: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "policydash_gate_pass",
			Help: "Whether the release gate passed on the latest evaluation",
		}, []string{"gate"}),

		Evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "policydash_evaluations_total",
			Help: "Total dashboard evaluations by source",
		}, []string{"source"}),

		Imports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "policydash_imports_total",
			Help: "Total record imports by format and result",
		}, []string{"format", "result"}),

		FetchFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "policydash_config_fetch_failures_total",
			Help: "Remote config fetches that failed",
		}),

		BuildLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "policydash_build_duration_seconds",
			Help:    "Duration of a full dashboard recomputation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

// Observe publishes the KPIs and gate results of snap.
func (m *Metrics) Observe(source string, snap dashboard.Snapshot, took time.Duration) {
	if m == nil {
		return
	}
	k := snap.KPIs
	m.KPI.WithLabelValues("total").Set(float64(k.Total))
	m.KPI.WithLabelValues("block_rate").Set(k.BlockRate)
	m.KPI.WithLabelValues("over_refusal_rate").Set(k.OverRefusalRate)
	m.KPI.WithLabelValues("appeals_upheld_rate").Set(k.AppealsUpheldRate)
	m.KPI.WithLabelValues("p95_latency_ms").Set(k.P95Latency)
	m.KPI.WithLabelValues("avg_cost_usd").Set(k.AvgCost)
	m.KPI.WithLabelValues("worst_disparity").Set(k.WorstDisparity)

	for _, g := range []gate.Name{gate.GateA, gate.GateB, gate.GateC} {
		m.GatePass.WithLabelValues(string(g)).Set(boolToFloat(snap.Gates.Results.Get(g)))
	}
	m.Evaluations.WithLabelValues(source).Inc()
	m.BuildLatency.Observe(took.Seconds())
}

// IncrementImport records an import attempt.
func (m *Metrics) IncrementImport(format string, ok bool) {
	if m != nil {
		result := "ok"
		if !ok {
			result = "rejected"
		}
		m.Imports.WithLabelValues(format, result).Inc()
	}
}

// IncrementFetchFailure records a failed remote config fetch.
func (m *Metrics) IncrementFetchFailure() {
	if m != nil {
		m.FetchFailures.Inc()
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
