package server

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	tracehttp "github.com/wesleyorama2/tracehttp/internal/http"
)

const namespace = "tracehttp"

// Metrics are the exchange counters and phase histograms exported on
// /metrics.
type Metrics struct {
	exchanges *prometheus.CounterVec
	errors    *prometheus.CounterVec
	phases    *prometheus.HistogramVec
	inflight  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_total",
			Help:      "Completed exchanges by response status class.",
		}, []string{"code"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_errors_total",
			Help:      "Failed exchanges by error category.",
		}, []string{"category"}),
		phases: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of each waterfall phase.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		}, []string{"phase"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exchanges_in_flight",
			Help:      "Exchanges currently running.",
		}),
	}
	reg.MustRegister(m.exchanges, m.errors, m.phases, m.inflight)
	return m
}

// ObserveResponse counts resp and records its phases.
func (m *Metrics) ObserveResponse(resp *tracehttp.Response) {
	m.exchanges.WithLabelValues(statusClass(resp.Status)).Inc()
	for _, p := range resp.Stats.Phases() {
		m.phases.WithLabelValues(p.Name).Observe(float64(p.Millis) / 1000)
	}
}

// ObserveError counts a failed exchange.
func (m *Metrics) ObserveError(err error) {
	m.errors.WithLabelValues(tracehttp.KindOf(err).String()).Inc()
}

func statusClass(status uint16) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return fmt.Sprintf("%dxx", status/100)
}
