package refresher

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the refresh cycle's Prometheus collectors.
type Metrics struct {
	refreshTotal     *prometheus.CounterVec
	sourceFetchTotal *prometheus.CounterVec
	publishTotal     *prometheus.CounterVec
	lastRefresh      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "influx_refresh_total",
			Help: "Total refresh cycles by result (ok, partial, error).",
		}, []string{"result"}),
		sourceFetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "influx_source_fetch_total",
			Help: "Total snapshot fetches by source and result.",
		}, []string{"source", "result"}),
		publishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "influx_publish_total",
			Help: "Total bundle publishes by result.",
		}, []string{"result"}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "influx_last_refresh_timestamp_seconds",
			Help: "Unix time of the last refresh cycle that produced a bundle.",
		}),
	}
	reg.MustRegister(
		m.refreshTotal,
		m.sourceFetchTotal,
		m.publishTotal,
		m.lastRefresh,
	)
	return m
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
