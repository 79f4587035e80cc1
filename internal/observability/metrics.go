package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// refresh pipeline and the DONKI fetch client.
type Metrics struct {
	RefreshCycles   prometheus.Counter
	RefreshErrors   prometheus.Counter
	RefreshDuration prometheus.Histogram
	RefreshRunning  prometheus.Gauge
	LastRefreshTime prometheus.Gauge

	// Per-feed fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: feed={CME,FLR,IPS}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: feed
	EventsFetched *prometheus.CounterVec   // labels: feed

	// Ranking and alerting.
	EarthDirectedCMEs prometheus.Gauge
	AlertsPublished   prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RefreshCycles,
		m.RefreshErrors,
		m.RefreshDuration,
		m.RefreshRunning,
		m.LastRefreshTime,
		m.FetchRequests,
		m.FetchDuration,
		m.EventsFetched,
		m.EarthDirectedCMEs,
		m.AlertsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "solar_dashboard",
			Name:      "refresh_cycles_total",
			Help:      "Total completed refresh cycles.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "solar_dashboard",
			Name:      "refresh_errors_total",
			Help:      "Total refresh cycles that failed before producing a snapshot.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "solar_dashboard",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-enrich-rank refresh cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "solar_dashboard",
			Name:      "refresh_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		LastRefreshTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "solar_dashboard",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful snapshot.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solar_dashboard",
			Name:      "fetch_requests_total",
			Help:      "DONKI API requests by feed and outcome.",
		}, []string{"feed", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "solar_dashboard",
			Name:      "fetch_duration_seconds",
			Help:      "DONKI API request duration in seconds, retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"feed"}),
		EventsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solar_dashboard",
			Name:      "events_fetched_total",
			Help:      "Raw event records fetched by feed.",
		}, []string{"feed"}),
		EarthDirectedCMEs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "solar_dashboard",
			Name:      "earth_directed_cmes",
			Help:      "Earth-directed CMEs (score 1-3) in the latest snapshot.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "solar_dashboard",
			Name:      "alerts_published_total",
			Help:      "CME alerts published to the sink topic.",
		}),
	}
}
