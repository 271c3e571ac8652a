package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_insights"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Upstream provider metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint={weather,forecast,geocode}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint

	// Aggregation metrics.
	AggregationCities   prometheus.Histogram
	AggregationFailures prometheus.Counter
	AggregationDuration prometheus.Histogram

	// Insight and refresh metrics.
	AlertsGenerated *prometheus.CounterVec // labels: type, severity
	AlertsPublished prometheus.Counter
	RefreshRuns     *prometheus.CounterVec // labels: outcome={success,error,stale}
	RefreshRunning  prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.AggregationCities,
		m.AggregationFailures,
		m.AggregationDuration,
		m.AlertsGenerated,
		m.AlertsPublished,
		m.RefreshRuns,
		m.RefreshRunning,
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
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Weather provider requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Weather provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		AggregationCities: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_cities",
			Help:      "Number of cities requested per aggregation.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		AggregationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_city_failures_total",
			Help:      "Cities dropped from aggregations because their request failed.",
		}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of a complete multi-city aggregation.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		AlertsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_generated_total",
			Help:      "Severe-weather alerts produced by the classifier, before truncation.",
		}, []string{"type", "severity"}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_published_total",
			Help:      "Alerts written to the Kafka alert topic.",
		}),
		RefreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Disaster refresh runs by outcome.",
		}, []string{"outcome"}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_running",
			Help:      "1 while the periodic disaster refresh is active, 0 otherwise.",
		}),
	}
}
