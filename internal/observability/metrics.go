package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "smoke_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the zone pipeline.
type Metrics struct {
	RunsTotal       prometheus.Counter
	RunFailures     *prometheus.CounterVec // labels: stage={extract,compute,load}
	FiresConsumed   prometheus.Counter
	ZonesProduced   prometheus.Counter
	PipelineRunning prometheus.Gauge
	LastSuccess     prometheus.Gauge

	// Per-run distributions.
	ZonesPerRun prometheus.Histogram
	RunDuration prometheus.Histogram

	// Feed metrics.
	FeedRequestDuration *prometheus.HistogramVec // labels: feed={fire,wind}
	FeedPointsFiltered  prometheus.Counter

	// Public API metrics.
	ReportsReceived *prometheus.CounterVec // labels: result={accepted,rejected,error}
	AQILookups      *prometheus.CounterVec // labels: result={ok,error}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RunsTotal,
		m.RunFailures,
		m.FiresConsumed,
		m.ZonesProduced,
		m.PipelineRunning,
		m.LastSuccess,
		m.ZonesPerRun,
		m.RunDuration,
		m.FeedRequestDuration,
		m.FeedPointsFiltered,
		m.ReportsReceived,
		m.AQILookups,
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
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total refresh cycles started.",
		}),
		RunFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Refresh cycles that failed, by stage.",
		}, []string{"stage"}),
		FiresConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fire_points_consumed_total",
			Help:      "Total fire points read from the fire feed.",
		}),
		ZonesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zones_produced_total",
			Help:      "Total dispersion zones published.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last fully loaded batch.",
		}),
		ZonesPerRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "zones_per_run",
			Help:      "Number of zones computed per refresh cycle.",
			Buckets:   []float64{0, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-compute-load cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		FeedRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_request_duration_seconds",
			Help:      "Feed download duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"feed"}),
		FeedPointsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fire_points_filtered_total",
			Help:      "Fire points dropped for falling outside the region of interest.",
		}),
		ReportsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "smoke_reports_total",
			Help:      "Citizen smoke reports received, by result.",
		}, []string{"result"}),
		AQILookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aqi_lookups_total",
			Help:      "Air quality lookups proxied upstream, by result.",
		}, []string{"result"}),
	}
}
