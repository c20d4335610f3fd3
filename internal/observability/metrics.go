package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wildfire_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Dataset loading.
	DatasetsReady       prometheus.Gauge
	DatasetLoadDuration prometheus.Histogram
	MalformedRows       *prometheus.CounterVec // labels: dataset={county,city}
	InvalidFeatures     *prometheus.CounterVec // labels: layer={county,city,fire}

	// Sessions and interactions.
	SessionsActive      prometheus.Gauge
	SessionsEvicted     prometheus.Counter
	Interactions        *prometheus.CounterVec // labels: type, outcome={ok,not_found,invalid_range,error}
	ChartRenders        *prometheus.CounterVec // labels: format={svg,png}
	ChartRenderDuration prometheus.Histogram

	// Interaction event publishing.
	EventsPublished      prometheus.Counter
	EventsDropped        prometheus.Counter
	PublishErrors        prometheus.Counter
	PublisherRunning     prometheus.Gauge
	BatchSize            prometheus.Histogram
	BatchPublishDuration prometheus.Histogram

	// Place search geocoding.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.DatasetsReady,
		m.DatasetLoadDuration,
		m.MalformedRows,
		m.InvalidFeatures,
		m.SessionsActive,
		m.SessionsEvicted,
		m.Interactions,
		m.ChartRenders,
		m.ChartRenderDuration,
		m.EventsPublished,
		m.EventsDropped,
		m.PublishErrors,
		m.PublisherRunning,
		m.BatchSize,
		m.BatchPublishDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	counter := func(name, h string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help(h)})
	}
	gauge := func(name, h string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help(h)})
	}
	histogram := func(name, h string, buckets []float64) prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: name, Help: help(h), Buckets: buckets})
	}
	counterVec := func(name, h string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help(h)}, labels)
	}

	return &Metrics{
		DatasetsReady: gauge("datasets_ready",
			"1 once every input file is loaded and indexed, 0 before or after a load failure."),
		DatasetLoadDuration: histogram("dataset_load_duration_seconds",
			"Duration of the batch load of all input files.",
			[]float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}),
		MalformedRows: counterVec("malformed_rows_total",
			"Price CSV rows skipped during index build.", "dataset"),
		InvalidFeatures: counterVec("invalid_features_total",
			"GeoJSON features dropped for invalid geometry.", "layer"),

		SessionsActive: gauge("sessions_active",
			"Sessions currently held in the session cache."),
		SessionsEvicted: counter("sessions_evicted_total",
			"Sessions evicted from the cache to make room."),
		Interactions: counterVec("interactions_total",
			"Session interactions by type and outcome.", "type", "outcome"),
		ChartRenders: counterVec("chart_renders_total",
			"Charts rasterised by output format.", "format"),
		ChartRenderDuration: histogram("chart_render_duration_seconds",
			"Duration of painting one chart.",
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}),

		EventsPublished: counter("events_published_total",
			"Interaction events written to the sink."),
		EventsDropped: counter("events_dropped_total",
			"Interaction events dropped because the publish queue was full."),
		PublishErrors: counter("publish_errors_total",
			"Failed attempts to write an event batch."),
		PublisherRunning: gauge("publisher_running",
			"1 when the event publisher is active, 0 when shut down."),
		BatchSize: histogram("batch_size",
			"Number of events per published batch.",
			[]float64{1, 5, 10, 20, 30, 40, 50, 75, 100}),
		BatchPublishDuration: histogram("batch_publish_duration_seconds",
			"Duration of writing one event batch, retries included.",
			[]float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10}),

		GeocodeRequests: counterVec("geocode_requests_total",
			"Place search geocoding requests by outcome.", "outcome"),
		GeocodeCache: counterVec("geocode_cache_total",
			"Place search cache lookups by result.", "result"),
		GeocodeAPIDuration: histogram("geocode_api_duration_seconds",
			"Mapbox API request duration in seconds.",
			[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}),
		GeocodeEnabled: gauge("geocode_enabled",
			"1 when place search geocoding is enabled, 0 otherwise."),
	}
}
