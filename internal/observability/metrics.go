package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "osm_etl"

// Metrics holds the Prometheus counters and gauges for a conversion run.
type Metrics struct {
	ElementsRead    *prometheus.CounterVec // labels: type={node,way,relation}
	RecordsWritten  prometheus.Counter
	ElementsSkipped prometheus.Counter
	TagsDropped     *prometheus.CounterVec // labels: reason
	PipelineRunning prometheus.Gauge
	RunDuration     prometheus.Gauge

	// Cleaning memoisation.
	CleanCache *prometheus.CounterVec // labels: rule={street,postcode,amenity,landuse}, result={hit,miss}
}

func newMetrics() *Metrics {
	return &Metrics{
		ElementsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elements_read_total",
			Help:      "Top-level elements read from the input by element type.",
		}, []string{"type"}),
		RecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Records handed to the sink.",
		}),
		ElementsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elements_skipped_total",
			Help:      "Elements read that produce no record (relations).",
		}),
		TagsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tags_dropped_total",
			Help:      "Tags omitted from records by reason.",
		}, []string{"reason"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a conversion run is active, 0 otherwise.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the last conversion run.",
		}),
		CleanCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clean_cache_total",
			Help:      "Cleaning rule cache lookups by rule and result.",
		}, []string{"rule", "result"}),
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ElementsRead,
		m.RecordsWritten,
		m.ElementsSkipped,
		m.TagsDropped,
		m.PipelineRunning,
		m.RunDuration,
		m.CleanCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
