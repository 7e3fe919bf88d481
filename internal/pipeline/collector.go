package pipeline

import (
	"github.com/couchcryptid/osm-map-etl/internal/domain"
	"github.com/couchcryptid/osm-map-etl/internal/observability"
)

// MetricsCollector counts dropped tags by reason.
type MetricsCollector struct {
	metrics *observability.Metrics
}

func NewMetricsCollector(metrics *observability.Metrics) *MetricsCollector {
	return &MetricsCollector{metrics: metrics}
}

func (c *MetricsCollector) ObserveElement(domain.RawElement) {}

func (c *MetricsCollector) TagDropped(_ domain.RawElement, _, _ string, reason domain.DropReason) {
	c.metrics.TagsDropped.WithLabelValues(string(reason)).Inc()
}
