package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
)

// ElementTransformer implements Transformer using the domain shaper.
type ElementTransformer struct {
	shaper *domain.Shaper
	logger *slog.Logger
}

// NewTransformer creates an ElementTransformer. cleaner and collector may be
// nil, in which case the standard rules and no reporting are used.
func NewTransformer(cleaner domain.Cleaner, collector domain.Collector, logger *slog.Logger) *ElementTransformer {
	return &ElementTransformer{
		shaper: domain.NewShaper(cleaner, collector),
		logger: logger,
	}
}

func (t *ElementTransformer) Transform(ctx context.Context, el domain.RawElement) (domain.Record, bool) {
	rec, ok := t.shaper.Shape(el)
	if !ok {
		t.logger.DebugContext(ctx, "element skipped", "element", el.Name, "id", el.ID())
		return domain.Record{}, false
	}
	return rec, true
}
