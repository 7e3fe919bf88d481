package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
	"github.com/couchcryptid/osm-map-etl/internal/observability"
)

const tracerName = "github.com/couchcryptid/osm-map-etl/internal/pipeline"

// Extractor yields raw elements in document order and io.EOF at the end.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawElement, error)
}

// Transformer shapes a raw element into a record. ok is false when the
// element does not produce one.
type Transformer interface {
	Transform(ctx context.Context, el domain.RawElement) (rec domain.Record, ok bool)
}

// Loader writes a single record to the destination.
type Loader interface {
	Load(ctx context.Context, rec domain.Record) error
}

// Options tunes a Pipeline. The zero value is usable.
type Options struct {
	// Collector observes every element read. Defaults to domain.NopCollector.
	Collector domain.Collector
	// Clock drives the run duration and progress ticker. Defaults to the real clock.
	Clock clockwork.Clock
	// ProgressInterval between progress log lines; zero disables them.
	ProgressInterval time.Duration
}

// Pipeline drives one extract-transform-load pass over an input.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	collector   domain.Collector
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	tracer      trace.Tracer
	progress    time.Duration
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, l Loader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		collector:   opts.Collector,
		logger:      logger,
		metrics:     metrics,
		clock:       opts.Clock,
		tracer:      otel.Tracer(tracerName),
		progress:    opts.ProgressInterval,
	}
	if p.collector == nil {
		p.collector = domain.NopCollector{}
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	return p
}

// CheckReadiness returns nil once the pipeline has written at least one
// record, or an error describing why it is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not written any records yet")
	}
	return nil
}

// Run reads the input to the end. It stops at the first extract or load
// error and returns ctx.Err() when cancelled. The summary is valid in
// every case and covers the elements processed so far.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	p.logger.Info("pipeline started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := p.clock.Now()
	sum := Summary{ElementsRead: make(map[string]int), started: start}

	err := p.loop(ctx, &sum)

	sum.Duration = p.clock.Since(start)
	p.metrics.RunDuration.Set(sum.Duration.Seconds())
	span.SetAttributes(
		attribute.Int("osm.elements_read", sum.Total()),
		attribute.Int("osm.records_written", sum.RecordsWritten),
		attribute.Int("osm.elements_skipped", sum.ElementsSkipped),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Error("pipeline failed", "error", err, "summary", sum)
		return sum, err
	}
	p.logger.Info("pipeline finished", "summary", sum)
	return sum, nil
}

func (p *Pipeline) loop(ctx context.Context, sum *Summary) error {
	var tick <-chan time.Time
	if p.progress > 0 {
		ticker := p.clock.NewTicker(p.progress)
		defer ticker.Stop()
		tick = ticker.Chan()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-tick:
			p.logger.Info("pipeline progress", "summary", sum.withDuration(p.clock))
		default:
		}

		el, err := p.extractor.Extract(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("extract: %w", err)
		}

		sum.ElementsRead[el.Name]++
		p.metrics.ElementsRead.WithLabelValues(el.Name).Inc()
		p.collector.ObserveElement(el)

		rec, ok := p.transformer.Transform(ctx, el)
		if !ok {
			sum.ElementsSkipped++
			p.metrics.ElementsSkipped.Inc()
			continue
		}

		if err := p.loader.Load(ctx, rec); err != nil {
			return fmt.Errorf("load %s %s: %w", rec.Type(), rec.ID(), err)
		}
		sum.RecordsWritten++
		p.metrics.RecordsWritten.Inc()
		p.ready.Store(true)
	}
}
