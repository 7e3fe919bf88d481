// Command osmetl converts an OSM extract (XML, gzipped XML, or PBF) into
// document records and writes them to the configured sink. It is configured
// entirely through environment variables; see internal/config.
//
// Usage:
//
//	OSM_INPUT=data/birmingham_england.osm SINK=sqlite go run ./cmd/osmetl
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/osm-map-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/osm-map-etl/internal/adapter/kafka"
	"github.com/couchcryptid/osm-map-etl/internal/adapter/ndjson"
	"github.com/couchcryptid/osm-map-etl/internal/adapter/osmfile"
	"github.com/couchcryptid/osm-map-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/osm-map-etl/internal/audit"
	"github.com/couchcryptid/osm-map-etl/internal/config"
	"github.com/couchcryptid/osm-map-etl/internal/domain"
	"github.com/couchcryptid/osm-map-etl/internal/observability"
	"github.com/couchcryptid/osm-map-etl/internal/pipeline"
)

type sink interface {
	pipeline.Loader
	io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Error("conversion failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	metrics := observability.NewMetrics()

	input, err := osmfile.Open(ctx, cfg.InputPath, cfg.InputFormat)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := input.Close(); cerr != nil {
			logger.Error("input close error", "error", cerr)
		}
	}()

	out, err := openSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		// Flush whatever was written, even after a failed run.
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close %s sink: %w", cfg.Sink, cerr))
		}
	}()

	var cleaner domain.Cleaner = domain.StandardCleaner{}
	if cfg.CleanCacheSize > 0 {
		cleaner, err = pipeline.NewCachedCleaner(cleaner, cfg.CleanCacheSize, metrics)
		if err != nil {
			return err
		}
	}

	collector := domain.MultiCollector{pipeline.NewMetricsCollector(metrics)}
	var auditor *audit.Auditor
	if cfg.AuditEnabled {
		auditor = audit.New(logger)
		collector = append(collector, auditor)
	}

	transformer := pipeline.NewTransformer(cleaner, collector, logger)
	p := pipeline.New(input, transformer, out, logger, metrics, pipeline.Options{
		Collector:        collector,
		Clock:            clockwork.NewRealClock(),
		ProgressInterval: cfg.ProgressInterval,
	})

	logger.Info("conversion starting",
		"input", cfg.InputPath,
		"format", cfg.InputFormat,
		"sink", cfg.Sink,
		"clean_cache_size", cfg.CleanCacheSize,
		"audit", cfg.AuditEnabled,
	)

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServing := context.WithCancel(gctx)
	defer stopServing()

	g.Go(func() error {
		defer stopServing()
		_, err := p.Run(gctx)
		return err
	})
	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, p, cfg.ShutdownTimeout, logger)
		g.Go(func() error { return srv.Serve(serveCtx) })
	}

	err = g.Wait()
	if auditor != nil {
		logger.Info("audit report", "audit", auditor.Report())
	}
	return err
}

func openSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (sink, error) {
	switch cfg.Sink {
	case config.SinkKafka:
		return kafkaadapter.NewWriter(cfg, logger), nil
	case config.SinkSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		if err := store.Reset(ctx); err != nil {
			return nil, errors.Join(err, store.Close())
		}
		return store, nil
	default:
		w, err := ndjson.Create(cfg.OutputPath)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
}
