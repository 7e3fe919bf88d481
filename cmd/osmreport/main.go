// Command osmreport summarises a SQLite document store written by osmetl
// (SINK=sqlite) as bar charts: places of worship by religion, land-use
// categories, and the most active editors. Charts are written as PNG or SVG
// images into -out; -text prints them to the terminal instead.
//
// Usage:
//
//	go run ./cmd/osmreport -db osm.db -top 50 -out charts -format svg
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/couchcryptid/osm-map-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/osm-map-etl/internal/report"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dbPath := flag.String("db", "osm.db", "path to the SQLite store written by osmetl")
	top := flag.Int("top", 50, "number of editors to show")
	outDir := flag.String("out", "charts", "directory for chart images")
	format := flag.String("format", report.FormatPNG, "image format: png or svg")
	text := flag.Bool("text", false, "print text charts to stdout instead of writing images")
	width := flag.Int("width", 40, "width of the longest text bar")
	flag.Parse()

	if *top <= 0 {
		flag.Usage()
		return fmt.Errorf("-top must be positive")
	}
	if *format != report.FormatPNG && *format != report.FormatSVG {
		flag.Usage()
		return fmt.Errorf("-format must be %s or %s", report.FormatPNG, report.FormatSVG)
	}
	if _, err := os.Stat(*dbPath); err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	ctx := context.Background()
	store, err := sqlite.Open(ctx, *dbPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d records in %s\n\n", n, *dbPath)

	worship, err := store.PlacesOfWorshipByReligion(ctx)
	if err != nil {
		return err
	}
	landUse, err := store.LandUseSummary(ctx)
	if err != nil {
		return err
	}
	editors, err := store.TopEditors(ctx, *top)
	if err != nil {
		return err
	}

	charts := []namedChart{
		{"places_of_worship", report.Chart{Title: "Cultural diversity based on places of worship", XLabel: "Religion", YLabel: "Places of worship", Bars: bars(worship)}},
		{"land_use", report.Chart{Title: "Land use summary", XLabel: "Category", YLabel: "Count", Bars: bars(landUse)}},
		{"top_editors", report.Chart{Title: fmt.Sprintf("Edits by user (top %d)", *top), XLabel: "Username", YLabel: "Count", Bars: bars(editors)}},
	}

	if *text {
		for _, nc := range charts {
			nc.chart.Width = *width
			if err := nc.chart.Render(os.Stdout); err != nil {
				return err
			}
			fmt.Println()
		}
		return nil
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", *outDir, err)
	}
	for _, nc := range charts {
		path, err := nc.chart.SaveImage(*outDir, nc.name, *format)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d bars)\n", path, len(nc.chart.Bars))
	}
	return nil
}

type namedChart struct {
	name  string
	chart report.Chart
}

func bars(counts []sqlite.Count) []report.Bar {
	out := make([]report.Bar, len(counts))
	for i, c := range counts {
		out[i] = report.Bar{Label: c.Label, Value: c.Count}
	}
	return out
}
