// Package osmfile reads OSM exports as a forward-only stream of elements.
package osmfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
)

// Input formats.
const (
	FormatAuto = "auto"
	FormatXML  = "xml"
	FormatPBF  = "pbf"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

const readBufferSize = 1 << 20

// Extractor yields raw elements one at a time. It implements
// pipeline.Extractor.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawElement, error)
	Close() error
}

// File is an open input file together with its element stream.
type File struct {
	Extractor
	closers []io.Closer
}

// Open opens path and returns a stream of its elements. format is one of
// FormatAuto, FormatXML, FormatPBF; ".gz" inputs are decompressed on the fly.
func Open(ctx context.Context, path, format string) (*File, error) {
	resolved, err := ResolveFormat(path, format)
	if err != nil {
		return nil, err
	}

	var (
		src     io.Reader
		closers []io.Closer
	)
	if path == Stdin {
		src = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		src = f
		closers = append(closers, f)
	}

	src = bufio.NewReaderSize(src, readBufferSize)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(src)
		if err != nil {
			closeAll(closers)
			return nil, &ParseError{Path: path, Offset: -1, Err: fmt.Errorf("gzip header: %w", err)}
		}
		src = gz
		closers = append(closers, gz)
	}

	var ext Extractor
	switch resolved {
	case FormatPBF:
		ext = NewPBFReader(ctx, src, path)
	default:
		ext = NewXMLReader(src, path)
	}
	return &File{Extractor: ext, closers: closers}, nil
}

// Close stops the element stream and closes the underlying file.
func (f *File) Close() error {
	errs := []error{f.Extractor.Close()}
	for i := len(f.closers) - 1; i >= 0; i-- {
		errs = append(errs, f.closers[i].Close())
	}
	return errors.Join(errs...)
}

// ResolveFormat picks the decoder for path. "auto" selects PBF for ".pbf"
// files (optionally gzipped) and XML for everything else.
func ResolveFormat(path, format string) (string, error) {
	switch format {
	case FormatXML, FormatPBF:
		return format, nil
	case FormatAuto, "":
		if strings.HasSuffix(strings.TrimSuffix(path, ".gz"), ".pbf") {
			return FormatPBF, nil
		}
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unknown input format %q", format)
	}
}

func closeAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i].Close()
	}
}
