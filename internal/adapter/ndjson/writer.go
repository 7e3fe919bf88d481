// Package ndjson writes records as newline-delimited JSON.
package ndjson

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
)

// Stdout is the path that selects standard output.
const Stdout = "-"

const writeBufferSize = 1 << 16

// Writer appends one JSON object per line. It implements pipeline.Loader.
type Writer struct {
	buf    *bufio.Writer
	closer io.Closer
	path   string
}

// Create truncates (or creates) path and returns a Writer for it.
func Create(path string) (*Writer, error) {
	if path == Stdout {
		return NewWriter(os.Stdout, nil, path), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return NewWriter(f, f, path), nil
}

// NewWriter writes to w. closer, when non-nil, is closed by Close.
func NewWriter(w io.Writer, closer io.Closer, path string) *Writer {
	return &Writer{buf: bufio.NewWriterSize(w, writeBufferSize), closer: closer, path: path}
}

// Load writes rec as one line.
func (w *Writer) Load(_ context.Context, rec domain.Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize record: %w", err)
	}
	if _, err := w.buf.Write(line); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	return nil
}

// Close flushes buffered lines and closes the file.
func (w *Writer) Close() error {
	err := w.buf.Flush()
	if err != nil {
		err = fmt.Errorf("flush %s: %w", w.path, err)
	}
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}
	return err
}
