// Command genosm writes a synthetic OSM XML document for load and memory
// testing of osmetl. Content is generated on the fly, so very large documents
// can be produced without holding them in memory.
//
// Usage:
//
//	go run ./cmd/genosm -n 1000000 -out data/synthetic.osm.gz
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/osm-map-etl/internal/adapter/osmfile"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() (err error) {
	n := flag.Int("n", 100000, "number of top-level elements to generate")
	out := flag.String("out", "-", "output path, gzipped when it ends in .gz; - for stdout")
	flag.Parse()

	if *n < 0 {
		flag.Usage()
		return fmt.Errorf("-n must not be negative")
	}

	var w io.Writer = os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { err = errors.Join(err, f.Close()) }()
		w = f
	}

	buf := bufio.NewWriterSize(w, 1<<20)
	w = buf
	if strings.HasSuffix(*out, ".gz") {
		gz := gzip.NewWriter(buf)
		defer func() { err = errors.Join(err, gz.Close(), buf.Flush()) }()
		w = gz
	} else {
		defer func() { err = errors.Join(err, buf.Flush()) }()
	}

	written, err := osmfile.WriteSynthetic(w, *n)
	if err != nil {
		return fmt.Errorf("write synthetic document: %w", err)
	}
	log.Printf("wrote %d elements (%d bytes uncompressed) to %s", *n, written, *out)
	return nil
}
