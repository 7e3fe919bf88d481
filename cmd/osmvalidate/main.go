// Command osmvalidate checks an NDJSON file written by osmetl (SINK=file)
// against the record invariants: one JSON object per line, a node or way
// type, provenance under "created", at most one level of nesting, a
// well-formed position, node references only on ways, and cleaned address
// fields.
//
// Usage:
//
//	go run ./cmd/osmvalidate -in data/birmingham_england.osm.json
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
)

// maxLine bounds a single record; ways can carry thousands of node refs.
const maxLine = 64 << 20

// maxReported caps the errors kept per phase.
const maxReported = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	failed int
}

func (p *phase) errorf(format string, args ...any) {
	p.failed++
	if len(p.errors) < maxReported {
		p.errors = append(p.errors, fmt.Sprintf(format, args...))
	}
}

func (p *phase) passed() bool { return p.failed == 0 }

func main() {
	in := flag.String("in", "", "NDJSON file produced by osmetl, - for stdin")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*in, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(path string, out io.Writer) int {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: open %s: %v\n", path, err)
			return 1
		}
		defer f.Close()
		r = f
	}

	fmt.Fprintln(out, "=== OSM Record Validation ===")
	fmt.Fprintln(out)

	v := newValidator()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), maxLine)
	line := 0
	for sc.Scan() {
		line++
		v.check(line, sc.Bytes())
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read %s: %v\n", path, err)
		return 1
	}

	allPassed := true
	for _, p := range v.phases() {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", p.failed)
			allPassed = false
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d (%d nodes, %d ways)\n", line, v.nodes, v.ways)

	for _, p := range v.phases() {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
		if p.failed > len(p.errors) {
			fmt.Fprintf(out, "  ... and %d more\n", p.failed-len(p.errors))
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}
