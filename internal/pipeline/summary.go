package pipeline

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Summary describes a completed (or aborted) run.
type Summary struct {
	ElementsRead    map[string]int // by element name
	RecordsWritten  int
	ElementsSkipped int
	Duration        time.Duration

	started time.Time
}

// Total returns the number of elements read across all types.
func (s Summary) Total() int {
	n := 0
	for _, c := range s.ElementsRead {
		n += c
	}
	return n
}

// LogValue renders the summary as a structured log group.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("elements_read", s.Total()),
		slog.Int("records_written", s.RecordsWritten),
		slog.Int("elements_skipped", s.ElementsSkipped),
	}
	for _, name := range []string{"node", "way", "relation"} {
		if n, ok := s.ElementsRead[name]; ok {
			attrs = append(attrs, slog.Int(name+"s", n))
		}
	}
	if s.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", s.Duration))
	}
	return slog.GroupValue(attrs...)
}

func (s *Summary) withDuration(clock clockwork.Clock) Summary {
	cp := *s
	if !s.started.IsZero() {
		cp.Duration = clock.Since(s.started)
	}
	return cp
}
