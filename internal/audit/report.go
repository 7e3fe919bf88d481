package audit

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
)

// logTopKeys bounds the key frequency list in the logged report.
const logTopKeys = 20

// Count is a value and how often it was seen.
type Count struct {
	Value string
	Count int
}

// StreetType is an unexpected terminal street word with example names.
type StreetType struct {
	Type     string
	Examples []string
}

// Report is a snapshot of everything the Auditor has seen.
type Report struct {
	Elements            map[string]int
	KeyClasses          map[domain.KeyClass]int
	Keys                []Count // most frequent first
	UnexpectedStreets   []StreetType
	UnexpectedAmenities []Count
	UnexpectedLandUses  []Count
	UnexpectedLeisure   []Count
	UnexpectedNatural   []Count
	ErroneousPostcodes  []Count
	DroppedTags         map[domain.DropReason]int
}

// Report returns the current findings. Count lists are ordered by
// descending count, then value.
func (a *Auditor) Report() Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	streets := make([]StreetType, 0, len(a.streetTypes))
	for _, st := range slices.Sorted(maps.Keys(a.streetTypes)) {
		streets = append(streets, StreetType{Type: st, Examples: slices.Clone(a.streetTypes[st])})
	}

	return Report{
		Elements:            maps.Clone(a.elements),
		KeyClasses:          maps.Clone(a.keyClasses),
		Keys:                sortedCounts(a.keys),
		UnexpectedStreets:   streets,
		UnexpectedAmenities: sortedCounts(a.amenities),
		UnexpectedLandUses:  sortedCounts(a.landUses),
		UnexpectedLeisure:   sortedCounts(a.leisure),
		UnexpectedNatural:   sortedCounts(a.natural),
		ErroneousPostcodes:  sortedCounts(a.erroneousPostcodes),
		DroppedTags:         maps.Clone(a.dropped),
	}
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for v, n := range m {
		out = append(out, Count{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return out
}

// LogValue renders the report as nested log groups.
func (r Report) LogValue() slog.Value {
	streets := make([]slog.Attr, 0, len(r.UnexpectedStreets))
	for _, st := range r.UnexpectedStreets {
		streets = append(streets, slog.Any(st.Type, st.Examples))
	}

	keys := r.Keys
	if len(keys) > logTopKeys {
		keys = keys[:logTopKeys]
	}

	return slog.GroupValue(
		slog.Attr{Key: "elements", Value: intGroup(r.Elements)},
		slog.Attr{Key: "key_classes", Value: intGroup(r.KeyClasses)},
		slog.Attr{Key: "top_keys", Value: countGroup(keys)},
		slog.Attr{Key: "unexpected_streets", Value: slog.GroupValue(streets...)},
		slog.Attr{Key: "unexpected_amenities", Value: countGroup(r.UnexpectedAmenities)},
		slog.Attr{Key: "unexpected_landuse", Value: countGroup(r.UnexpectedLandUses)},
		slog.Attr{Key: "unexpected_leisure", Value: countGroup(r.UnexpectedLeisure)},
		slog.Attr{Key: "unexpected_natural", Value: countGroup(r.UnexpectedNatural)},
		slog.Attr{Key: "erroneous_postcodes", Value: countGroup(r.ErroneousPostcodes)},
		slog.Attr{Key: "dropped_tags", Value: intGroup(r.DroppedTags)},
	)
}

func intGroup[K ~string](m map[K]int) slog.Value {
	attrs := make([]slog.Attr, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		attrs = append(attrs, slog.Int(string(k), m[k]))
	}
	return slog.GroupValue(attrs...)
}

func countGroup(counts []Count) slog.Value {
	attrs := make([]slog.Attr, 0, len(counts))
	for _, c := range counts {
		attrs = append(attrs, slog.Int(c.Value, c.Count))
	}
	return slog.GroupValue(attrs...)
}
