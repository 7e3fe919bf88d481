package domain

import (
	"math"
	"strconv"
	"strings"
)

// CreatedAttrs are the provenance attributes collected under "created".
var CreatedAttrs = []string{"version", "changeset", "timestamp", "user", "uid", "visible"}

func isCreatedAttr(name string) bool {
	for _, a := range CreatedAttrs {
		if a == name {
			return true
		}
	}
	return false
}

// Shaper builds output records from raw elements.
type Shaper struct {
	cleaner   Cleaner
	collector Collector
}

// NewShaper creates a Shaper. A nil cleaner uses StandardCleaner and a nil
// collector discards drop events.
func NewShaper(cleaner Cleaner, collector Collector) *Shaper {
	if cleaner == nil {
		cleaner = StandardCleaner{}
	}
	if collector == nil {
		collector = NopCollector{}
	}
	return &Shaper{cleaner: cleaner, collector: collector}
}

// ShapeElement shapes el with the standard cleaning rules.
func ShapeElement(el RawElement) (Record, bool) {
	return NewShaper(nil, nil).Shape(el)
}

// Shape returns the record for a node or way, or false for any other element.
func (s *Shaper) Shape(el RawElement) (Record, bool) {
	if el.Name != ElementNode && el.Name != ElementWay {
		return Record{}, false
	}

	rec := NewRecord()
	rec.Put(FieldType, el.Name)
	created := rec.EnsureNested(FieldCreated)

	var lat, lon float64
	for _, a := range el.Attrs {
		switch {
		case isCreatedAttr(a.Name):
			created.Set(a.Name, a.Value)
		case a.Name == "lat":
			lat = parseCoord(a.Value)
		case a.Name == "lon":
			lon = parseCoord(a.Value)
		default:
			rec.Put(a.Name, a.Value)
		}
	}

	st := structural{pos: lat != 0 && lon != 0}
	for _, c := range el.Children {
		if c.Kind == ChildNodeRef {
			st.refs = true
			break
		}
	}

	for _, c := range el.Children {
		switch c.Kind {
		case ChildNodeRef:
			rec.AppendNodeRef(c.Ref)
		case ChildTag:
			s.applyTag(&rec, el, st, c.K, c.V)
		}
	}

	if st.pos {
		rec.SetPos(lat, lon)
	}
	return rec, true
}

// structural records which fields the element's own structure will fill.
// Tags may use those names only when the structure leaves them empty.
type structural struct {
	pos  bool
	refs bool
}

func (st structural) reserves(name string) bool {
	return (name == FieldPos && st.pos) || (name == FieldNodeRefs && st.refs)
}

func (s *Shaper) applyTag(rec *Record, el RawElement, st structural, k, v string) {
	if HasProblemChars(k) {
		s.collector.TagDropped(el, k, v, DropProblemChars)
		return
	}
	if IsIgnoredAddress(k) {
		s.collector.TagDropped(el, k, v, DropIgnoredAddress)
		return
	}

	if IsLandUse(k) {
		if summary, ok := s.cleaner.LandUse(v); ok {
			rec.SetBare(FieldLandSum, summary)
		}
	}

	switch {
	case IsAmenity(k):
		rec.SetBare(FieldAmenity, s.cleaner.Amenity(v))
	case IsAddressField(k):
		addr := rec.EnsureNested(FieldAddress)
		switch {
		case IsStreetName(k):
			addr.Set("street", s.cleaner.Street(v))
		case IsPostcode(k):
			if pc, ok := s.cleaner.Postcode(v); ok {
				addr.Set("postcode", pc)
			} else {
				s.collector.TagDropped(el, k, v, DropPostcodeInvalid)
			}
		default:
			addr.Set(AddressSubKey(k), v)
		}
	case IsNamespaced(k):
		root, sub, _ := strings.Cut(k, ":")
		switch {
		case strings.Contains(sub, ":"):
			s.collector.TagDropped(el, k, v, DropNestedTooDeep)
		case st.reserves(root):
			s.collector.TagDropped(el, k, v, DropReserved)
		default:
			rec.SetNested(root, sub, v)
		}
	default:
		if st.reserves(k) {
			s.collector.TagDropped(el, k, v, DropReserved)
			return
		}
		rec.SetBare(k, v)
	}
}

// parseCoord parses a lat/lon attribute. Unparseable or non-finite values are
// treated as absent (zero).
func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
