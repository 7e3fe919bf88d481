// Package audit profiles the tags of an OSM extract while it is converted.
// It never changes the records being produced.
package audit

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
)

// maxStreetExamples caps the example names kept per unexpected street type.
const maxStreetExamples = 5

const elementOther = "other"

// Auditor collects counts about every element it observes. It implements
// domain.Collector and is safe for concurrent use.
type Auditor struct {
	logger *slog.Logger
	sample *rate.Sometimes

	mu                 sync.Mutex
	elements           map[string]int
	keyClasses         map[domain.KeyClass]int
	keys               map[string]int
	streetTypes        map[string][]string
	amenities          map[string]int
	landUses           map[string]int
	leisure            map[string]int
	natural            map[string]int
	erroneousPostcodes map[string]int
	dropped            map[domain.DropReason]int
}

// New creates an Auditor. Individual findings are logged at debug level,
// rate limited; the full picture is in Report.
func New(logger *slog.Logger) *Auditor {
	return &Auditor{
		logger:             logger,
		sample:             &rate.Sometimes{First: 10, Interval: time.Second},
		elements:           map[string]int{domain.ElementNode: 0, domain.ElementWay: 0, domain.ElementRelation: 0, elementOther: 0},
		keyClasses:         map[domain.KeyClass]int{domain.KeyLower: 0, domain.KeyLowerColon: 0, domain.KeyProblemChars: 0, domain.KeyOther: 0},
		keys:               make(map[string]int),
		streetTypes:        make(map[string][]string),
		amenities:          make(map[string]int),
		landUses:           make(map[string]int),
		leisure:            make(map[string]int),
		natural:            make(map[string]int),
		erroneousPostcodes: make(map[string]int),
		dropped:            make(map[domain.DropReason]int),
	}
}

func (a *Auditor) ObserveElement(el domain.RawElement) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch el.Name {
	case domain.ElementNode, domain.ElementWay, domain.ElementRelation:
		a.elements[el.Name]++
	default:
		a.elements[elementOther]++
	}

	for _, c := range el.Children {
		if c.Kind != domain.ChildTag {
			continue
		}
		a.keyClasses[domain.ClassifyKey(c.K)]++
		a.keys[c.K]++
		a.auditValue(el, c.K, c.V)
	}
}

func (a *Auditor) TagDropped(_ domain.RawElement, _, _ string, reason domain.DropReason) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropped[reason]++
}

func (a *Auditor) auditValue(el domain.RawElement, k, v string) {
	switch {
	case domain.IsStreetName(k):
		a.auditStreet(el, v)
	case domain.IsPostcode(k):
		if cleaned, ok := domain.CleanPostcode(v); !ok || cleaned != v {
			a.erroneousPostcodes[v]++
		}
	case domain.IsAmenity(k):
		countUnexpected(a.amenities, domain.ExpectedAmenities, v)
	case domain.IsLandUse(k):
		countUnexpected(a.landUses, domain.ExpectedLandUses, v)
	case domain.IsLeisure(k):
		countUnexpected(a.leisure, domain.ExpectedLeisure, v)
	case domain.IsNatural(k):
		countUnexpected(a.natural, domain.ExpectedNatural, v)
	}
}

func (a *Auditor) auditStreet(el domain.RawElement, street string) {
	st, ok := domain.StreetType(street)
	if !ok || slices.Contains(domain.ExpectedStreets, st) {
		return
	}
	examples := a.streetTypes[st]
	if slices.Contains(examples, street) {
		return
	}
	if len(examples) < maxStreetExamples {
		a.streetTypes[st] = append(examples, street)
	}
	a.sample.Do(func() {
		a.logger.Debug("unexpected street type", "street_type", st, "street", street, "element", el.Name, "id", el.ID())
	})
}

func countUnexpected(counts map[string]int, expected []string, v string) {
	if !slices.Contains(expected, v) {
		counts[v]++
	}
}
