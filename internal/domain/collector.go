package domain

// DropReason explains why a tag did not make it into a record.
type DropReason string

const (
	DropProblemChars    DropReason = "problem_chars"
	DropIgnoredAddress  DropReason = "ignored_address"
	DropNestedTooDeep   DropReason = "nested_too_deep"
	DropReserved        DropReason = "reserved"
	DropPostcodeInvalid DropReason = "postcode_invalid"
)

// Collector receives reporting events while elements are read and shaped.
// Implementations must not influence the records being built.
type Collector interface {
	// ObserveElement is called once per element read, before shaping.
	ObserveElement(el RawElement)
	// TagDropped is called for every tag omitted from a record.
	TagDropped(el RawElement, key, value string, reason DropReason)
}

// NopCollector discards all events.
type NopCollector struct{}

func (NopCollector) ObserveElement(RawElement) {}

func (NopCollector) TagDropped(RawElement, string, string, DropReason) {}

// MultiCollector fans events out to several collectors in order.
type MultiCollector []Collector

func (m MultiCollector) ObserveElement(el RawElement) {
	for _, c := range m {
		c.ObserveElement(el)
	}
}

func (m MultiCollector) TagDropped(el RawElement, key, value string, reason DropReason) {
	for _, c := range m {
		c.TagDropped(el, key, value, reason)
	}
}
