package domain

import (
	"regexp"
	"strings"
)

// Tag keys with dedicated handling.
const (
	KeyAmenity  = "amenity"
	KeyLandUse  = "landuse"
	KeyLeisure  = "leisure"
	KeyNatural  = "natural"
	KeyStreet   = "addr:street"
	KeyPostcode = "addr:postcode"

	addressPrefix = "addr:"
)

var (
	// problemCharsRe matches characters that cannot appear in a document
	// field name: "=+/&<>;'\"?%#$@,." and whitespace.
	problemCharsRe = regexp.MustCompile(`[=+/&<>;'"?%#$@,.\s]`)

	// addressRe matches any key in the addr namespace.
	addressRe = regexp.MustCompile(`^addr:`)

	// addressIgnoreRe matches addr keys with a second colon, e.g.
	// "addr:street:name", which would need two levels of nesting.
	addressIgnoreRe = regexp.MustCompile(`^addr:.*:`)

	// namespacedRe matches any key with a namespace separator.
	namespacedRe = regexp.MustCompile(`:`)

	// lowerRe and lowerColonRe classify well-formed keys for auditing.
	lowerRe      = regexp.MustCompile(`^[a-z_]*$`)
	lowerColonRe = regexp.MustCompile(`^[a-z_]*:[a-z_]*$`)
)

// HasProblemChars reports whether k contains punctuation or whitespace that
// makes it unusable as a field name. Such tags are always dropped.
func HasProblemChars(k string) bool {
	return problemCharsRe.MatchString(k)
}

// IsIgnoredAddress reports whether k is an addr key with more than one colon.
func IsIgnoredAddress(k string) bool {
	return addressIgnoreRe.MatchString(k)
}

// IsAddressField reports whether k is a single-level addr key ("addr:city").
func IsAddressField(k string) bool {
	return addressRe.MatchString(k) && !IsIgnoredAddress(k)
}

func IsStreetName(k string) bool { return k == KeyStreet }

func IsPostcode(k string) bool { return k == KeyPostcode }

func IsAmenity(k string) bool { return k == KeyAmenity }

func IsLandUse(k string) bool { return k == KeyLandUse }

func IsLeisure(k string) bool { return k == KeyLeisure }

func IsNatural(k string) bool { return k == KeyNatural }

// IsNamespaced reports whether k contains a colon.
func IsNamespaced(k string) bool {
	return namespacedRe.MatchString(k)
}

// AddressSubKey returns "city" for "addr:city".
func AddressSubKey(k string) string {
	return strings.TrimPrefix(k, addressPrefix)
}

// KeyClass buckets tag keys by shape for audit reporting.
type KeyClass string

const (
	KeyLower        KeyClass = "lower"
	KeyLowerColon   KeyClass = "lower_colon"
	KeyProblemChars KeyClass = "problemchars"
	KeyOther        KeyClass = "other"
)

// ClassifyKey returns the first matching class in the order lower,
// lower_colon, problemchars, other.
func ClassifyKey(k string) KeyClass {
	switch {
	case lowerRe.MatchString(k):
		return KeyLower
	case lowerColonRe.MatchString(k):
		return KeyLowerColon
	case HasProblemChars(k):
		return KeyProblemChars
	default:
		return KeyOther
	}
}
