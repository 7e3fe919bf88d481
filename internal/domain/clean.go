package domain

import "regexp"

var (
	// streetTypeRe finds the terminal word of a street name, optionally
	// ending in a period: "High road" -> "road", "Park Ave." -> "Ave.".
	streetTypeRe = regexp.MustCompile(`(?i)\b\S+\.?$`)

	// postcodeRe matches a full UK postcode: outward code, space, inward code.
	postcodeRe = regexp.MustCompile(`[A-Z]{1,2}[\dR][\dA-Z]? \d[A-Z]{2}`)

	// postcodeNoSpaceRe matches a full postcode with the space missing.
	postcodeNoSpaceRe = regexp.MustCompile(`[A-Z]{1,2}[\dR][\dA-Z]?\d[A-Z]{2}`)

	// partialPostcodeRe matches an outward code on its own.
	partialPostcodeRe = regexp.MustCompile(`[A-Z]{1,2}[\dR][\dA-Z]?`)
)

// StreetMapping corrects the terminal word of a street name. Keys are matched
// exactly.
var StreetMapping = map[string]string{
	"lane":   "Lane",
	"road":   "Road",
	"Aveune": "Avenue",
}

// AmenityMapping folds amenity values into preferred categories. Values not
// listed are kept unchanged.
var AmenityMapping = map[string]string{
	"police":     "police_station",
	"biergarten": "pub",
}

// LandUseMapping collapses landuse values into a handful of summary
// categories. Values not listed produce no summary.
var LandUseMapping = map[string]string{
	"allotments":              "agricultural",
	"farm":                    "agricultural",
	"farmland":                "agricultural",
	"farmyard":                "agricultural",
	"field":                   "agricultural",
	"greenhouse_horticulture": "agricultural",
	"meadow":                  "agricultural",
	"orchard":                 "agricultural",
	"paddock":                 "agricultural",
	"pasture":                 "agricultural",
	"plant_nursery":           "agricultural",
	"vineyard":                "agricultural",
	"commercial":              "commercial",
	"retail":                  "commercial",
	"basin":                   "green_space",
	"cemetery":                "green_space",
	"forest":                  "green_space",
	"grass":                   "green_space",
	"graveyard":               "green_space",
	"greenfield":              "green_space",
	"nature_reserve":          "green_space",
	"park":                    "green_space",
	"recreation_ground":       "green_space",
	"reservoir":               "green_space",
	"village_green":           "green_space",
	"brownfield":              "industrial",
	"construction":            "industrial",
	"industrial":              "industrial",
	"landfill":                "industrial",
	"quarry":                  "industrial",
	"railway":                 "industrial",
	"garages":                 "residential",
	"residential":             "residential",
}

// Expected values per key. These only drive audit reports; cleaning never
// consults them.
var (
	ExpectedStreets = []string{
		"Street", "Avenue", "Close", "Drive", "Court", "Place", "Square", "Lane",
		"Road", "Trail", "Way", "Walk", "View", "Rise", "Grove", "Croft",
		"Crescent", "Hill", "Mews", "Row", "Gardens", "East", "West", "North",
	}
	ExpectedAmenities = []string{
		"pub", "parking", "restaurant", "cafe", "fast_food", "toilets",
		"telephone", "school", "college", "university", "post_box", "bench",
		"pharmacy", "fuel", "place_of_worship", "grit_bin", "post_office",
		"fire_station", "grave_yard",
	}
	ExpectedLandUses = []string{
		"residential", "grass", "meadow", "farmland", "industrial", "forest",
		"farmyard", "retail", "commercial", "recreation_ground",
		"greenhouse_horticulture", "brownfield", "paddock", "orchard",
		"graveyard", "farm", "cemetery", "allotments", "construction",
		"pasture", "reservoir",
	}
	ExpectedNatural = []string{"wood", "tree", "water"}
	ExpectedLeisure = []string{"garden", "park", "pitch", "playground", "golf_course", "stadium"}
)

// StreetType returns the terminal word of a street name.
func StreetType(street string) (string, bool) {
	loc := streetTypeRe.FindStringIndex(street)
	if loc == nil {
		return "", false
	}
	return street[loc[0]:loc[1]], true
}

// CleanStreet replaces a misspelled or lower-case terminal word using
// StreetMapping, keeping the rest of the name verbatim.
func CleanStreet(street string) string {
	loc := streetTypeRe.FindStringIndex(street)
	if loc == nil {
		return street
	}
	fixed, ok := StreetMapping[street[loc[0]:loc[1]]]
	if !ok {
		return street
	}
	return street[:loc[0]] + fixed
}

// CleanPostcode validates and repairs a postcode. It returns false when the
// value does not look like a postcode at all, in which case the caller must
// omit the field.
func CleanPostcode(postcode string) (string, bool) {
	switch {
	case postcodeRe.MatchString(postcode):
		return postcode, true
	case postcodeNoSpaceRe.MatchString(postcode):
		r := []rune(postcode)
		cut := len(r) - 3
		return string(r[:cut]) + " " + string(r[cut:]), true
	case partialPostcodeRe.MatchString(postcode):
		return postcode, true
	default:
		return "", false
	}
}

// CleanAmenity maps an amenity value through AmenityMapping, keeping values
// that are not listed.
func CleanAmenity(amenity string) string {
	if mapped, ok := AmenityMapping[amenity]; ok {
		return mapped
	}
	return amenity
}

// SummariseLandUse returns the summary category for a landuse value.
func SummariseLandUse(landuse string) (string, bool) {
	summary, ok := LandUseMapping[landuse]
	return summary, ok
}

// Cleaner applies the value-cleaning rules used while shaping records.
type Cleaner interface {
	Street(v string) string
	Postcode(v string) (string, bool)
	Amenity(v string) string
	LandUse(v string) (string, bool)
}

// StandardCleaner implements Cleaner with the package-level rules.
type StandardCleaner struct{}

func (StandardCleaner) Street(v string) string { return CleanStreet(v) }
func (StandardCleaner) Postcode(v string) (string, bool) { return CleanPostcode(v) }
func (StandardCleaner) Amenity(v string) string { return CleanAmenity(v) }
func (StandardCleaner) LandUse(v string) (string, bool) { return SummariseLandUse(v) }
