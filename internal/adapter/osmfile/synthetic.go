package osmfile

import (
	"bytes"
	"fmt"
	"io"
)

var (
	syntheticAmenities = []string{"pub", "place_of_worship", "cafe", "police", "biergarten", "school"}
	syntheticReligions = []string{"christian", "muslim", "sikh", "hindu", "jewish"}
	syntheticLandUses  = []string{"residential", "quarry", "farmland", "retail", "unknown_value"}
	syntheticStreets   = []string{"Station road", "Moor lane", "Wake Green Aveune", "Hagley Road", "Bull Ring"}
	syntheticPostcodes = []string{"B152TT", "B15 2TT", "B5", "zzz"}
)

type syntheticState int

const (
	syntheticHeader syntheticState = iota
	syntheticBody
	syntheticFooter
	syntheticDone
)

// SyntheticReader generates a well-formed OSM XML document with n top-level
// elements. Content is produced on demand so arbitrarily large inputs can be
// streamed without being held in memory.
type SyntheticReader struct {
	n     int
	i     int
	state syntheticState
	buf   bytes.Buffer
}

// NewSyntheticReader returns a generator for n elements.
func NewSyntheticReader(n int) *SyntheticReader {
	return &SyntheticReader{n: n}
}

// WriteSynthetic writes a synthetic document of n elements to w.
func WriteSynthetic(w io.Writer, n int) (int64, error) {
	return io.Copy(w, NewSyntheticReader(n))
}

func (s *SyntheticReader) Read(p []byte) (int, error) {
	for s.buf.Len() < len(p) && s.state != syntheticDone {
		s.fill()
	}
	if s.buf.Len() == 0 {
		return 0, io.EOF
	}
	return s.buf.Read(p)
}

func (s *SyntheticReader) fill() {
	switch s.state {
	case syntheticHeader:
		s.buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
		s.buf.WriteString("<osm version=\"0.6\" generator=\"genosm\">\n")
		s.buf.WriteString(" <bounds minlat=\"52.38\" minlon=\"-2.03\" maxlat=\"52.61\" maxlon=\"-1.73\"/>\n")
		s.state = syntheticBody
	case syntheticBody:
		if s.i >= s.n {
			s.state = syntheticFooter
			return
		}
		s.writeElement(s.i)
		s.i++
	case syntheticFooter:
		s.buf.WriteString("</osm>\n")
		s.state = syntheticDone
	}
}

func (s *SyntheticReader) writeElement(i int) {
	id := i + 1
	meta := fmt.Sprintf(`id="%d" version="%d" changeset="%d" timestamp="2015-04-%02dT10:00:00Z" user="mapper%d" uid="%d"`,
		id, i%7+1, 1000+i/100, i%28+1, i%50, 5000+i%50)

	switch {
	case i%10 == 9:
		fmt.Fprintf(&s.buf, " <relation %s>\n", meta)
		fmt.Fprintf(&s.buf, "  <member type=\"way\" ref=\"%d\" role=\"outer\"/>\n", id-1)
		s.buf.WriteString("  <tag k=\"type\" v=\"multipolygon\"/>\n")
		s.buf.WriteString(" </relation>\n")
	case i%3 == 2:
		fmt.Fprintf(&s.buf, " <way %s>\n", meta)
		for j := 0; j < 4; j++ {
			fmt.Fprintf(&s.buf, "  <nd ref=\"%d\"/>\n", id-j-1)
		}
		fmt.Fprintf(&s.buf, "  <tag k=\"addr:street\" v=\"%s\"/>\n", syntheticStreets[i%len(syntheticStreets)])
		fmt.Fprintf(&s.buf, "  <tag k=\"addr:postcode\" v=\"%s\"/>\n", syntheticPostcodes[i%len(syntheticPostcodes)])
		fmt.Fprintf(&s.buf, "  <tag k=\"landuse\" v=\"%s\"/>\n", syntheticLandUses[i%len(syntheticLandUses)])
		s.buf.WriteString("  <tag k=\"name\" v=\"Block\"/>\n")
		s.buf.WriteString("  <tag k=\"name:en\" v=\"Block\"/>\n")
		s.buf.WriteString("  <tag k=\"addr:street:name\" v=\"dropped\"/>\n")
		s.buf.WriteString(" </way>\n")
	default:
		lat := 52.38 + float64(i%2300)/10000
		lon := -2.03 + float64(i%3000)/10000
		fmt.Fprintf(&s.buf, " <node %s lat=\"%.7f\" lon=\"%.7f\">\n", meta, lat, lon)
		amenity := syntheticAmenities[i%len(syntheticAmenities)]
		fmt.Fprintf(&s.buf, "  <tag k=\"amenity\" v=\"%s\"/>\n", amenity)
		if amenity == "place_of_worship" {
			fmt.Fprintf(&s.buf, "  <tag k=\"religion\" v=\"%s\"/>\n", syntheticReligions[i%len(syntheticReligions)])
		}
		s.buf.WriteString(" </node>\n")
	}
}
