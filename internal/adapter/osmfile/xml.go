package osmfile

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
)

// XMLReader streams top-level elements from an OSM XML document. Only the
// element being returned is held in memory; everything already returned is
// owned by the caller and everything not of interest is skipped unread.
type XMLReader struct {
	dec  *xml.Decoder
	path string

	inRoot     bool
	rootClosed bool
}

// NewXMLReader reads OSM XML from r. path is used in error messages only.
// A leading byte-order mark is consumed; UTF-16 input with a BOM is
// transcoded to UTF-8.
func NewXMLReader(r io.Reader, path string) *XMLReader {
	dec := xml.NewDecoder(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	dec.CharsetReader = charsetReader
	return &XMLReader{dec: dec, path: path}
}

// Extract returns the next node, way, or relation. It returns io.EOF once the
// document element has been closed.
func (r *XMLReader) Extract(ctx context.Context) (domain.RawElement, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.RawElement{}, err
		}

		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			if !r.rootClosed {
				return domain.RawElement{}, r.parseError(io.ErrUnexpectedEOF)
			}
			return domain.RawElement{}, io.EOF
		}
		if err != nil {
			return domain.RawElement{}, r.parseError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case r.rootClosed:
				return domain.RawElement{}, r.parseError(fmt.Errorf("element <%s> after document element", t.Name.Local))
			case !r.inRoot:
				r.inRoot = true
			case isTopLevel(t.Name.Local):
				return r.readElement(t)
			default:
				if err := r.dec.Skip(); err != nil {
					return domain.RawElement{}, r.parseError(err)
				}
			}
		case xml.EndElement:
			r.inRoot = false
			r.rootClosed = true
		case xml.CharData:
			if !r.inRoot && len(strings.TrimSpace(string(t))) > 0 {
				return domain.RawElement{}, r.parseError(errors.New("text outside document element"))
			}
		}
	}
}

// Close is a no-op; the owner of the underlying reader closes it.
func (r *XMLReader) Close() error { return nil }

// readElement consumes start's subtree. Direct children are recorded; their
// own contents are skipped.
func (r *XMLReader) readElement(start xml.StartElement) (domain.RawElement, error) {
	el := domain.RawElement{
		Name:  start.Name.Local,
		Attrs: make([]domain.Attr, 0, len(start.Attr)),
	}
	for _, a := range start.Attr {
		el.Attrs = append(el.Attrs, domain.Attr{Name: a.Name.Local, Value: a.Value})
	}

	for {
		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			return domain.RawElement{}, r.parseError(io.ErrUnexpectedEOF)
		}
		if err != nil {
			return domain.RawElement{}, r.parseError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el.Children = append(el.Children, childFromStart(t))
			if err := r.dec.Skip(); err != nil {
				return domain.RawElement{}, r.parseError(err)
			}
		case xml.EndElement:
			return el, nil
		}
	}
}

func childFromStart(t xml.StartElement) domain.Child {
	switch t.Name.Local {
	case "tag":
		return domain.Tag(attrValue(t, "k"), attrValue(t, "v"))
	case "nd":
		return domain.NodeRef(attrValue(t, "ref"))
	default:
		return domain.Child{Kind: domain.ChildOther, Name: t.Name.Local}
	}
}

func attrValue(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func isTopLevel(name string) bool {
	switch name {
	case domain.ElementNode, domain.ElementWay, domain.ElementRelation:
		return true
	default:
		return false
	}
}

func (r *XMLReader) parseError(err error) error {
	return &ParseError{Path: r.path, Offset: r.dec.InputOffset(), Err: err}
}

// charsetReader handles the single-byte encodings seen in older extracts.
// UTF-8 needs no conversion and never reaches here. A UTF-16 declaration can
// only be read at all when a BOM was present, and then the input is already
// UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-16", "utf-16le", "utf-16be":
		return input, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}
