package osmfile

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
)

// PBFReader streams elements from an OSM PBF file and presents them in the
// same shape the XML reader produces.
type PBFReader struct {
	scanner *osmpbf.Scanner
	path    string
}

// NewPBFReader decodes PBF blocks from r with a single decoder goroutine so
// elements arrive strictly in file order.
func NewPBFReader(ctx context.Context, r io.Reader, path string) *PBFReader {
	return &PBFReader{scanner: osmpbf.New(ctx, r, 1), path: path}
}

// Extract returns the next element, or io.EOF at the end of the file.
func (r *PBFReader) Extract(ctx context.Context) (domain.RawElement, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawElement{}, err
	}
	for r.scanner.Scan() {
		switch o := r.scanner.Object().(type) {
		case *osm.Node:
			return nodeElement(o), nil
		case *osm.Way:
			return wayElement(o), nil
		case *osm.Relation:
			return relationElement(o), nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.RawElement{}, err
		}
		return domain.RawElement{}, &ParseError{Path: r.path, Offset: -1, Err: err}
	}
	return domain.RawElement{}, io.EOF
}

// Close stops the decoder goroutine.
func (r *PBFReader) Close() error {
	return r.scanner.Close()
}

func nodeElement(n *osm.Node) domain.RawElement {
	attrs := metaAttrs(int64(n.ID), n.Visible, n.Version, int64(n.ChangesetID), n.Timestamp, n.User, int64(n.UserID))
	attrs = append(attrs,
		domain.Attr{Name: "lat", Value: formatCoord(n.Lat)},
		domain.Attr{Name: "lon", Value: formatCoord(n.Lon)},
	)
	return domain.RawElement{
		Name:     domain.ElementNode,
		Attrs:    attrs,
		Children: tagChildren(n.Tags),
	}
}

func wayElement(w *osm.Way) domain.RawElement {
	children := make([]domain.Child, 0, len(w.Nodes)+len(w.Tags))
	for _, wn := range w.Nodes {
		children = append(children, domain.NodeRef(strconv.FormatInt(int64(wn.ID), 10)))
	}
	children = append(children, tagChildren(w.Tags)...)
	return domain.RawElement{
		Name:     domain.ElementWay,
		Attrs:    metaAttrs(int64(w.ID), w.Visible, w.Version, int64(w.ChangesetID), w.Timestamp, w.User, int64(w.UserID)),
		Children: children,
	}
}

func relationElement(rel *osm.Relation) domain.RawElement {
	children := make([]domain.Child, 0, len(rel.Members)+len(rel.Tags))
	for range rel.Members {
		children = append(children, domain.Child{Kind: domain.ChildOther, Name: "member"})
	}
	children = append(children, tagChildren(rel.Tags)...)
	return domain.RawElement{
		Name:     domain.ElementRelation,
		Attrs:    metaAttrs(int64(rel.ID), rel.Visible, rel.Version, int64(rel.ChangesetID), rel.Timestamp, rel.User, int64(rel.UserID)),
		Children: children,
	}
}

// metaAttrs renders element metadata in the attribute order used by the
// OSM XML exporters.
func metaAttrs(id int64, visible bool, version int, changeset int64, ts time.Time, user string, uid int64) []domain.Attr {
	attrs := make([]domain.Attr, 0, 9)
	attrs = append(attrs, domain.Attr{Name: "id", Value: strconv.FormatInt(id, 10)})
	if !visible {
		attrs = append(attrs, domain.Attr{Name: "visible", Value: "false"})
	}
	if version != 0 {
		attrs = append(attrs, domain.Attr{Name: "version", Value: strconv.Itoa(version)})
	}
	if changeset != 0 {
		attrs = append(attrs, domain.Attr{Name: "changeset", Value: strconv.FormatInt(changeset, 10)})
	}
	if !ts.IsZero() {
		attrs = append(attrs, domain.Attr{Name: "timestamp", Value: ts.UTC().Format(time.RFC3339)})
	}
	if user != "" {
		attrs = append(attrs, domain.Attr{Name: "user", Value: user})
	}
	if uid != 0 {
		attrs = append(attrs, domain.Attr{Name: "uid", Value: strconv.FormatInt(uid, 10)})
	}
	return attrs
}

func tagChildren(tags osm.Tags) []domain.Child {
	children := make([]domain.Child, 0, len(tags))
	for _, t := range tags {
		children = append(children, domain.Tag(t.Key, t.Value))
	}
	return children
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
