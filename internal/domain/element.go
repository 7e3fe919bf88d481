package domain

// Top-level element names in an OSM document.
const (
	ElementNode     = "node"
	ElementWay      = "way"
	ElementRelation = "relation"
)

// Attr is a single element attribute, e.g. id="42".
type Attr struct {
	Name  string
	Value string
}

// ChildKind distinguishes the children of a top-level element.
type ChildKind int

const (
	// ChildTag is a <tag k="..." v="..."/> child.
	ChildTag ChildKind = iota
	// ChildNodeRef is a <nd ref="..."/> child of a way.
	ChildNodeRef
	// ChildOther is any other child (relation members, unknown elements).
	ChildOther
)

// Child is one child element of a node, way, or relation.
type Child struct {
	Kind ChildKind
	K    string // tag key, ChildTag only
	V    string // tag value, ChildTag only
	Ref  string // referenced node id, ChildNodeRef only
	Name string // element name, ChildOther only
}

// Tag returns a tag child.
func Tag(k, v string) Child {
	return Child{Kind: ChildTag, K: k, V: v}
}

// NodeRef returns a node-reference child.
func NodeRef(ref string) Child {
	return Child{Kind: ChildNodeRef, Ref: ref}
}

// RawElement is one top-level element read from the input stream. It lives
// only while it is being shaped.
type RawElement struct {
	Name     string
	Attrs    []Attr
	Children []Child
}

// Attr returns the value of the named attribute.
func (e RawElement) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ID returns the id attribute, or "" when absent.
func (e RawElement) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Tags returns the tag children in document order.
func (e RawElement) Tags() []Child {
	tags := make([]Child, 0, len(e.Children))
	for _, c := range e.Children {
		if c.Kind == ChildTag {
			tags = append(tags, c)
		}
	}
	return tags
}
