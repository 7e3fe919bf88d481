package domain

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Field names with fixed meaning in every record.
const (
	FieldType     = "type"
	FieldCreated  = "created"
	FieldAddress  = "address"
	FieldLandSum  = "land_sum"
	FieldAmenity  = "amenity"
	FieldPos      = "pos"
	FieldNodeRefs = "node_refs"

	// SubKeyBare holds a bare value that shares its field with namespaced keys.
	SubKeyBare = "v"
)

// FieldKind tags the two shapes a record field can take.
type FieldKind int

const (
	Scalar FieldKind = iota
	Nested
)

// Nested fields map sub-keys to values in insertion order.
type NestedMap = orderedmap.OrderedMap[string, string]

// Field is a record field value: either a scalar string or a one-level
// mapping of string to string.
type Field struct {
	Kind   FieldKind
	Value  string
	Fields *NestedMap
}

// ScalarField returns a scalar field.
func ScalarField(v string) Field {
	return Field{Kind: Scalar, Value: v}
}

// NestedField returns an empty nested field.
func NestedField() Field {
	return Field{Kind: Nested, Fields: orderedmap.New[string, string]()}
}

// MarshalJSON encodes scalars as strings and nested fields as objects.
func (f Field) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case Scalar:
		return json.Marshal(f.Value)
	case Nested:
		if f.Fields == nil {
			return []byte("{}"), nil
		}
		return f.Fields.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown field kind %d", f.Kind)
	}
}

// Record is the shaped output for one node or way.
type Record struct {
	fields   *orderedmap.OrderedMap[string, Field]
	nodeRefs []string
	pos      *[2]float64
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{fields: orderedmap.New[string, Field]()}
}

// Get returns the named field.
func (r Record) Get(name string) (Field, bool) {
	if r.fields == nil {
		return Field{}, false
	}
	return r.fields.Get(name)
}

// Scalar returns the value of a scalar field.
func (r Record) Scalar(name string) (string, bool) {
	f, ok := r.Get(name)
	if !ok || f.Kind != Scalar {
		return "", false
	}
	return f.Value, true
}

// Sub returns a value from a nested field.
func (r Record) Sub(name, key string) (string, bool) {
	f, ok := r.Get(name)
	if !ok || f.Kind != Nested {
		return "", false
	}
	return f.Fields.Get(key)
}

// Type is the source element name.
func (r Record) Type() string {
	t, _ := r.Scalar(FieldType)
	return t
}

// ID is the source element id, if it was carried as an attribute.
func (r Record) ID() string {
	id, _ := r.Scalar("id")
	return id
}

// Len is the number of named fields, excluding node_refs and pos.
func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Names lists field names in insertion order.
func (r Record) Names() []string {
	names := make([]string, 0, r.Len())
	if r.fields == nil {
		return names
	}
	for p := r.fields.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	return names
}

// NodeRefs returns the way's node references in document order.
func (r Record) NodeRefs() []string { return r.nodeRefs }

// Pos returns [lat, lon] when the element carried a usable position.
func (r Record) Pos() ([2]float64, bool) {
	if r.pos == nil {
		return [2]float64{}, false
	}
	return *r.pos, true
}

// Put stores a scalar unconditionally, replacing any previous value.
func (r *Record) Put(name, value string) {
	r.fields.Set(name, ScalarField(value))
}

// SetBare writes a bare value. A nested field with the same name keeps its
// sub-keys and gains the value under "v"; anything else is overwritten.
func (r *Record) SetBare(name, value string) {
	existing, ok := r.fields.Get(name)
	if ok && existing.Kind == Nested {
		existing.Fields.Set(SubKeyBare, value)
		return
	}
	r.fields.Set(name, ScalarField(value))
}

// SetNested writes value under name.key. A scalar already stored under name
// is moved into the new nested field as "v".
func (r *Record) SetNested(name, key, value string) {
	r.EnsureNested(name).Set(key, value)
}

// EnsureNested returns the nested mapping stored under name, creating it or
// converting a scalar into {"v": scalar} as needed.
func (r *Record) EnsureNested(name string) *NestedMap {
	existing, ok := r.fields.Get(name)
	if ok && existing.Kind == Nested {
		return existing.Fields
	}
	f := NestedField()
	if ok {
		f.Fields.Set(SubKeyBare, existing.Value)
	}
	r.fields.Set(name, f)
	return f.Fields
}

// AppendNodeRef adds a node reference, creating the sequence on first use.
func (r *Record) AppendNodeRef(ref string) {
	r.nodeRefs = append(r.nodeRefs, ref)
}

// SetPos attaches a position.
func (r *Record) SetPos(lat, lon float64) {
	r.pos = &[2]float64{lat, lon}
}

// MarshalJSON encodes the record as a single JSON object: named fields in
// insertion order, then node_refs, then pos.
func (r Record) MarshalJSON() ([]byte, error) {
	doc := orderedmap.New[string, any]()
	for _, name := range r.Names() {
		f, _ := r.fields.Get(name)
		doc.Set(name, f)
	}
	if len(r.nodeRefs) > 0 {
		doc.Set(FieldNodeRefs, r.nodeRefs)
	}
	if r.pos != nil {
		doc.Set(FieldPos, r.pos[:])
	}
	return doc.MarshalJSON()
}
