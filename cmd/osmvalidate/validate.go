package main

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
)

type validator struct {
	shape    phase
	nesting  phase
	position phase
	refs     phase
	address  phase

	nodes, ways int
}

func newValidator() *validator {
	return &validator{
		shape:    phase{name: "Record shape"},
		nesting:  phase{name: "Field nesting"},
		position: phase{name: "Position"},
		refs:     phase{name: "Node references"},
		address:  phase{name: "Address cleaning"},
	}
}

func (v *validator) phases() []*phase {
	return []*phase{&v.shape, &v.nesting, &v.position, &v.refs, &v.address}
}

func (v *validator) check(line int, data []byte) {
	var rec map[string]json.RawMessage
	if err := json.Unmarshal(data, &rec); err != nil {
		v.shape.errorf("line %d: not a JSON object: %v", line, err)
		return
	}

	var typ string
	if err := json.Unmarshal(rec[domain.FieldType], &typ); err != nil || (typ != domain.ElementNode && typ != domain.ElementWay) {
		v.shape.errorf("line %d: type must be node or way, got %s", line, rec[domain.FieldType])
	}
	switch typ {
	case domain.ElementNode:
		v.nodes++
	case domain.ElementWay:
		v.ways++
	}

	var created map[string]json.RawMessage
	if err := json.Unmarshal(rec[domain.FieldCreated], &created); err != nil || created == nil {
		v.shape.errorf("line %d: created must be an object", line)
	}

	for name, raw := range rec {
		// pos and node_refs hold tag values when the element has no
		// coordinates or node references of its own.
		isList := bytes.HasPrefix(bytes.TrimSpace(raw), []byte("["))
		switch {
		case name == domain.FieldPos && isList:
			v.checkPos(line, raw)
		case name == domain.FieldNodeRefs && isList:
			v.checkRefs(line, typ, raw)
		default:
			v.checkField(line, name, raw)
		}
	}

	if raw, ok := rec[domain.FieldAddress]; ok {
		v.checkAddress(line, raw)
	}
}

// checkField requires a string or an object of strings.
func (v *validator) checkField(line int, name string, raw json.RawMessage) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return
	}
	var nested map[string]string
	if err := json.Unmarshal(raw, &nested); err != nil {
		v.nesting.errorf("line %d: field %q is neither a string nor a flat object: %s", line, name, raw)
	}
}

func (v *validator) checkPos(line int, raw json.RawMessage) {
	var pos []float64
	if err := json.Unmarshal(raw, &pos); err != nil || len(pos) != 2 {
		v.position.errorf("line %d: pos must be [lat, lon], got %s", line, raw)
		return
	}
	for _, c := range pos {
		if c == 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			v.position.errorf("line %d: pos has an absent coordinate: %s", line, raw)
			return
		}
	}
}

func (v *validator) checkRefs(line int, typ string, raw json.RawMessage) {
	if typ != domain.ElementWay {
		v.refs.errorf("line %d: node_refs on a %s", line, typ)
	}
	var refs []string
	if err := json.Unmarshal(raw, &refs); err != nil || len(refs) == 0 {
		v.refs.errorf("line %d: node_refs must be a non-empty list of ids, got %s", line, raw)
	}
}

func (v *validator) checkAddress(line int, raw json.RawMessage) {
	var addr map[string]string
	if err := json.Unmarshal(raw, &addr); err != nil {
		// reported by the nesting phase
		return
	}
	if pc, ok := addr["postcode"]; ok {
		if cleaned, valid := domain.CleanPostcode(pc); !valid || cleaned != pc {
			v.address.errorf("line %d: postcode %q is not in cleaned form", line, pc)
		}
	}
	if st, ok := addr["street"]; ok && domain.CleanStreet(st) != st {
		v.address.errorf("line %d: street %q is not in cleaned form", line, st)
	}
}
