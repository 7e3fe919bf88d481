package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dropEvent struct {
	Key    string
	Reason DropReason
}

type recordingCollector struct {
	observed int
	drops    []dropEvent
}

func (c *recordingCollector) ObserveElement(RawElement) { c.observed++ }

func (c *recordingCollector) TagDropped(_ RawElement, key, _ string, reason DropReason) {
	c.drops = append(c.drops, dropEvent{Key: key, Reason: reason})
}

func way(children ...Child) RawElement {
	return RawElement{
		Name:     ElementWay,
		Attrs:    []Attr{{Name: "id", Value: "4252935"}},
		Children: children,
	}
}

func TestShape_NotApplicable(t *testing.T) {
	for _, name := range []string{ElementRelation, "bounds", "tag", ""} {
		t.Run(name, func(t *testing.T) {
			_, ok := ShapeElement(RawElement{Name: name, Children: []Child{Tag("name", "x")}})
			assert.False(t, ok)
		})
	}
}

func TestShape_Attributes(t *testing.T) {
	el := RawElement{
		Name: ElementNode,
		Attrs: []Attr{
			{Name: "id", Value: "25496583"},
			{Name: "lat", Value: "52.48"},
			{Name: "lon", Value: "-1.89"},
			{Name: "version", Value: "3"},
			{Name: "changeset", Value: "123"},
			{Name: "timestamp", Value: "2015-04-01T10:00:00Z"},
			{Name: "user", Value: "sk53"},
			{Name: "uid", Value: "9"},
			{Name: "visible", Value: "true"},
		},
	}

	rec, ok := ShapeElement(el)
	require.True(t, ok)

	assert.Equal(t, "node", rec.Type())
	assert.Equal(t, "25496583", rec.ID())
	for _, a := range CreatedAttrs {
		_, ok := rec.Sub(FieldCreated, a)
		assert.True(t, ok, "created.%s", a)
	}
	user, _ := rec.Sub(FieldCreated, "user")
	assert.Equal(t, "sk53", user)

	_, hasLat := rec.Get("lat")
	assert.False(t, hasLat, "lat must not become a field")

	pos, ok := rec.Pos()
	require.True(t, ok)
	assert.Equal(t, [2]float64{52.48, -1.89}, pos)

	if diff := cmp.Diff([]string{"type", "created", "id"}, rec.Names()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
}

func TestShape_CreatedAlwaysPresent(t *testing.T) {
	rec, ok := ShapeElement(RawElement{Name: ElementNode})
	require.True(t, ok)
	f, ok := rec.Get(FieldCreated)
	require.True(t, ok)
	assert.Equal(t, Nested, f.Kind)
	assert.Equal(t, 0, f.Fields.Len())
}

func TestShape_Position(t *testing.T) {
	tests := []struct {
		name  string
		attrs []Attr
		want  bool
	}{
		{"both present", []Attr{{"lat", "52.48"}, {"lon", "-1.89"}}, true},
		{"missing lon", []Attr{{"lat", "52.48"}}, false},
		{"missing lat", []Attr{{"lon", "-1.89"}}, false},
		{"unparseable lat", []Attr{{"lat", "north"}, {"lon", "-1.89"}}, false},
		{"zero lon", []Attr{{"lat", "52.48"}, {"lon", "0"}}, false},
		{"NaN lat", []Attr{{"lat", "NaN"}, {"lon", "-1.89"}}, false},
		{"infinite lon", []Attr{{"lat", "52.48"}, {"lon", "+Inf"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := ShapeElement(RawElement{Name: ElementNode, Attrs: tt.attrs})
			require.True(t, ok)
			_, hasPos := rec.Pos()
			assert.Equal(t, tt.want, hasPos)
		})
	}
}

func TestShape_NodeRefs(t *testing.T) {
	rec, ok := ShapeElement(way(NodeRef("3"), NodeRef("1"), Tag("highway", "residential"), NodeRef("2")))
	require.True(t, ok)
	assert.Equal(t, []string{"3", "1", "2"}, rec.NodeRefs())

	rec, ok = ShapeElement(way(Tag("highway", "residential")))
	require.True(t, ok)
	assert.Nil(t, rec.NodeRefs())
}

func TestShape_CollisionMerge(t *testing.T) {
	orders := map[string][]Child{
		"bare first":   {Tag("X", "a"), Tag("X:sub", "b")},
		"nested first": {Tag("X:sub", "b"), Tag("X", "a")},
	}

	for name, children := range orders {
		t.Run(name, func(t *testing.T) {
			rec, ok := ShapeElement(way(children...))
			require.True(t, ok)

			f, ok := rec.Get("X")
			require.True(t, ok)
			require.Equal(t, Nested, f.Kind)
			assert.Equal(t, 2, f.Fields.Len())

			sub, _ := rec.Sub("X", "sub")
			assert.Equal(t, "b", sub)
			v, _ := rec.Sub("X", SubKeyBare)
			assert.Equal(t, "a", v)
		})
	}
}

func TestShape_BareOverwritesScalar(t *testing.T) {
	rec, ok := ShapeElement(way(Tag("name", "Old"), Tag("name", "New")))
	require.True(t, ok)
	name, ok := rec.Scalar("name")
	require.True(t, ok)
	assert.Equal(t, "New", name)
}

func TestShape_Address(t *testing.T) {
	t.Run("street and postcode cleaned", func(t *testing.T) {
		rec, ok := ShapeElement(way(
			Tag("addr:street", "High road"),
			Tag("addr:postcode", "B152TT"),
			Tag("addr:housenumber", "12"),
		))
		require.True(t, ok)

		street, _ := rec.Sub(FieldAddress, "street")
		assert.Equal(t, "High Road", street)
		pc, _ := rec.Sub(FieldAddress, "postcode")
		assert.Equal(t, "B15 2TT", pc)
		hn, _ := rec.Sub(FieldAddress, "housenumber")
		assert.Equal(t, "12", hn)
	})

	t.Run("valid postcode unchanged", func(t *testing.T) {
		rec, _ := ShapeElement(way(Tag("addr:postcode", "B15 2TT")))
		pc, ok := rec.Sub(FieldAddress, "postcode")
		require.True(t, ok)
		assert.Equal(t, "B15 2TT", pc)
	})

	t.Run("invalid postcode omitted", func(t *testing.T) {
		c := &recordingCollector{}
		rec, _ := NewShaper(nil, c).Shape(way(Tag("addr:postcode", "zzz")))

		f, ok := rec.Get(FieldAddress)
		require.True(t, ok, "address mapping is still created")
		_, has := f.Fields.Get("postcode")
		assert.False(t, has)
		assert.Equal(t, []dropEvent{{Key: "addr:postcode", Reason: DropPostcodeInvalid}}, c.drops)
	})

	t.Run("two-level address key dropped", func(t *testing.T) {
		c := &recordingCollector{}
		rec, _ := NewShaper(nil, c).Shape(way(Tag("addr:street:extra", "x")))

		_, ok := rec.Get(FieldAddress)
		assert.False(t, ok)
		_, ok = rec.Get("addr")
		assert.False(t, ok)
		assert.Equal(t, []string{"type", "created", "id"}, rec.Names())
		assert.Equal(t, []dropEvent{{Key: "addr:street:extra", Reason: DropIgnoredAddress}}, c.drops)
	})

	t.Run("bare address tag merges", func(t *testing.T) {
		rec, _ := ShapeElement(way(Tag("address", "1 High Road"), Tag("addr:city", "Birmingham")))
		city, _ := rec.Sub(FieldAddress, "city")
		assert.Equal(t, "Birmingham", city)
		v, _ := rec.Sub(FieldAddress, SubKeyBare)
		assert.Equal(t, "1 High Road", v)
	})
}

func TestShape_LandUseAndAmenity(t *testing.T) {
	t.Run("known landuse summarised", func(t *testing.T) {
		rec, _ := ShapeElement(way(Tag("landuse", "quarry")))
		sum, ok := rec.Scalar(FieldLandSum)
		require.True(t, ok)
		assert.Equal(t, "industrial", sum)
		lu, ok := rec.Scalar("landuse")
		require.True(t, ok, "summary does not suppress the raw field")
		assert.Equal(t, "quarry", lu)
	})

	t.Run("unknown landuse has no summary", func(t *testing.T) {
		rec, _ := ShapeElement(way(Tag("landuse", "unknown_value")))
		_, ok := rec.Get(FieldLandSum)
		assert.False(t, ok)
		lu, _ := rec.Scalar("landuse")
		assert.Equal(t, "unknown_value", lu)
	})

	t.Run("unknown amenity kept", func(t *testing.T) {
		rec, _ := ShapeElement(way(Tag("amenity", "unknown_value")))
		a, ok := rec.Scalar(FieldAmenity)
		require.True(t, ok)
		assert.Equal(t, "unknown_value", a)
	})

	t.Run("amenity mapped", func(t *testing.T) {
		rec, _ := ShapeElement(way(Tag("amenity", "police")))
		a, _ := rec.Scalar(FieldAmenity)
		assert.Equal(t, "police_station", a)
	})

	t.Run("amenity joins nested amenity", func(t *testing.T) {
		rec, _ := ShapeElement(way(Tag("amenity:disused", "pub"), Tag("amenity", "biergarten")))
		v, _ := rec.Sub(FieldAmenity, SubKeyBare)
		assert.Equal(t, "pub", v)
		d, _ := rec.Sub(FieldAmenity, "disused")
		assert.Equal(t, "pub", d)
	})
}

func TestShape_DroppedTags(t *testing.T) {
	c := &recordingCollector{}
	rec, ok := NewShaper(nil, c).Shape(RawElement{
		Name:  ElementWay,
		Attrs: []Attr{{Name: "id", Value: "1"}, {Name: "lat", Value: "52.48"}, {Name: "lon", Value: "-1.89"}},
		Children: []Child{
			Tag("fixme note", "x"),
			Tag("name:en:old", "y"),
			Tag("pos", "z"),
			NodeRef("7"),
			Tag("node_refs:first", "1"),
			Tag("name", "kept"),
		},
	})
	require.True(t, ok)

	assert.Equal(t, []string{"type", "created", "id", "name"}, rec.Names())
	pos, hasPos := rec.Pos()
	assert.True(t, hasPos)
	assert.Equal(t, [2]float64{52.48, -1.89}, pos)
	assert.Equal(t, []string{"7"}, rec.NodeRefs())

	want := []dropEvent{
		{Key: "fixme note", Reason: DropProblemChars},
		{Key: "name:en:old", Reason: DropNestedTooDeep},
		{Key: "pos", Reason: DropReserved},
		{Key: "node_refs:first", Reason: DropReserved},
	}
	if diff := cmp.Diff(want, c.drops); diff != "" {
		t.Fatalf("drops mismatch (-want +got):\n%s", diff)
	}
}

func TestShape_StructuralNamesFreeForTags(t *testing.T) {
	c := &recordingCollector{}
	rec, ok := NewShaper(nil, c).Shape(way(Tag("pos", "upper"), Tag("node_refs:first", "1")))
	require.True(t, ok)

	v, ok := rec.Scalar(FieldPos)
	require.True(t, ok)
	assert.Equal(t, "upper", v)
	first, ok := rec.Sub(FieldNodeRefs, "first")
	require.True(t, ok)
	assert.Equal(t, "1", first)
	assert.Empty(t, c.drops)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"way","created":{},"id":"4252935","pos":"upper","node_refs":{"first":"1"}}`, string(data))
}

func TestShape_ProblemCharsCheckedFirst(t *testing.T) {
	rec, _ := ShapeElement(way(Tag("addr:street.name", "High road")))
	_, ok := rec.Get(FieldAddress)
	assert.False(t, ok)
}

func TestShape_JSON(t *testing.T) {
	el := RawElement{
		Name: ElementWay,
		Attrs: []Attr{
			{Name: "id", Value: "1"},
			{Name: "version", Value: "2"},
			{Name: "changeset", Value: "4"},
			{Name: "timestamp", Value: "2015-04-01T10:00:00Z"},
			{Name: "user", Value: "sk53"},
			{Name: "uid", Value: "3"},
		},
		Children: []Child{
			NodeRef("10"),
			NodeRef("11"),
			Tag("addr:street", "High road"),
			Tag("building", "yes"),
			Tag("name", "Works"),
			Tag("name:en", "Works"),
		},
	}

	rec, ok := ShapeElement(el)
	require.True(t, ok)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "way",
		"created": {"version": "2", "changeset": "4", "timestamp": "2015-04-01T10:00:00Z", "user": "sk53", "uid": "3"},
		"id": "1",
		"address": {"street": "High Road"},
		"building": "yes",
		"name": {"v": "Works", "en": "Works"},
		"node_refs": ["10", "11"]
	}`, string(data))
	assert.Equal(t, []string{"type", "created", "id", "address", "building", "name"}, rec.Names())
}

func TestShape_IsIsolatedPerElement(t *testing.T) {
	s := NewShaper(nil, nil)
	first, _ := s.Shape(way(Tag("name", "A"), NodeRef("1")))
	second, _ := s.Shape(way(Tag("ref", "B")))

	_, ok := second.Get("name")
	assert.False(t, ok)
	assert.Nil(t, second.NodeRefs())
	assert.Equal(t, []string{"1"}, first.NodeRefs())
}
