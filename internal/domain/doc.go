// Package domain models OpenStreetMap (OSM) elements and the rules that
// reshape them into flat documents for bulk loading.
//
// # Data Source
//
// Input is an OSM export, either XML (".osm", optionally gzip-compressed) or
// the protobuf PBF format. The document element contains an ordered sequence
// of node, way, and relation elements:
//
//	<node id="25496583" lat="52.4814" lon="-1.8998" version="3" user="sk53" ...>
//	  <tag k="amenity" v="pub"/>
//	</node>
//	<way id="4252935" version="12" ...>
//	  <nd ref="25496583"/>
//	  <tag k="addr:street" v="High road"/>
//	</way>
//
// # Tag Conventions
//
// Tags are free-form key/value pairs. Keys are usually lower_case, with a
// single colon introducing a namespace ("addr:street", "name:en"). Keys with
// more than one colon ("addr:street:name") or with punctuation/whitespace are
// not representable in the nested output and are dropped.
//
// Postcodes follow the UK format (outward code, space, inward code):
//
//	"B15 2TT"  full
//	"B152TT"   missing space, repaired to "B15 2TT"
//	"B15"      outward code only, kept as-is
//
// # Output Shape
//
// One record per node or way:
//
//	{"type":"way","created":{"version":"12","user":"sk53"},"id":"4252935",
//	 "address":{"street":"High Road"},"node_refs":["25496583"]}
//
// A bare key and a namespaced key with the same root share one field; the bare
// value is stored under the synthetic sub-key "v". See [Record.SetBare] and
// [Record.SetNested].
package domain
