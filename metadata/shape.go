package metadata

import (
	"fmt"
	"strings"

	"github.com/wippyai/merkleized-metadata/scale"
)

// Shape identifies how a metadata record was wrapped by its producer.
type Shape int

const (
	// ShapeOptionOpaque is Option<OpaqueMetadata>, the return value of the
	// Metadata_metadata_at_version runtime call.
	ShapeOptionOpaque Shape = iota
	// ShapeOpaque is OpaqueMetadata, a length-prefixed byte string, as
	// returned by the legacy state_getMetadata RPC.
	ShapeOpaque
	// ShapePrefixed is a bare RuntimeMetadataPrefixed, as exported by
	// tools such as subxt.
	ShapePrefixed
)

// Shapes lists every envelope shape in the order Decode tries them.
var Shapes = []Shape{ShapeOptionOpaque, ShapeOpaque, ShapePrefixed}

func (s Shape) String() string {
	switch s {
	case ShapeOptionOpaque:
		return "Option<OpaqueMetadata>"
	case ShapeOpaque:
		return "OpaqueMetadata"
	case ShapePrefixed:
		return "RuntimeMetadataPrefixed"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape maps a short name ("option", "opaque", "prefixed") or the
// full type name back to a Shape.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(name) {
	case "option", "option<opaquemetadata>":
		return ShapeOptionOpaque, nil
	case "opaque", "opaquemetadata":
		return ShapeOpaque, nil
	case "prefixed", "runtimemetadataprefixed", "raw":
		return ShapePrefixed, nil
	}
	return 0, fmt.Errorf("unknown metadata shape %q", name)
}

type shapeParser struct {
	parse func(data []byte) (*Prefixed, error)
	shape Shape
}

// shapeParsers must stay in the same order as Shapes.
var shapeParsers = []shapeParser{
	{shape: ShapeOptionOpaque, parse: decodeOptionOpaque},
	{shape: ShapeOpaque, parse: decodeOpaque},
	{shape: ShapePrefixed, parse: decodeBare},
}

func decodeOptionOpaque(data []byte) (*Prefixed, error) {
	const typeName = "Option<OpaqueMetadata>"

	r := scale.NewReader(data)
	some, err := r.ReadOption()
	if err != nil {
		return nil, err
	}
	if !some {
		if err := r.ExpectEOF(typeName); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("expected %s to be Some, but got None", typeName)
	}
	inner, err := r.ReadByteString()
	if err != nil {
		return nil, err
	}
	if err := r.ExpectEOF(typeName); err != nil {
		return nil, err
	}
	return decodePrefixed(inner, "RuntimeMetadataPrefixed (from "+typeName+")")
}

func decodeOpaque(data []byte) (*Prefixed, error) {
	const typeName = "OpaqueMetadata"

	r := scale.NewReader(data)
	inner, err := r.ReadByteString()
	if err != nil {
		return nil, err
	}
	if err := r.ExpectEOF(typeName); err != nil {
		return nil, err
	}
	return decodePrefixed(inner, "RuntimeMetadataPrefixed (from "+typeName+")")
}

func decodeBare(data []byte) (*Prefixed, error) {
	return decodePrefixed(data, "RuntimeMetadataPrefixed (directly)")
}

// Encode wraps rec in the given shape. Decode(Encode(rec, s)) yields rec
// back, though not always with shape s: a record that happens to parse
// under an earlier shape is reported as that one.
func Encode(rec *Prefixed, shape Shape) []byte {
	raw := rec.Encode()
	switch shape {
	case ShapeOptionOpaque:
		w := scale.NewWriter()
		w.WriteOption(true)
		w.WriteByteString(raw)
		return w.Bytes()
	case ShapeOpaque:
		w := scale.NewWriter()
		w.WriteByteString(raw)
		return w.Bytes()
	default:
		return raw
	}
}
