package metadata

import (
	"encoding/hex"
	"strings"

	"github.com/wippyai/merkleized-metadata/errors"
)

// RuntimeMetadata is decoded runtime metadata ready to be handed to a
// digest engine.
type RuntimeMetadata struct {
	Record *Prefixed
	// Shape records which envelope the input used.
	Shape Shape
}

// Version returns the metadata version discriminant (e.g. 15).
func (m *RuntimeMetadata) Version() uint8 {
	return m.Record.Version
}

// Decode works out which envelope shape data uses and returns the record
// inside it. Shapes are tried in the order of Shapes; the first one that
// parses and consumes every byte wins. A record whose magic is not Magic
// fails immediately, without trying the remaining shapes.
func Decode(data []byte) (*Prefixed, Shape, error) {
	attempts := make([]errors.Attempt, 0, len(shapeParsers))

	for _, p := range shapeParsers {
		rec, err := p.parse(data)
		if err != nil {
			attempts = append(attempts, errors.Attempt{Name: p.shape.String(), Err: err})
			continue
		}
		if rec.Magic != Magic {
			return nil, p.shape, errors.BadMagic(Magic, rec.Magic)
		}
		return rec, p.shape, nil
	}

	return nil, 0, errors.NewAttemptsError(
		"could not decode metadata bytes into Option<OpaqueMetadata>, OpaqueMetadata or RuntimeMetadataPrefixed",
		attempts,
	)
}

// FromBytes decodes SCALE-encoded metadata in any supported envelope.
func FromBytes(data []byte) (*RuntimeMetadata, error) {
	rec, shape, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &RuntimeMetadata{Record: rec, Shape: shape}, nil
}

// FromHex decodes hex-encoded metadata, with or without a 0x prefix.
func FromHex(s string) (*RuntimeMetadata, error) {
	data, err := DecodeHex(s)
	if err != nil {
		return nil, errors.InvalidHex(errors.PhaseDecode, "metadata", err)
	}
	return FromBytes(data)
}

// DecodeHex strips an optional 0x/0X prefix and surrounding whitespace
// and decodes the rest as hex.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	return hex.DecodeString(s)
}
