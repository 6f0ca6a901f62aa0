package metadata

import (
	"fmt"

	"github.com/wippyai/merkleized-metadata/scale"
)

// Magic is the reserved tag every runtime metadata record starts with
// ("meta" read as a little-endian u32).
const Magic uint32 = 0x6174656d

// Metadata versions the record parse accepts. V0-V7 are deprecated layouts
// that cannot be decoded. V14 and V15 are the current layouts and their
// payload is kept as-is. The remaining known versions carry their payload
// as one length-prefixed byte string.
const (
	MinVersion uint8 = 8
	MaxVersion uint8 = 16
)

// currentVersion reports whether v has a structured payload that is
// passed through without a length prefix.
func currentVersion(v uint8) bool {
	return v == 14 || v == 15
}

// Prefixed is the canonical metadata record: the magic tag, the metadata
// version discriminant and the version-specific payload. The payload is
// kept opaque; it is handed to the digest engine as-is.
type Prefixed struct {
	Payload []byte
	Magic   uint32
	Version uint8
}

// Encode returns the SCALE encoding of the record.
func (p *Prefixed) Encode() []byte {
	w := scale.NewWriter()
	w.WriteU32LE(p.Magic)
	w.Byte(p.Version)
	w.WriteBytes(p.Payload)
	return w.Bytes()
}

func (p *Prefixed) String() string {
	return fmt.Sprintf("RuntimeMetadataPrefixed{magic: %#x, version: V%d, payload: %d bytes}",
		p.Magic, p.Version, len(p.Payload))
}

// decodePrefixed parses data as a record and requires every byte to be used.
// The version must be one the metadata enum can decode, so an envelope that
// merely frames the wrong bytes fails here rather than at the magic check.
func decodePrefixed(data []byte, typeName string) (*Prefixed, error) {
	r := scale.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, fmt.Errorf("%s: magic: %w", typeName, err)
	}
	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%s: version: %w", typeName, err)
	}
	if version < MinVersion || version > MaxVersion {
		return nil, fmt.Errorf("%s: unsupported metadata version V%d", typeName, version)
	}
	payload := r.ReadRemaining()
	if !currentVersion(version) {
		if err := checkOpaquePayload(payload, typeName); err != nil {
			return nil, err
		}
	}

	if err := r.ExpectEOF(typeName); err != nil {
		return nil, err
	}

	return &Prefixed{
		Magic:   magic,
		Version: version,
		Payload: payload,
	}, nil
}

// checkOpaquePayload requires payload to be exactly one SCALE byte string.
func checkOpaquePayload(payload []byte, typeName string) error {
	r := scale.NewReader(payload)
	if _, err := r.ReadByteString(); err != nil {
		return fmt.Errorf("%s: opaque payload: %w", typeName, err)
	}
	return r.ExpectEOF(typeName)
}
