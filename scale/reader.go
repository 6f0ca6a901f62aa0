package scale

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wippyai/merkleized-metadata/errors"
)

// Option tags as written by the SCALE codec.
const (
	OptionNone byte = 0x00
	OptionSome byte = 0x01
)

// Reader is a cursor over a byte slice with position tracking and
// SCALE-specific read methods. A Reader never copies its input.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errors.OutOfBounds(errors.PhaseDecode, r.pos, 1, 0)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The returned slice aliases the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errors.OutOfBounds(errors.PhaseDecode, r.pos, n, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU16LE reads a little-endian uint16 (fixed 2 bytes).
func (r *Reader) ReadU16LE() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadCompact reads a SCALE compact-encoded unsigned integer.
//
// The two low bits of the first byte select the mode:
//
//	0b00  single byte, value in the upper six bits
//	0b01  two bytes, value in the upper fourteen bits
//	0b10  four bytes, value in the upper thirty bits
//	0b11  big-integer, upper six bits + 4 give the byte count that follows
//
// Non-canonical encodings (a value that fits a shorter mode) are rejected,
// as are big-integer values wider than 64 bits.
func (r *Reader) ReadCompact() (uint64, error) {
	start := r.pos
	prefix, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	switch prefix & 0b11 {
	case 0b00:
		return uint64(prefix >> 2), nil

	case 0b01:
		hi, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v := uint64(binary.LittleEndian.Uint16([]byte{prefix, hi}) >> 2)
		if v <= 0x3f {
			return 0, r.nonCanonical(start, v)
		}
		return v, nil

	case 0b10:
		rest, err := r.ReadBytes(3)
		if err != nil {
			return 0, err
		}
		v := uint64(binary.LittleEndian.Uint32([]byte{prefix, rest[0], rest[1], rest[2]}) >> 2)
		if v <= 0x3fff {
			return 0, r.nonCanonical(start, v)
		}
		return v, nil

	default:
		n := int(prefix>>2) + 4
		if n > 8 {
			return 0, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Detail("compact integer at offset %d is %d bytes wide, at most 8 supported", start, n).
				Value(n).
				Build()
		}
		raw, err := r.ReadBytes(n)
		if err != nil {
			return 0, err
		}
		var buf [8]byte
		copy(buf[:], raw)
		v := binary.LittleEndian.Uint64(buf[:])
		if raw[n-1] == 0 || v <= 0x3fffffff {
			return 0, r.nonCanonical(start, v)
		}
		return v, nil
	}
}

// ReadLength reads a compact length prefix and checks it against the
// bytes still available, so a corrupt prefix fails before any allocation.
func (r *Reader) ReadLength() (int, error) {
	start := r.pos
	n, err := r.ReadCompact()
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 || int(n) > r.Remaining() {
		return 0, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Detail("length %d at offset %d exceeds %d remaining bytes", n, start, r.Remaining()).
			Value(n).
			Build()
	}
	return int(n), nil
}

// ReadByteString reads a compact-length-prefixed byte sequence (Vec<u8>).
func (r *Reader) ReadByteString() ([]byte, error) {
	n, err := r.ReadLength()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(n)
}

// ReadOption reads an Option tag. It reports whether a value follows.
func (r *Reader) ReadOption() (bool, error) {
	start := r.pos
	tag, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch tag {
	case OptionNone:
		return false, nil
	case OptionSome:
		return true, nil
	default:
		return false, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("invalid option tag 0x%02x at offset %d", tag, start).
			Value(tag).
			Build()
	}
}

// ReadRemaining reads all remaining bytes.
func (r *Reader) ReadRemaining() []byte {
	b := r.data[r.pos:]
	r.pos = len(r.data)
	return b
}

// ExpectEOF fails when unread bytes remain. typeName names the value that
// was decoded, for the error message.
func (r *Reader) ExpectEOF(typeName string) error {
	if left := r.Remaining(); left != 0 {
		return errors.NotConsumed(errors.PhaseDecode, typeName, left)
	}
	return nil
}

func (r *Reader) nonCanonical(offset int, v uint64) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Detail("non-canonical compact encoding of %d at offset %d", v, offset).
		Value(v).
		Build()
}

// String describes the cursor state for debugging.
func (r *Reader) String() string {
	return fmt.Sprintf("scale.Reader{pos: %d, remaining: %d}", r.pos, r.Remaining())
}
