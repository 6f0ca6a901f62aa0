package metadata_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"

	mmerrors "github.com/wippyai/merkleized-metadata/errors"
	"github.com/wippyai/merkleized-metadata/metadata"
)

func testRecord(payloadLen int) *metadata.Prefixed {
	payload := make([]byte, payloadLen)
	for i := range payload {
		payload[i] = byte(i*7 + 3)
	}
	return &metadata.Prefixed{
		Magic:   metadata.Magic,
		Version: 15,
		Payload: payload,
	}
}

func assertRecord(t *testing.T, got, want *metadata.Prefixed) {
	t.Helper()
	if got.Magic != want.Magic {
		t.Errorf("Magic = %#x, want %#x", got.Magic, want.Magic)
	}
	if got.Version != want.Version {
		t.Errorf("Version = %d, want %d", got.Version, want.Version)
	}
	if !bytes.Equal(got.Payload, want.Payload) {
		t.Errorf("Payload mismatch: got %d bytes, want %d bytes", len(got.Payload), len(want.Payload))
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		payloadLen int
		shape      metadata.Shape
	}{
		{"option small", 10, metadata.ShapeOptionOpaque},
		{"option large", 5000, metadata.ShapeOptionOpaque},
		{"option empty payload", 0, metadata.ShapeOptionOpaque},
		{"opaque small", 10, metadata.ShapeOpaque},
		{"opaque large", 5000, metadata.ShapeOpaque},
		{"opaque empty payload", 0, metadata.ShapeOpaque},
		{"prefixed small", 10, metadata.ShapePrefixed},
		{"prefixed large", 5000, metadata.ShapePrefixed},
		{"prefixed empty payload", 0, metadata.ShapePrefixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := testRecord(tt.payloadLen)
			encoded := metadata.Encode(want, tt.shape)

			got, shape, err := metadata.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if shape != tt.shape {
				t.Errorf("shape = %s, want %s", shape, tt.shape)
			}
			assertRecord(t, got, want)
		})
	}
}

func TestDecode_TrailingByteRejectsShape(t *testing.T) {
	rec := testRecord(10)

	for _, shape := range []metadata.Shape{metadata.ShapeOptionOpaque, metadata.ShapeOpaque} {
		t.Run(shape.String(), func(t *testing.T) {
			data := append(metadata.Encode(rec, shape), 0x00)

			_, got, err := metadata.Decode(data)
			if err == nil {
				t.Fatalf("input with a trailing byte was accepted as %s", got)
			}
			// The bare parse reads an envelope byte as the version and
			// rejects it, so every shape fails.
			if !errors.Is(err, &mmerrors.Error{Phase: mmerrors.PhaseDecode, Kind: mmerrors.KindNoShape}) {
				t.Errorf("expected no_shape, got %v", err)
			}
		})
	}
}

func TestDecode_RoundTripAtLengthBoundaries(t *testing.T) {
	// Record lengths around the compact-integer mode switches, plus 6493:
	// a bare record starting "me" (6d 65) also reads as a 6491-byte
	// OpaqueMetadata length prefix.
	for _, recordLen := range []int{5, 63, 64, 65, 6492, 6493, 6494, 16383, 16384, 16385} {
		for _, shape := range metadata.Shapes {
			t.Run(fmt.Sprintf("%d/%s", recordLen, shape), func(t *testing.T) {
				want := &metadata.Prefixed{
					Magic:   metadata.Magic,
					Version: 15,
					Payload: make([]byte, recordLen-5),
				}

				got, gotShape, err := metadata.Decode(metadata.Encode(want, shape))
				if err != nil {
					t.Fatalf("Decode failed: %v", err)
				}
				if gotShape != shape {
					t.Errorf("shape = %s, want %s", gotShape, shape)
				}
				assertRecord(t, got, want)
			})
		}
	}
}

func TestDecode_Versions(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		version uint8
		wantErr bool
	}{
		{"V14 raw payload", []byte{0x04, 0x00}, 14, false},
		{"V15 empty payload", nil, 15, false},
		{"V8 byte string", []byte{0x08, 0xaa, 0xbb}, 8, false},
		{"V16 byte string", []byte{0x00}, 16, false},
		{"V13 raw payload", []byte{0xaa, 0xbb}, 13, true},
		{"V16 trailing byte", []byte{0x04, 0xaa, 0xbb}, 16, true},
		{"V7 deprecated", []byte{0x00}, 7, true},
		{"V0 deprecated", nil, 0, true},
		{"V17 unknown", []byte{0x00}, 17, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &metadata.Prefixed{Magic: metadata.Magic, Version: tt.version, Payload: tt.payload}

			for _, shape := range metadata.Shapes {
				got, _, err := metadata.Decode(metadata.Encode(rec, shape))
				if (err != nil) != tt.wantErr {
					t.Fatalf("%s: err = %v, wantErr %v", shape, err, tt.wantErr)
				}
				if err != nil {
					var ae *mmerrors.AttemptsError
					if !errors.As(err, &ae) {
						t.Errorf("%s: version failure should be a shape failure, got %v", shape, err)
					}
					continue
				}
				assertRecord(t, got, rec)
			}
		})
	}
}

func TestDecode_InnerLengthMismatch(t *testing.T) {
	rec := testRecord(10)
	raw := rec.Encode()

	// Option<OpaqueMetadata> whose inner length claims one byte more than exists.
	data := append([]byte{0x01, byte((len(raw) + 1) << 2)}, raw...)
	if _, shape, err := metadata.Decode(data); err == nil && shape == metadata.ShapeOptionOpaque {
		t.Fatal("short inner byte string was accepted")
	}

	// And one byte fewer: the outer cursor is left with a byte.
	data = append([]byte{0x01, byte((len(raw) - 1) << 2)}, raw...)
	if _, shape, err := metadata.Decode(data); err == nil && shape == metadata.ShapeOptionOpaque {
		t.Fatal("long inner byte string was accepted")
	}
}

func TestDecode_BadMagic(t *testing.T) {
	for _, shape := range metadata.Shapes {
		t.Run(shape.String(), func(t *testing.T) {
			rec := testRecord(8)
			rec.Magic = 0xdeadbeef

			_, got, err := metadata.Decode(metadata.Encode(rec, shape))
			if err == nil {
				t.Fatal("expected error for wrong magic")
			}
			if !errors.Is(err, &mmerrors.Error{Phase: mmerrors.PhaseValidate, Kind: mmerrors.KindBadMagic}) {
				t.Fatalf("expected bad_magic, got %v", err)
			}
			var ae *mmerrors.AttemptsError
			if errors.As(err, &ae) {
				t.Error("bad magic must not be reported as a shape failure")
			}
			if got != shape {
				t.Errorf("bad magic reported for shape %s, want %s", got, shape)
			}
			if !strings.Contains(err.Error(), "0xdeadbeef") {
				t.Errorf("message should name the tag: %v", err)
			}
		})
	}
}

func TestDecode_NoShape(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"none", []byte{0x00}},
		{"short", []byte{0x6d, 0x65, 0x74}},
		{"header only", []byte{0x6d, 0x65, 0x74, 0x61}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := metadata.Decode(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}

			var ae *mmerrors.AttemptsError
			if !errors.As(err, &ae) {
				t.Fatalf("expected AttemptsError, got %T: %v", err, err)
			}
			if len(ae.Attempts) != len(metadata.Shapes) {
				t.Fatalf("got %d attempts, want %d", len(ae.Attempts), len(metadata.Shapes))
			}
			for i, shape := range metadata.Shapes {
				if ae.Attempts[i].Name != shape.String() {
					t.Errorf("attempt %d = %s, want %s", i, ae.Attempts[i].Name, shape)
				}
			}
			if !errors.Is(err, &mmerrors.Error{Phase: mmerrors.PhaseDecode, Kind: mmerrors.KindNoShape}) {
				t.Error("should match no_shape")
			}
		})
	}
}

func TestDecode_NoneReportsSome(t *testing.T) {
	_, _, err := metadata.Decode([]byte{0x00})
	if err == nil || !strings.Contains(err.Error(), "to be Some, but got None") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFromHex(t *testing.T) {
	rec := testRecord(32)
	encoded := hex.EncodeToString(metadata.Encode(rec, metadata.ShapeOptionOpaque))

	for _, input := range []string{encoded, "0x" + encoded, "0X" + strings.ToUpper(encoded), "  0x" + encoded + "\n"} {
		md, err := metadata.FromHex(input)
		if err != nil {
			t.Fatalf("FromHex(%.10q...): %v", input, err)
		}
		if md.Shape != metadata.ShapeOptionOpaque {
			t.Errorf("Shape = %s", md.Shape)
		}
		if md.Version() != 15 {
			t.Errorf("Version = %d", md.Version())
		}
		assertRecord(t, md.Record, rec)
	}
}

func TestFromHex_Invalid(t *testing.T) {
	for _, input := range []string{"0xzz", "abc", "0x0"} {
		_, err := metadata.FromHex(input)
		if !errors.Is(err, &mmerrors.Error{Phase: mmerrors.PhaseDecode, Kind: mmerrors.KindInvalidHex}) {
			t.Errorf("FromHex(%q): expected invalid_hex, got %v", input, err)
		}
	}
}

func TestParseShape(t *testing.T) {
	tests := map[string]metadata.Shape{
		"option":                  metadata.ShapeOptionOpaque,
		"Option<OpaqueMetadata>":  metadata.ShapeOptionOpaque,
		"opaque":                  metadata.ShapeOpaque,
		"OpaqueMetadata":          metadata.ShapeOpaque,
		"prefixed":                metadata.ShapePrefixed,
		"RuntimeMetadataPrefixed": metadata.ShapePrefixed,
	}
	for name, want := range tests {
		got, err := metadata.ParseShape(name)
		if err != nil {
			t.Errorf("ParseShape(%q): %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("ParseShape(%q) = %s, want %s", name, got, want)
		}
	}
	if _, err := metadata.ParseShape("vec"); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestShapeOrder(t *testing.T) {
	want := []metadata.Shape{metadata.ShapeOptionOpaque, metadata.ShapeOpaque, metadata.ShapePrefixed}
	if len(metadata.Shapes) != len(want) {
		t.Fatalf("Shapes has %d entries", len(metadata.Shapes))
	}
	for i := range want {
		if metadata.Shapes[i] != want[i] {
			t.Errorf("Shapes[%d] = %s, want %s", i, metadata.Shapes[i], want[i])
		}
	}
}

func TestPrefixed_Encode(t *testing.T) {
	rec := &metadata.Prefixed{Magic: metadata.Magic, Version: 14, Payload: []byte{0xaa, 0xbb}}
	want := []byte{0x6d, 0x65, 0x74, 0x61, 0x0e, 0xaa, 0xbb}
	if got := rec.Encode(); !bytes.Equal(got, want) {
		t.Fatalf("Encode = %x, want %x", got, want)
	}
	if !strings.Contains(rec.String(), "V14") {
		t.Errorf("String = %q", rec.String())
	}
}
