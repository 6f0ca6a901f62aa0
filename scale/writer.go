package scale

import (
	"bytes"
	"encoding/binary"
)

// Writer provides buffered writing utilities for SCALE encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice with no length prefix.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU16LE writes a little-endian uint16.
func (w *Writer) WriteU16LE(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// WriteU32LE writes a little-endian uint32.
func (w *Writer) WriteU32LE(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteCompact writes v in the shortest SCALE compact form.
func (w *Writer) WriteCompact(v uint64) {
	switch {
	case v <= 0x3f:
		w.buf.WriteByte(byte(v << 2))
	case v <= 0x3fff:
		w.WriteU16LE(uint16(v<<2) | 0b01)
	case v <= 0x3fffffff:
		w.WriteU32LE(uint32(v<<2) | 0b10)
	default:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		n := 8
		for n > 4 && b[n-1] == 0 {
			n--
		}
		w.buf.WriteByte(byte(n-4)<<2 | 0b11)
		w.buf.Write(b[:n])
	}
}

// WriteByteString writes a compact length prefix followed by data (Vec<u8>).
func (w *Writer) WriteByteString(data []byte) {
	w.WriteCompact(uint64(len(data)))
	w.buf.Write(data)
}

// WriteString writes a UTF-8 string as a byte string.
func (w *Writer) WriteString(s string) {
	w.WriteCompact(uint64(len(s)))
	w.buf.WriteString(s)
}

// WriteOption writes an Option tag.
func (w *Writer) WriteOption(some bool) {
	if some {
		w.buf.WriteByte(OptionSome)
	} else {
		w.buf.WriteByte(OptionNone)
	}
}
