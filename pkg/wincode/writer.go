// Package wincode implements BULK's canonical binary serialization.
//
// The exchange signs and verifies transactions over this exact byte layout:
// little-endian fixed-width integers and floats, u64 length prefixes for
// strings and sequences, single-byte bool/option tags, u32 enum discriminants,
// and raw fixed-size blobs. Every width and ordering here is part of the
// signing contract; a server verifying a signature reproduces these bytes
// bit for bit.
package wincode

import (
	"encoding/binary"
	"math"
)

// Writer appends wincode-encoded values to a growable buffer.
// All writes are infallible.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// NewWriterSize returns a Writer with capacity preallocated for n bytes.
func NewWriterSize(n int) *Writer {
	return &Writer{buf: make([]byte, 0, n)}
}

// Bytes returns the encoded bytes accumulated so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteBool writes a single byte: 1 for true, 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteU32 writes a 4-byte little-endian unsigned integer.
func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteU64 writes an 8-byte little-endian unsigned integer.
func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteF64 writes the raw IEEE-754 bit pattern, little-endian.
// NaN payloads and the sign of zero pass through untouched.
func (w *Writer) WriteF64(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteString writes a u64 byte length followed by the raw UTF-8 bytes.
// No NUL terminator. Empty strings write the length prefix only.
func (w *Writer) WriteString(s string) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteFixed writes raw bytes with no length prefix. Used for 32-byte
// pubkeys/hashes and 64-byte signatures.
func (w *Writer) WriteFixed(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteOption writes the 1-byte option tag: 1 if present, 0 if absent.
// When present, the caller encodes the value immediately after.
func (w *Writer) WriteOption(present bool) {
	w.WriteBool(present)
}

// WriteSeqLen writes a sequence's element count as u64 little-endian.
// Elements follow in order, each encoded by the caller.
func (w *Writer) WriteSeqLen(n int) {
	w.WriteU64(uint64(n))
}
