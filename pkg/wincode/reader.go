package wincode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrShortBuffer is returned when the input ends before a value is complete.
	ErrShortBuffer = errors.New("wincode: short buffer")

	// ErrInvalidTag is returned for a bool or option tag byte that is neither 0 nor 1.
	ErrInvalidTag = errors.New("wincode: invalid tag byte")

	// ErrTrailingBytes is returned by Finish when input remains after decoding.
	ErrTrailingBytes = errors.New("wincode: trailing bytes")
)

// Reader decodes wincode values sequentially from a byte slice.
// It is the verify-path mirror of Writer.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader over b. The Reader does not copy b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Finish returns ErrTrailingBytes if any input remains unread.
func (r *Reader) Finish() error {
	if n := r.Remaining(); n != 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingBytes, n)
	}
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadBool reads a single tag byte, rejecting values other than 0 and 1.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: 0x%02x", ErrInvalidTag, b[0])
	}
}

// ReadU32 reads a 4-byte little-endian unsigned integer.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads an 8-byte little-endian unsigned integer.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadF64 reads an 8-byte little-endian IEEE-754 float, preserving the exact
// bit pattern.
func (r *Reader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadString reads a u64 length prefix followed by that many UTF-8 bytes.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU64()
	if err != nil {
		return "", err
	}
	if n > uint64(r.Remaining()) {
		return "", fmt.Errorf("%w: string length %d exceeds %d remaining", ErrShortBuffer, n, r.Remaining())
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadFixed reads exactly n raw bytes.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	return r.take(n)
}

// ReadOption reads the 1-byte option tag. The value, if present, is decoded
// by the caller.
func (r *Reader) ReadOption() (bool, error) {
	return r.ReadBool()
}

// ReadSeqLen reads a sequence's element count.
func (r *Reader) ReadSeqLen() (int, error) {
	n, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	// A count cannot exceed the remaining bytes: every element encodes to at
	// least one byte.
	if n > uint64(r.Remaining()) {
		return 0, fmt.Errorf("%w: sequence length %d exceeds %d remaining", ErrShortBuffer, n, r.Remaining())
	}
	return int(n), nil
}
