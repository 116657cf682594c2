package wincode

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// ErrWrongLength is returned when a base58 string decodes to a byte length
// other than the one the caller declared.
var ErrWrongLength = errors.New("wincode: wrong decoded length")

// EncodeBase58 renders b in base58 (Bitcoin alphabet).
func EncodeBase58(b []byte) string {
	return base58.Encode(b)
}

// DecodeBase58 decodes s and requires the result to be exactly want bytes.
// Callers declare the expected length up front; anything else is an error,
// never a truncation.
func DecodeBase58(s string, want int) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("wincode: base58 decode: %w", err)
	}
	if len(b) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrWrongLength, len(b), want)
	}
	return b, nil
}

// DecodeBase58Any decodes s without a length requirement. Used where two
// lengths are legal (32-byte seed vs 64-byte expanded keypair); the caller
// dispatches on the result.
func DecodeBase58Any(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("wincode: base58 decode: %w", err)
	}
	return b, nil
}
