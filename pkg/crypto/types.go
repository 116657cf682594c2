// Package crypto holds BULK's key material and fixed-size value types:
// Ed25519 keypairs, 32-byte public keys and hashes, and 64-byte signatures.
// All values cross the JSON boundary as base58 and sit on the wire as raw
// bytes; decoding is length-gated in both directions.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/Bulk-trade/bulk-keychain/pkg/wincode"
)

// Sizes of the fixed-width values, in bytes.
const (
	PubkeySize    = 32
	HashSize      = 32
	SignatureSize = 64
	SeedSize      = 32
	KeypairSize   = 64 // seed ‖ pubkey, the expanded wallet form
)

var (
	// ErrInvalidKey is returned for a secret or public key that fails base58
	// decoding, has the wrong length, or carries an embedded public key that
	// disagrees with the one derived from the seed.
	ErrInvalidKey = errors.New("crypto: invalid key")

	// ErrInvalidHash is returned for an order id or client id that fails
	// base58 decoding or is not exactly 32 bytes.
	ErrInvalidHash = errors.New("crypto: invalid hash")

	// ErrInvalidSignatureLength is returned for a signature that is not
	// exactly 64 bytes.
	ErrInvalidSignatureLength = errors.New("crypto: invalid signature length")
)

// Pubkey is a 32-byte Ed25519 public key.
type Pubkey [PubkeySize]byte

// PubkeyFromBase58 decodes a base58 public key, rejecting any decoding that
// is not exactly 32 bytes.
func PubkeyFromBase58(s string) (Pubkey, error) {
	b, err := wincode.DecodeBase58(s, PubkeySize)
	if err != nil {
		return Pubkey{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	var p Pubkey
	copy(p[:], b)
	return p, nil
}

// PubkeyFromBytes copies a 32-byte slice into a Pubkey.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	if len(b) != PubkeySize {
		return Pubkey{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(b), PubkeySize)
	}
	var p Pubkey
	copy(p[:], b)
	return p, nil
}

// Bytes returns the raw 32 bytes.
func (p Pubkey) Bytes() []byte { return p[:] }

// String returns the base58 form.
func (p Pubkey) String() string { return wincode.EncodeBase58(p[:]) }

// MarshalJSON renders the key as a base58 string.
func (p Pubkey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON parses a base58 string, enforcing the 32-byte length.
func (p *Pubkey) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	v, err := PubkeyFromBase58(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ValidPubkey reports whether s is a well-formed base58 32-byte public key.
func ValidPubkey(s string) bool {
	_, err := PubkeyFromBase58(s)
	return err == nil
}

// Hash is a 32-byte value: an order id, client id, or SHA-256 digest.
type Hash [HashSize]byte

// HashFromBase58 decodes a base58 hash, rejecting non-32-byte decodings.
func HashFromBase58(s string) (Hash, error) {
	b, err := wincode.DecodeBase58(s, HashSize)
	if err != nil {
		return Hash{}, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// HashFromBytes copies a 32-byte slice into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidHash, len(b), HashSize)
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// RandomHash returns 32 cryptographically random bytes, suitable as a client
// order id.
func RandomHash() (Hash, error) {
	var h Hash
	if _, err := rand.Read(h[:]); err != nil {
		return Hash{}, fmt.Errorf("crypto: read random: %w", err)
	}
	return h, nil
}

// OrderID computes the exchange's content-addressed identifier for an order:
// SHA-256 over the order's single-item signed pre-image.
func OrderID(preimage []byte) Hash {
	return Hash(sha256.Sum256(preimage))
}

// Bytes returns the raw 32 bytes.
func (h Hash) Bytes() []byte { return h[:] }

// String returns the base58 form.
func (h Hash) String() string { return wincode.EncodeBase58(h[:]) }

// MarshalJSON renders the hash as a base58 string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return []byte(`"` + h.String() + `"`), nil
}

// UnmarshalJSON parses a base58 string, enforcing the 32-byte length.
func (h *Hash) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	v, err := HashFromBase58(s)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// ValidHash reports whether s is a well-formed base58 32-byte hash.
func ValidHash(s string) bool {
	_, err := HashFromBase58(s)
	return err == nil
}

// Signature is a 64-byte Ed25519 detached signature.
type Signature [SignatureSize]byte

// SignatureFromBase58 decodes a base58 signature, rejecting non-64-byte
// decodings.
func SignatureFromBase58(s string) (Signature, error) {
	b, err := wincode.DecodeBase58(s, SignatureSize)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrInvalidSignatureLength, err)
	}
	var sig Signature
	copy(sig[:], b)
	return sig, nil
}

// SignatureFromBytes copies a 64-byte slice into a Signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != SignatureSize {
		return Signature{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSignatureLength, len(b), SignatureSize)
	}
	var sig Signature
	copy(sig[:], b)
	return sig, nil
}

// Bytes returns the raw 64 bytes.
func (s Signature) Bytes() []byte { return s[:] }

// String returns the base58 form.
func (s Signature) String() string { return wincode.EncodeBase58(s[:]) }

// unquote strips the surrounding quotes of a JSON string literal without
// pulling in full JSON unescaping; base58 never contains escapes.
func unquote(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", errors.New("not a JSON string")
	}
	return string(data[1 : len(data)-1]), nil
}
