package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"

	"github.com/Bulk-trade/bulk-keychain/pkg/wincode"
)

// Keypair holds an Ed25519 seed and its derived public key. It is immutable
// after construction and safe to share across goroutines. The secret never
// appears in String, JSON, or log output.
type Keypair struct {
	priv ed25519.PrivateKey // 64 bytes: seed ‖ pubkey
	pub  Pubkey
}

// Generate creates a keypair from a fresh 32-byte random seed.
func Generate() (*Keypair, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("crypto: generate seed: %w", err)
	}
	return fromSeed(seed), nil
}

// FromSeed derives a keypair from a 32-byte seed.
func FromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes, got %d", ErrInvalidKey, SeedSize, len(seed))
	}
	return fromSeed(seed), nil
}

func fromSeed(seed []byte) *Keypair {
	priv := ed25519.NewKeyFromSeed(seed)
	var pub Pubkey
	copy(pub[:], priv[SeedSize:])
	return &Keypair{priv: priv, pub: pub}
}

// FromBytes builds a keypair from a 32-byte seed or a 64-byte expanded form
// (seed ‖ pubkey). For the 64-byte form the embedded public key must match
// the one derived from the seed.
func FromBytes(b []byte) (*Keypair, error) {
	switch len(b) {
	case SeedSize:
		return fromSeed(b), nil
	case KeypairSize:
		kp := fromSeed(b[:SeedSize])
		if subtle.ConstantTimeCompare(kp.pub[:], b[SeedSize:]) != 1 {
			return nil, fmt.Errorf("%w: embedded public key does not match seed", ErrInvalidKey)
		}
		return kp, nil
	default:
		return nil, fmt.Errorf("%w: got %d bytes, want %d or %d", ErrInvalidKey, len(b), SeedSize, KeypairSize)
	}
}

// FromBase58 builds a keypair from a base58 secret: either the bare 32-byte
// seed or the 64-byte expanded form well-known wallets export.
func FromBase58(s string) (*Keypair, error) {
	b, err := wincode.DecodeBase58Any(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return FromBytes(b)
}

// Pubkey returns the 32-byte public key.
func (k *Keypair) Pubkey() Pubkey {
	return k.pub
}

// SecretKey returns a copy of the 32-byte seed.
func (k *Keypair) SecretKey() []byte {
	seed := make([]byte, SeedSize)
	copy(seed, k.priv[:SeedSize])
	return seed
}

// ToBytes returns the 64-byte expanded form (seed ‖ pubkey).
func (k *Keypair) ToBytes() []byte {
	b := make([]byte, KeypairSize)
	copy(b, k.priv)
	return b
}

// ToBase58 returns the 64-byte expanded form as base58, the encoding
// wallets round-trip.
func (k *Keypair) ToBase58() string {
	return wincode.EncodeBase58(k.ToBytes())
}

// Sign produces a 64-byte Ed25519 detached signature over exactly msg.
// No pre-hashing, no domain prefix: the exchange verifies over the same raw
// bytes the wire codec produced.
func (k *Keypair) Sign(msg []byte) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(k.priv, msg))
	return sig
}

// Verify reports whether sig is a valid signature by pub over msg.
func Verify(pub Pubkey, msg []byte, sig Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig[:])
}
