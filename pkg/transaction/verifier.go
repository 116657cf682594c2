package transaction

import (
	"fmt"

	"github.com/Bulk-trade/bulk-keychain/pkg/crypto"
)

// Verifier checks signed envelopes the way the exchange does: rebuild the
// canonical pre-image from the action JSON, then verify the detached Ed25519
// signature under the envelope's signer key.
type Verifier struct{}

// NewVerifier returns a Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifySigned verifies a full envelope.
// Returns (signer pubkey, valid, error); error reports malformed envelopes,
// valid=false reports a well-formed envelope whose signature does not check.
func (v *Verifier) VerifySigned(tx *Signed) (crypto.Pubkey, bool, error) {
	account, err := crypto.PubkeyFromBase58(tx.Account)
	if err != nil {
		return crypto.Pubkey{}, false, fmt.Errorf("invalid account: %w", err)
	}
	signer, err := crypto.PubkeyFromBase58(tx.Signer)
	if err != nil {
		return crypto.Pubkey{}, false, fmt.Errorf("invalid signer: %w", err)
	}
	sig, err := crypto.SignatureFromBase58(tx.Signature)
	if err != nil {
		return crypto.Pubkey{}, false, fmt.Errorf("invalid signature: %w", err)
	}

	action, nonce, err := ParseActionJSON(tx.Action)
	if err != nil {
		return crypto.Pubkey{}, false, fmt.Errorf("invalid action: %w", err)
	}

	preimage := Preimage(action, nonce, account.Bytes(), signer.Bytes())
	if !crypto.Verify(signer, preimage, sig) {
		return signer, false, nil
	}
	return signer, true, nil
}

// VerifyPreimage verifies a signature over already-assembled pre-image bytes.
func (v *Verifier) VerifyPreimage(signer crypto.Pubkey, preimage []byte, sig crypto.Signature) bool {
	return crypto.Verify(signer, preimage, sig)
}

// DecodeSigned decodes an envelope's binary payload (as rebuilt from its
// action JSON) back into the action model. Useful for inspecting what was
// actually signed.
func (v *Verifier) DecodeSigned(tx *Signed) (Action, uint64, error) {
	action, nonce, err := ParseActionJSON(tx.Action)
	if err != nil {
		return nil, 0, err
	}
	// Round-trip through the binary form so decode-path validation
	// (discriminants, tags, trailing bytes) applies to what would be signed.
	return DecodePayload(EncodePayload(action, nonce))
}
