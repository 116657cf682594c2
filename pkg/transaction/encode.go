package transaction

import (
	"github.com/Bulk-trade/bulk-keychain/pkg/wincode"
)

// payloadSizeHint bounds a typical single-order payload so the writer
// allocates once. Larger batches grow the buffer as needed.
const payloadSizeHint = 96

// EncodePayload serializes an action into the canonical signed form:
//
//	u32 action discriminant ‖ variant payload ‖ u64 nonce
//
// The account and signer pubkeys are NOT part of this encoding; the signer
// appends them when assembling the pre-image. Equal actions and nonces
// produce byte-identical output.
func EncodePayload(a Action, nonce uint64) []byte {
	w := wincode.NewWriterSize(payloadSizeHint)
	w.WriteU32(uint32(a.Kind()))
	a.encodePayload(w)
	w.WriteU64(nonce)
	return w.Bytes()
}

// Preimage assembles the full byte string the exchange verifies:
//
//	EncodePayload(a, nonce) ‖ account ‖ signer
func Preimage(a Action, nonce uint64, account, signer []byte) []byte {
	payload := EncodePayload(a, nonce)
	pre := make([]byte, 0, len(payload)+len(account)+len(signer))
	pre = append(pre, payload...)
	pre = append(pre, account...)
	pre = append(pre, signer...)
	return pre
}
