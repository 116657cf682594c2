// Package signer assembles, signs, and packages BULK transactions.
//
// Given a keypair and high-level order items (or any other action), it builds
// the canonical pre-image (wincode payload ‖ account pubkey ‖ signer
// pubkey), signs it with Ed25519, pre-computes the content-addressed order id
// for every place item, and emits the JSON-ready envelope. For external
// wallets, the prepared-message flow in prepared.go produces the same
// pre-image without signing.
package signer

import (
	"fmt"
	"math"

	"github.com/Bulk-trade/bulk-keychain/pkg/crypto"
	"github.com/Bulk-trade/bulk-keychain/pkg/transaction"
)

// Signer signs transactions with a fixed keypair. It is immutable and safe
// for concurrent use; its only long-lived state is the keypair and the
// optional NonceManager, which locks internally.
type Signer struct {
	keypair *crypto.Keypair
	nonces  *NonceManager
}

// New creates a signer from a keypair.
func New(keypair *crypto.Keypair) *Signer {
	return &Signer{keypair: keypair}
}

// FromBase58 creates a signer from a base58 secret (32-byte seed or 64-byte
// expanded keypair).
func FromBase58(secret string) (*Signer, error) {
	kp, err := crypto.FromBase58(secret)
	if err != nil {
		return nil, err
	}
	return New(kp), nil
}

// WithNonceManager creates a signer that allocates nonces from nm instead of
// reading the wall clock per call.
func WithNonceManager(keypair *crypto.Keypair, nm *NonceManager) *Signer {
	return &Signer{keypair: keypair, nonces: nm}
}

// Pubkey returns the signing key's public half.
func (s *Signer) Pubkey() crypto.Pubkey {
	return s.keypair.Pubkey()
}

// Options overrides per-call defaults. The zero value (or nil) signs with the
// keypair's own pubkey as both account and signer, and a nonce from the
// signer's NonceManager or, without one, the wall clock.
type Options struct {
	// Account is the trading account; defaults to the signer's pubkey.
	// Set when an agent wallet signs on another account's behalf.
	Account *crypto.Pubkey

	// Signer overrides the signer identity embedded in the pre-image;
	// defaults to the keypair's pubkey. The signature is always produced by
	// the keypair, so overriding this yields an envelope the exchange will
	// reject unless the keys match; it exists for building test vectors.
	Signer *crypto.Pubkey

	// Nonce fixes the nonce (base nonce for batch calls); defaults to the
	// signer's NonceManager when it has one, otherwise the current wall
	// clock in milliseconds, read once per call.
	Nonce *uint64

	// RejectNaN makes place items with NaN price, size, or trigger price
	// fail with ErrInvalidIntent instead of signing the raw bit pattern.
	RejectNaN bool
}

func (s *Signer) resolveKeys(opts *Options) (account, signerPk crypto.Pubkey) {
	account = s.keypair.Pubkey()
	signerPk = account
	if opts != nil && opts.Account != nil {
		account = *opts.Account
	}
	if opts != nil && opts.Signer != nil {
		signerPk = *opts.Signer
	}
	return account, signerPk
}

func (s *Signer) resolveNonce(opts *Options) uint64 {
	if opts != nil && opts.Nonce != nil {
		return *opts.Nonce
	}
	if s.nonces != nil {
		return s.nonces.Next()
	}
	return CurrentTimestampMillis()
}

// SignAction signs any action and returns the envelope.
func (s *Signer) SignAction(action transaction.Action, opts *Options) (*transaction.Signed, error) {
	nonce := s.resolveNonce(opts)
	return s.signWithNonce(action, nonce, opts)
}

func (s *Signer) signWithNonce(action transaction.Action, nonce uint64, opts *Options) (*transaction.Signed, error) {
	if opts != nil && opts.RejectNaN {
		if err := rejectNaN(action); err != nil {
			return nil, err
		}
	}
	account, signerPk := s.resolveKeys(opts)

	preimage := transaction.Preimage(action, nonce, account.Bytes(), signerPk.Bytes())
	sig := s.keypair.Sign(preimage)

	actionJSON, err := transaction.ActionJSON(action, nonce)
	if err != nil {
		return nil, err
	}

	return &transaction.Signed{
		Action:    actionJSON,
		Account:   account.String(),
		Signer:    signerPk.String(),
		Signature: sig.String(),
		OrderIDs:  orderIDs(action, nonce, account, signerPk),
	}, nil
}

// Sign signs a single order, cancel, or cancel-all as a one-item batch.
func (s *Signer) Sign(item transaction.OrderItem, opts *Options) (*transaction.Signed, error) {
	return s.SignAction(transaction.OrderBatch{item}, opts)
}

// SignIntent parses a camelCase intent and signs it.
func (s *Signer) SignIntent(intent transaction.Intent, opts *Options) (*transaction.Signed, error) {
	item, err := transaction.ParseIntent(intent)
	if err != nil {
		return nil, err
	}
	return s.Sign(item, opts)
}

// SignGroup signs all items atomically in ONE transaction. Use for bracket
// orders (entry + stop loss + take profit) that must succeed or fail
// together. Any invalid item fails the whole call.
func (s *Signer) SignGroup(items []transaction.OrderItem, opts *Options) (*transaction.Signed, error) {
	return s.SignAction(transaction.OrderBatch(items), opts)
}

// SignFaucet signs a testnet faucet request for the account. Amount nil
// requests the server default.
func (s *Signer) SignFaucet(amount *float64, opts *Options) (*transaction.Signed, error) {
	account, _ := s.resolveKeys(opts)
	return s.SignAction(transaction.Faucet{User: account, Amount: amount}, opts)
}

// SignAgentWallet signs an agent-wallet authorization (or, with delete,
// revocation).
func (s *Signer) SignAgentWallet(agent crypto.Pubkey, delete bool, opts *Options) (*transaction.Signed, error) {
	return s.SignAction(transaction.AgentWallet{Agent: agent, Delete: delete}, opts)
}

// SignUserSettings signs a max-leverage settings update.
func (s *Signer) SignUserSettings(settings []transaction.LeverageSetting, opts *Options) (*transaction.Signed, error) {
	return s.SignAction(transaction.UserSettings(settings), opts)
}

// SignOracle signs an oracle price update.
func (s *Signer) SignOracle(prices []transaction.OraclePrice, opts *Options) (*transaction.Signed, error) {
	return s.SignAction(transaction.Oracle(prices), opts)
}

// SignTestnetAdmin signs a batch of testnet admin sub-actions.
func (s *Signer) SignTestnetAdmin(actions []transaction.AdminAction, opts *Options) (*transaction.Signed, error) {
	return s.SignAction(transaction.TestnetAdmin(actions), opts)
}

// orderIDs pre-computes the exchange's content-addressed id for every place
// item: SHA-256 of the single-item pre-image under the envelope's nonce,
// account, and signer. For a one-item envelope this is exactly the SHA-256 of
// the signed pre-image; for a group it matches the server's per-order
// addressing while the signature still covers the whole batch.
func orderIDs(action transaction.Action, nonce uint64, account, signerPk crypto.Pubkey) []string {
	batch, ok := action.(transaction.OrderBatch)
	if !ok {
		return nil
	}
	var ids []string
	for _, item := range batch {
		if _, ok := item.(transaction.Order); !ok {
			continue
		}
		single := transaction.Preimage(
			transaction.OrderBatch{item}, nonce, account.Bytes(), signerPk.Bytes())
		ids = append(ids, crypto.OrderID(single).String())
	}
	return ids
}

// rejectNaN enforces the opt-in NaN gate on place items.
func rejectNaN(action transaction.Action) error {
	batch, ok := action.(transaction.OrderBatch)
	if !ok {
		return nil
	}
	for i, item := range batch {
		order, ok := item.(transaction.Order)
		if !ok {
			continue
		}
		if math.IsNaN(order.Price) || math.IsNaN(order.Size) {
			return fmt.Errorf("%w: item %d has NaN price or size", transaction.ErrInvalidIntent, i)
		}
		if t, ok := order.OrderType.(transaction.Trigger); ok && math.IsNaN(t.TriggerPx) {
			return fmt.Errorf("%w: item %d has NaN trigger price", transaction.ErrInvalidIntent, i)
		}
	}
	return nil
}
