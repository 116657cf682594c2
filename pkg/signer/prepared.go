package signer

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Bulk-trade/bulk-keychain/pkg/crypto"
	"github.com/Bulk-trade/bulk-keychain/pkg/transaction"
	"github.com/Bulk-trade/bulk-keychain/pkg/wincode"
)

// PreparedMessage is a transaction assembled for an external wallet: the
// exact pre-image bytes to sign, the action's wire JSON, and the
// pre-computed order ids. Hand MessageBytes to the wallet, then attach its
// signature with Finalize.
type PreparedMessage struct {
	MessageBytes []byte          `json:"messageBytes"`
	Action       json.RawMessage `json:"action"`
	Account      string          `json:"account"`
	Signer       string          `json:"signer"`
	Nonce        uint64          `json:"nonce"`
	OrderIDs     []string        `json:"orderIds,omitempty"`
}

// MessageBase58 renders the pre-image in base58.
func (p *PreparedMessage) MessageBase58() string {
	return wincode.EncodeBase58(p.MessageBytes)
}

// MessageBase64 renders the pre-image in standard base64.
func (p *PreparedMessage) MessageBase64() string {
	return base64.StdEncoding.EncodeToString(p.MessageBytes)
}

// MessageHex renders the pre-image as 0x-prefixed hex.
func (p *PreparedMessage) MessageHex() string {
	return hexutil.Encode(p.MessageBytes)
}

// PrepareOptions configures the prepared-message flow. Account is required;
// there is no keypair to default to.
type PrepareOptions struct {
	// Account is the trading account whose transaction this is.
	Account crypto.Pubkey

	// Signer is the key that will sign; defaults to Account.
	Signer *crypto.Pubkey

	// Nonce fixes the nonce (base nonce for PrepareAll); defaults to the
	// current wall clock in milliseconds, read once.
	Nonce *uint64
}

func (o PrepareOptions) keys() (account, signerPk crypto.Pubkey) {
	account = o.Account
	signerPk = account
	if o.Signer != nil {
		signerPk = *o.Signer
	}
	return account, signerPk
}

func (o PrepareOptions) nonce() uint64 {
	if o.Nonce != nil {
		return *o.Nonce
	}
	return CurrentTimestampMillis()
}

// PrepareAction assembles the pre-image for any action without signing it.
func PrepareAction(action transaction.Action, opts PrepareOptions) (*PreparedMessage, error) {
	return prepareWithNonce(action, opts.nonce(), opts)
}

func prepareWithNonce(action transaction.Action, nonce uint64, opts PrepareOptions) (*PreparedMessage, error) {
	account, signerPk := opts.keys()

	actionJSON, err := transaction.ActionJSON(action, nonce)
	if err != nil {
		return nil, err
	}

	return &PreparedMessage{
		MessageBytes: transaction.Preimage(action, nonce, account.Bytes(), signerPk.Bytes()),
		Action:       actionJSON,
		Account:      account.String(),
		Signer:       signerPk.String(),
		Nonce:        nonce,
		OrderIDs:     orderIDs(action, nonce, account, signerPk),
	}, nil
}

// Prepare assembles a single order/cancel/cancel-all for external signing.
func Prepare(item transaction.OrderItem, opts PrepareOptions) (*PreparedMessage, error) {
	return PrepareAction(transaction.OrderBatch{item}, opts)
}

// PrepareGroup assembles one atomic multi-item transaction for external
// signing.
func PrepareGroup(items []transaction.OrderItem, opts PrepareOptions) (*PreparedMessage, error) {
	return PrepareAction(transaction.OrderBatch(items), opts)
}

// PrepareAll assembles an independent transaction per item with contiguous
// nonces from the base. Unlike SignAll there is no signature to fail per
// slot, so the first invalid item fails the whole call.
func PrepareAll(items []transaction.OrderItem, opts PrepareOptions) ([]*PreparedMessage, error) {
	base := opts.nonce()
	prepared := make([]*PreparedMessage, len(items))
	for i, item := range items {
		p, err := prepareWithNonce(transaction.OrderBatch{item}, base+uint64(i), opts)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		prepared[i] = p
	}
	return prepared, nil
}

// PrepareFaucet assembles a faucet request for external signing.
func PrepareFaucet(amount *float64, opts PrepareOptions) (*PreparedMessage, error) {
	account, _ := opts.keys()
	return PrepareAction(transaction.Faucet{User: account, Amount: amount}, opts)
}

// PrepareAgentWallet assembles an agent-wallet authorization for external
// signing.
func PrepareAgentWallet(agent crypto.Pubkey, delete bool, opts PrepareOptions) (*PreparedMessage, error) {
	return PrepareAction(transaction.AgentWallet{Agent: agent, Delete: delete}, opts)
}

// PrepareUserSettings assembles a settings update for external signing.
func PrepareUserSettings(settings []transaction.LeverageSetting, opts PrepareOptions) (*PreparedMessage, error) {
	return PrepareAction(transaction.UserSettings(settings), opts)
}

// Finalize attaches an externally produced 64-byte signature to a prepared
// message. It validates only the length; the caller is trusted to have
// signed exactly MessageBytes.
func Finalize(p *PreparedMessage, signature []byte) (*transaction.Signed, error) {
	sig, err := crypto.SignatureFromBytes(signature)
	if err != nil {
		return nil, err
	}
	return &transaction.Signed{
		Action:    p.Action,
		Account:   p.Account,
		Signer:    p.Signer,
		Signature: sig.String(),
		OrderIDs:  p.OrderIDs,
	}, nil
}

// FinalizeBase58 is Finalize for a base58-encoded signature.
func FinalizeBase58(p *PreparedMessage, signature string) (*transaction.Signed, error) {
	sig, err := crypto.SignatureFromBase58(signature)
	if err != nil {
		return nil, err
	}
	return Finalize(p, sig.Bytes())
}
