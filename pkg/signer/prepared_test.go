package signer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/Bulk-trade/bulk-keychain/pkg/crypto"
	"github.com/Bulk-trade/bulk-keychain/pkg/transaction"
	"github.com/Bulk-trade/bulk-keychain/pkg/wincode"
)

func TestPrepareFinalizeMatchesSign(t *testing.T) {
	kp, _ := crypto.Generate()
	s := New(kp)
	order := transaction.NewLimitOrder("BTC-USD", true, 100000, 0.1, transaction.Gtc)
	nonce := uint64(1704067200000)

	prepared, err := Prepare(order, PrepareOptions{Account: kp.Pubkey(), Nonce: &nonce})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	// The external wallet signs exactly MessageBytes.
	sig := kp.Sign(prepared.MessageBytes)
	finalized, err := Finalize(prepared, sig.Bytes())
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	direct, err := s.Sign(order, &Options{Nonce: &nonce})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, _ := finalized.Serialize()
	want, _ := direct.Serialize()
	if !bytes.Equal(got, want) {
		t.Errorf("finalize(prepare) != sign:\n got %s\nwant %s", got, want)
	}
}

func TestPreparedMessageEncodings(t *testing.T) {
	kp, _ := crypto.Generate()
	nonce := uint64(1)
	prepared, err := Prepare(
		transaction.CancelAllFor(nil), PrepareOptions{Account: kp.Pubkey(), Nonce: &nonce})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	if got, _ := wincode.DecodeBase58Any(prepared.MessageBase58()); !bytes.Equal(got, prepared.MessageBytes) {
		t.Error("base58 encoding does not round-trip")
	}
	if got, _ := base64.StdEncoding.DecodeString(prepared.MessageBase64()); !bytes.Equal(got, prepared.MessageBytes) {
		t.Error("base64 encoding does not round-trip")
	}
	if !strings.HasPrefix(prepared.MessageHex(), "0x") {
		t.Errorf("hex encoding = %q, want 0x prefix", prepared.MessageHex())
	}
}

func TestPrepareOrderIDsMatchSign(t *testing.T) {
	kp, _ := crypto.Generate()
	s := New(kp)
	nonce := uint64(42)
	items := []transaction.OrderItem{
		transaction.NewLimitOrder("BTC-USD", true, 1, 1, transaction.Gtc),
		transaction.NewLimitOrder("ETH-USD", false, 2, 2, transaction.Ioc),
	}

	prepared, err := PrepareGroup(items, PrepareOptions{Account: kp.Pubkey(), Nonce: &nonce})
	if err != nil {
		t.Fatalf("prepare group: %v", err)
	}
	signed, err := s.SignGroup(items, &Options{Nonce: &nonce})
	if err != nil {
		t.Fatalf("sign group: %v", err)
	}

	if len(prepared.OrderIDs) != len(signed.OrderIDs) {
		t.Fatalf("orderIds length = %d, want %d", len(prepared.OrderIDs), len(signed.OrderIDs))
	}
	for i := range prepared.OrderIDs {
		if prepared.OrderIDs[i] != signed.OrderIDs[i] {
			t.Errorf("orderIds[%d] = %s, want %s", i, prepared.OrderIDs[i], signed.OrderIDs[i])
		}
	}
}

func TestPrepareAllContiguousNonces(t *testing.T) {
	kp, _ := crypto.Generate()
	base := uint64(100)
	prepared, err := PrepareAll(makeOrders(4), PrepareOptions{Account: kp.Pubkey(), Nonce: &base})
	if err != nil {
		t.Fatalf("prepare all: %v", err)
	}
	for i, p := range prepared {
		if p.Nonce != base+uint64(i) {
			t.Errorf("nonce[%d] = %d, want %d", i, p.Nonce, base+uint64(i))
		}
	}
}

func TestPrepareSignerOverride(t *testing.T) {
	account, _ := crypto.Generate()
	agent, _ := crypto.Generate()
	agentPk := agent.Pubkey()
	nonce := uint64(5)

	prepared, err := Prepare(
		transaction.CancelAllFor(nil),
		PrepareOptions{Account: account.Pubkey(), Signer: &agentPk, Nonce: &nonce})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	// The agent signs; the envelope verifies under the agent key while the
	// account stays the trading account.
	sig := agent.Sign(prepared.MessageBytes)
	tx, err := Finalize(prepared, sig.Bytes())
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	signerPk, valid, err := transaction.NewVerifier().VerifySigned(tx)
	if err != nil || !valid {
		t.Fatalf("verify = (%v, %v), want valid", valid, err)
	}
	if signerPk != agentPk {
		t.Errorf("signer = %s, want agent %s", signerPk, agentPk)
	}
	if tx.Account != account.Pubkey().String() {
		t.Errorf("account = %s, want %s", tx.Account, account.Pubkey())
	}
}

func TestFinalizeRejectsBadLength(t *testing.T) {
	kp, _ := crypto.Generate()
	nonce := uint64(1)
	prepared, _ := Prepare(
		transaction.CancelAllFor(nil), PrepareOptions{Account: kp.Pubkey(), Nonce: &nonce})

	if _, err := Finalize(prepared, make([]byte, 63)); !errors.Is(err, crypto.ErrInvalidSignatureLength) {
		t.Errorf("err = %v, want ErrInvalidSignatureLength", err)
	}
	if _, err := FinalizeBase58(prepared, "tooShort"); !errors.Is(err, crypto.ErrInvalidSignatureLength) {
		t.Errorf("err = %v, want ErrInvalidSignatureLength", err)
	}
}

func TestPrepareFaucet(t *testing.T) {
	kp, _ := crypto.Generate()
	amount := 500.0
	nonce := uint64(2)
	prepared, err := PrepareFaucet(&amount, PrepareOptions{Account: kp.Pubkey(), Nonce: &nonce})
	if err != nil {
		t.Fatalf("prepare faucet: %v", err)
	}

	action, n, err := transaction.ParseActionJSON(prepared.Action)
	if err != nil {
		t.Fatalf("parse action: %v", err)
	}
	if n != 2 {
		t.Errorf("nonce = %d, want 2", n)
	}
	faucet, ok := action.(transaction.Faucet)
	if !ok {
		t.Fatalf("action = %T, want Faucet", action)
	}
	if faucet.User != kp.Pubkey() || faucet.Amount == nil || *faucet.Amount != 500 {
		t.Errorf("faucet = %+v", faucet)
	}
}
