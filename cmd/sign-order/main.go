// Command sign-order walks through the full signing flow end to end: load or
// generate a key, sign a limit order, a cancel, and an atomic bracket group,
// verify the signatures locally, and print the request-ready JSON.
//
// Set BULK_SECRET_KEY (base58, seed or expanded form) in the environment or a
// .env file to sign with an existing key; otherwise a fresh keypair is
// generated.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Bulk-trade/bulk-keychain/pkg/crypto"
	"github.com/Bulk-trade/bulk-keychain/pkg/signer"
	"github.com/Bulk-trade/bulk-keychain/pkg/transaction"
)

func main() {
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("sign-order failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	// .env is optional; the environment wins either way.
	_ = godotenv.Load()

	s, generated, err := loadSigner()
	if err != nil {
		return err
	}
	logger.Info("signer ready",
		zap.String("pubkey", s.Pubkey().String()),
		zap.Bool("generated", generated))

	verifier := transaction.NewVerifier()

	// Single limit order.
	order := transaction.NewLimitOrder("BTC-USD", true, 100000.0, 0.1, transaction.Gtc)
	tx, err := s.Sign(order, nil)
	if err != nil {
		return fmt.Errorf("sign order: %w", err)
	}
	if err := report(logger, verifier, "limit order", tx); err != nil {
		return err
	}

	// Cancel by the order id we just pre-computed.
	oid, err := crypto.HashFromBase58(tx.OrderIDs[0])
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	cancelTx, err := s.Sign(transaction.NewCancel("BTC-USD", oid), nil)
	if err != nil {
		return fmt.Errorf("sign cancel: %w", err)
	}
	if err := report(logger, verifier, "cancel", cancelTx); err != nil {
		return err
	}

	// Atomic bracket: entry + stop loss + take profit in one transaction.
	bracket := []transaction.OrderItem{
		transaction.NewLimitOrder("BTC-USD", true, 100000.0, 0.1, transaction.Gtc),
		transaction.NewLimitOrder("BTC-USD", false, 99000.0, 0.1, transaction.Gtc),
		transaction.NewLimitOrder("BTC-USD", false, 110000.0, 0.1, transaction.Gtc),
	}
	groupTx, err := s.SignGroup(bracket, nil)
	if err != nil {
		return fmt.Errorf("sign group: %w", err)
	}
	return report(logger, verifier, "bracket group", groupTx)
}

// loadSigner builds a signer from BULK_SECRET_KEY, or generates a fresh
// keypair when the variable is unset.
func loadSigner() (*signer.Signer, bool, error) {
	if secret := os.Getenv("BULK_SECRET_KEY"); secret != "" {
		s, err := signer.FromBase58(secret)
		if err != nil {
			return nil, false, fmt.Errorf("BULK_SECRET_KEY: %w", err)
		}
		return s, false, nil
	}
	kp, err := crypto.Generate()
	if err != nil {
		return nil, false, err
	}
	return signer.New(kp), true, nil
}

func report(logger *zap.Logger, verifier *transaction.Verifier, name string, tx *transaction.Signed) error {
	signerPk, valid, err := verifier.VerifySigned(tx)
	if err != nil {
		return fmt.Errorf("verify %s: %w", name, err)
	}
	if !valid {
		return fmt.Errorf("verify %s: signature invalid", name)
	}
	logger.Info("signed and verified",
		zap.String("tx", name),
		zap.String("signer", signerPk.String()),
		zap.Strings("orderIds", tx.OrderIDs))

	body, err := tx.Serialize()
	if err != nil {
		return fmt.Errorf("serialize %s: %w", name, err)
	}
	fmt.Println(string(body))
	return nil
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
