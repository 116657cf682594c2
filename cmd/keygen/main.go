// Command keygen generates an Ed25519 keypair and prints the public key and
// the base58 expanded secret (seed ‖ pubkey), the form wallets import.
package main

import (
	"fmt"
	"os"

	"github.com/Bulk-trade/bulk-keychain/pkg/crypto"
)

func main() {
	kp, err := crypto.Generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("pubkey: %s\n", kp.Pubkey())
	fmt.Printf("secret: %s\n", kp.ToBase58())
	fmt.Println("\nKeep the secret offline. Export BULK_SECRET_KEY to sign with it.")
}
