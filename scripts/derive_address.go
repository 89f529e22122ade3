// derive_address.go prints the pubkey and address for a recovery phrase
// read from stdin, or for a hex-encoded private key file.
// Usage: go run scripts/derive_address.go [--prefix sei] [--path m/44'/118'/0'/0/0] [keyfile]
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/seiwallet/internal/wallet"
	"github.com/Klingon-tech/seiwallet/pkg/crypto"
)

func main() {
	prefix := flag.String("prefix", "sei", "bech32 prefix")
	pathFlag := flag.String("path", wallet.PrimaryPath.String(), "derivation path for a phrase")
	flag.Parse()

	path, err := wallet.ParsePath(*pathFlag)
	if err != nil {
		fail(err)
	}

	var pub []byte
	if flag.NArg() > 0 {
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fail(err)
		}
		keyBytes, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			fail(err)
		}
		key, err := crypto.PrivateKeyFromBytes(keyBytes)
		if err != nil {
			fail(err)
		}
		defer key.Zero()
		pub = key.PublicKey()
	} else {
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		key, err := wallet.KeyFromMnemonic(wallet.NormalizeMnemonic(line), path)
		if err != nil {
			fail(err)
		}
		pub = key.PublicKeyBytes()
		fmt.Printf("path=%s\n", path)
	}

	addr, err := crypto.AddressFromPubKey(pub).Bech32(*prefix)
	if err != nil {
		fail(err)
	}
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(pub))
	fmt.Printf("address=%s\n", addr)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
