// Package wallet holds the key material behind an account: BIP-39 recovery
// phrases, BIP-32/44 derivation and password-based encryption at rest.
package wallet

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// Supported recovery phrase lengths.
const (
	WordsShort = 12 // 128 bits of entropy, the default for new wallets.
	WordsLong  = 24 // 256 bits of entropy.
)

// entropyBits maps a phrase length to its BIP-39 entropy size.
func entropyBits(words int) (int, error) {
	switch words {
	case WordsShort:
		return 128, nil
	case WordsLong:
		return 256, nil
	default:
		return 0, fmt.Errorf("unsupported word count %d (want %d or %d)", words, WordsShort, WordsLong)
	}
}

// GenerateMnemonic creates a new BIP-39 mnemonic with the given word count.
func GenerateMnemonic(words int) (string, error) {
	bits, err := entropyBits(words)
	if err != nil {
		return "", err
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic is valid per BIP-39
// (correct word count, valid words, valid checksum).
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// NormalizeMnemonic lowercases the phrase and collapses any run of
// whitespace (spaces, tabs, newlines from a paste) into single spaces.
func NormalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
}

// WordCount returns the number of whitespace-separated words.
func WordCount(mnemonic string) int {
	return len(strings.Fields(mnemonic))
}
