// Package types holds the chain-level value types shared by the wallet core.
package types

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// AddressSize is the length of an account address in bytes.
const AddressSize = 20

// Address is a 160-bit account address (ripemd160 of sha256 of the pubkey).
type Address [AddressSize]byte

// IsZero returns true if the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Hex returns the raw hex-encoded address.
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// Bytes returns a copy of the address as a byte slice.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressSize)
	copy(b, a[:])
	return b
}

// Bech32 encodes the address with the given human-readable prefix (e.g. "sei").
func (a Address) Bech32(prefix string) (string, error) {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert bits: %w", err)
	}
	s, err := bech32.Encode(prefix, conv)
	if err != nil {
		return "", fmt.Errorf("bech32 encode: %w", err)
	}
	return s, nil
}

// ParseAddress decodes a bech32 account address and checks that its
// prefix matches.
func ParseAddress(s, prefix string) (Address, error) {
	raw, err := decodeBech32(s, prefix)
	if err != nil {
		return Address{}, err
	}
	if len(raw) != AddressSize {
		return Address{}, fmt.Errorf("address must be %d bytes, got %d", AddressSize, len(raw))
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// ContractAddressSize is the payload length of contract and module account
// addresses.
const ContractAddressSize = 32

// ValidateRecipient checks that s is a bech32 address under prefix that can
// receive funds: a 20-byte account or a 32-byte contract address.
func ValidateRecipient(s, prefix string) error {
	raw, err := decodeBech32(s, prefix)
	if err != nil {
		return err
	}
	if len(raw) != AddressSize && len(raw) != ContractAddressSize {
		return fmt.Errorf("address must be %d or %d bytes, got %d", AddressSize, ContractAddressSize, len(raw))
	}
	return nil
}

func decodeBech32(s, prefix string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty address")
	}
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid bech32 address: %w", err)
	}
	if hrp != prefix {
		return nil, fmt.Errorf("address prefix %q, want %q", hrp, prefix)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("convert bits: %w", err)
	}
	return raw, nil
}

// HasPrefix reports whether s starts with the bech32 prefix followed by the
// separator. It does not check the checksum.
func HasPrefix(s, prefix string) bool {
	return prefix != "" && strings.HasPrefix(strings.ToLower(s), prefix+"1")
}
