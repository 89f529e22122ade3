// Package crypto provides the hashing and signing primitives used by the wallet.
package crypto

import (
	"crypto/sha256"

	"github.com/Klingon-tech/seiwallet/pkg/types"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // Cosmos addresses are defined over RIPEMD-160.
)

// Sha256 computes the SHA-256 digest used for sign docs and tx hashes.
func Sha256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// AddressFromPubKey derives an account address from a compressed public key.
// Address = RIPEMD160(SHA256(compressed_pubkey)).
func AddressFromPubKey(pubKey []byte) types.Address {
	sh := sha256.Sum256(pubKey)
	h := ripemd160.New()
	h.Write(sh[:])
	var addr types.Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// Checksum computes a BLAKE3-256 digest, used to detect corrupted records.
func Checksum(data []byte) [32]byte {
	return blake3.Sum256(data)
}
