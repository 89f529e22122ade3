package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignatureSize is the length of a Cosmos secp256k1 signature: r || s,
// 32 bytes each, no recovery byte.
const SignatureSize = 64

// Signer signs 32-byte digests. Transactions are signed over the SHA-256
// of their SignDoc.
type Signer interface {
	Sign(hash []byte) ([]byte, error)
	// PublicKey returns the 33-byte compressed key.
	PublicKey() []byte
}

// PrivateKey is a secp256k1 signing key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PrivateKeyFromBytes parses a 32-byte scalar.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

// Sign returns a deterministic (RFC 6979) low-S signature over hash.
func (pk *PrivateKey) Sign(hash []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}
	// SignCompact emits [recovery][r][s] with s already normalized low.
	compact := ecdsa.SignCompact(pk.key, hash, true)
	return compact[1:], nil
}

func (pk *PrivateKey) PublicKey() []byte {
	return pk.key.PubKey().SerializeCompressed()
}

// Zero wipes the scalar. The key is unusable afterwards.
func (pk *PrivateKey) Zero() {
	pk.key.Zero()
}

// VerifySignature reports whether sig is a valid low-S r || s signature of
// hash under the compressed pubKey.
func VerifySignature(hash, sig, pubKey []byte) bool {
	if len(hash) != 32 || len(sig) != SignatureSize {
		return false
	}
	pub, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	var r, s secp256k1.ModNScalar
	if r.SetByteSlice(sig[:32]) || s.SetByteSlice(sig[32:]) || s.IsOverHalfOrder() {
		return false
	}
	return ecdsa.NewSignature(&r, &s).Verify(hash, pub)
}
