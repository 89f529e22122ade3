package store

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/Klingon-tech/seiwallet/pkg/crypto"
)

// Kind records how a wallet came to exist.
type Kind int

const (
	Created Kind = iota
	Imported
)

func (k Kind) String() string {
	if k == Imported {
		return "imported"
	}
	return "created"
}

// Record is the persisted wallet. Exactly one exists per chain.
type Record struct {
	Name              string     `json:"name"`
	Address           string     `json:"address"`
	Mnemonic          string     `json:"mnemonic,omitempty"`          // Legacy plaintext phrase.
	EncryptedMnemonic string     `json:"encryptedMnemonic,omitempty"` // base64 of wallet.Encrypt output.
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
	ImportedAt        *time.Time `json:"importedAt,omitempty"`
	Network           string     `json:"network"`
	Checksum          string     `json:"checksum,omitempty"`
}

// HasPhrase reports whether the record carries a recovery phrase in any form.
func (r *Record) HasPhrase() bool {
	return r.Mnemonic != "" || r.EncryptedMnemonic != ""
}

// AddressDiffers reports whether a stored address disagrees with the one
// derived from the phrase. Records without an address never differ; the
// phrase alone identifies the account.
func (r *Record) AddressDiffers(derived string) bool {
	return r.Address != "" && r.Address != derived
}

// Encrypted reports whether the phrase is password-protected.
func (r *Record) Encrypted() bool {
	return r.EncryptedMnemonic != ""
}

// computeChecksum hashes the record with the checksum field cleared.
func (r Record) computeChecksum() (string, error) {
	r.Checksum = ""
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	sum := crypto.Checksum(data)
	return hex.EncodeToString(sum[:]), nil
}
