package wallet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Klingon-tech/seiwallet/pkg/crypto"
	"github.com/Klingon-tech/seiwallet/pkg/types"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// SeedSize is the length of a BIP-39 seed.
const SeedSize = 64

// CoinType is the SLIP-44 coin type of Cosmos-SDK chains, SEI included.
const CoinType = 118

var (
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	ErrInvalidPath     = errors.New("invalid derivation path")
)

// Path is a BIP-32 derivation path. Hardened levels carry
// bip32.FirstHardenedChild.
type Path []uint32

// AccountPath returns m/44'/118'/account'/0/index.
func AccountPath(account, index uint32) Path {
	h := uint32(bip32.FirstHardenedChild)
	return Path{h + 44, h + CoinType, h + account, 0, index}
}

// PrimaryPath is the path of the single account a wallet exposes,
// m/44'/118'/0'/0/0, the one Keplr and cosmjs use.
var PrimaryPath = AccountPath(0, 0)

// ParsePath parses a path like "m/44'/118'/0'/0/0". Both ' and h mark a
// hardened level.
func ParsePath(s string) (Path, error) {
	levels := strings.Split(strings.TrimSpace(s), "/")
	if len(levels) < 2 || levels[0] != "m" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, s)
	}
	path := make(Path, 0, len(levels)-1)
	for _, level := range levels[1:] {
		var hardened bool
		if n := strings.TrimRight(level, "'h"); len(n) == len(level)-1 {
			level, hardened = n, true
		}
		idx, err := strconv.ParseUint(level, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, s)
		}
		if hardened {
			idx += uint64(bip32.FirstHardenedChild)
		}
		path = append(path, uint32(idx))
	}
	return path, nil
}

func (p Path) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, idx := range p {
		b.WriteByte('/')
		if idx >= bip32.FirstHardenedChild {
			b.WriteString(strconv.FormatUint(uint64(idx-bip32.FirstHardenedChild), 10))
			b.WriteByte('\'')
			continue
		}
		b.WriteString(strconv.FormatUint(uint64(idx), 10))
	}
	return b.String()
}

// SeedFromMnemonic runs the BIP-39 PBKDF2 over a validated phrase. Wallets
// made here always pass an empty passphrase.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}
	return seed, nil
}

// HDKey is a private BIP-32 key at some path.
type HDKey struct {
	key  *bip32.Key
	path Path
}

// KeyFromSeed derives the key at path from a 64-byte seed.
func KeyFromSeed(seed []byte, path Path) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	k, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	for i, idx := range path {
		if k, err = k.NewChildKey(idx); err != nil {
			return nil, fmt.Errorf("derive %s at level %d: %w", path, i+1, err)
		}
	}
	return &HDKey{key: k, path: path}, nil
}

// KeyFromMnemonic derives the key at path from a phrase.
func KeyFromMnemonic(mnemonic string, path Path) (*HDKey, error) {
	seed, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, err
	}
	defer zeroBytes(seed)
	return KeyFromSeed(seed, path)
}

// PrimaryKeyFromMnemonic derives the key at PrimaryPath.
func PrimaryKeyFromMnemonic(mnemonic string) (*HDKey, error) {
	return KeyFromMnemonic(mnemonic, PrimaryPath)
}

// Path returns the path the key was derived at.
func (k *HDKey) Path() Path {
	return k.path
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *HDKey) PublicKeyBytes() []byte {
	return k.key.PublicKey().Key
}

// Signer returns a signing key. The caller zeroes it when done.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	// bip32 may hand back the scalar with its leading zero bytes trimmed.
	var scalar [32]byte
	raw := k.key.Key
	if len(raw) > len(scalar) {
		raw = raw[len(raw)-len(scalar):]
	}
	copy(scalar[len(scalar)-len(raw):], raw)
	defer zeroBytes(scalar[:])
	return crypto.PrivateKeyFromBytes(scalar[:])
}

// Address returns the 20-byte account address.
func (k *HDKey) Address() types.Address {
	return crypto.AddressFromPubKey(k.PublicKeyBytes())
}

// Bech32Address returns the account address encoded with prefix.
func (k *HDKey) Bech32Address(prefix string) (string, error) {
	return k.Address().Bech32(prefix)
}
