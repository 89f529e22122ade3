// Package store persists the single wallet record in the local key-value
// database and restores a session from it.
package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/session"
	"github.com/Klingon-tech/seiwallet/internal/storage"
	"github.com/Klingon-tech/seiwallet/internal/wallet"
)

// RecordKey is the storage key of the wallet record.
const RecordKey = "sei_wallet"

var (
	ErrNoWallet              = errors.New("no wallet stored")
	ErrCorruptRecord         = errors.New("stored wallet record is corrupt")
	ErrMissingRecoveryPhrase = errors.New("stored wallet has no recovery phrase")
	ErrWrongPassword         = errors.New("wrong password")
)

// Store reads and writes the wallet record of one chain.
type Store struct {
	db      storage.DB
	chainID string
	params  wallet.EncryptionParams

	mu sync.Mutex // serializes read-modify-write
}

// New creates a store over db, namespaced by chainID.
func New(db storage.DB, chainID string) *Store {
	return &Store{
		db:      storage.NewPrefixDB(db, storage.ChainPrefix(chainID)),
		chainID: chainID,
		params:  wallet.DefaultParams(),
	}
}

// SetEncryptionParams overrides the Argon2id cost used for new records.
func (s *Store) SetEncryptionParams(p wallet.EncryptionParams) {
	s.params = p
}

// Save writes a new record, replacing any existing one. A non-empty password
// encrypts the phrase; an empty one stores it in plaintext.
func (s *Store) Save(name, address, phrase string, kind Kind, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec := &Record{
		Name:    name,
		Address: address,
		Network: s.chainID,
	}
	if kind == Imported {
		rec.ImportedAt = &now
	} else {
		rec.CreatedAt = &now
	}

	if password != "" {
		enc, err := wallet.Encrypt([]byte(phrase), []byte(password), s.params)
		if err != nil {
			return fmt.Errorf("encrypt phrase: %w", err)
		}
		rec.EncryptedMnemonic = base64.StdEncoding.EncodeToString(enc)
	} else {
		log.Store.Warn().Str("address", address).Msg("Recovery phrase stored without a password")
		rec.Mnemonic = phrase
	}

	if err := s.put(rec); err != nil {
		return err
	}
	log.Store.Info().Str("address", address).Str("kind", kind.String()).Msg("Wallet saved")
	return nil
}

// Load returns the stored record.
func (s *Store) Load() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Exists reports whether a record is stored, without validating it.
func (s *Store) Exists() (bool, error) {
	return s.db.Has([]byte(RecordKey))
}

// UpdateDisplayName changes only the name. No-op when nothing is stored.
func (s *Store) UpdateDisplayName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load()
	if errors.Is(err, ErrNoWallet) {
		return nil
	}
	if err != nil {
		return err
	}
	rec.Name = name
	return s.put(rec)
}

// Delete removes the stored record.
func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Delete([]byte(RecordKey)); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	log.Store.Info().Msg("Wallet record deleted")
	return nil
}

// Phrase returns the stored recovery phrase, decrypting it with password
// when needed.
func (s *Store) Phrase(password string) (string, error) {
	rec, err := s.Load()
	if err != nil {
		return "", err
	}
	return decodePhrase(rec, password)
}

// Restored is the result of restoring a session from the store.
type Restored struct {
	Active *session.Active
	Record *Record
	// AddressMismatch is set when the rederived address differs from the
	// stored one. The stored address is left as is.
	AddressMismatch bool
}

// RestoreSession rederives the session from the stored phrase.
func (s *Store) RestoreSession(sessions *session.Manager, password string) (*Restored, error) {
	rec, err := s.Load()
	if err != nil {
		return nil, err
	}
	phrase, err := decodePhrase(rec, password)
	if err != nil {
		return nil, err
	}

	active, err := sessions.RestoreFromPhrase(phrase, rec.Name)
	if err != nil {
		return nil, err
	}

	out := &Restored{Active: active, Record: rec}
	if rec.AddressDiffers(active.Address) {
		out.AddressMismatch = true
		log.Store.Warn().
			Str("stored", rec.Address).
			Str("derived", active.Address).
			Msg("Stored address differs from derived address")
	}
	return out, nil
}

func decodePhrase(rec *Record, password string) (string, error) {
	if !rec.HasPhrase() {
		return "", ErrMissingRecoveryPhrase
	}
	if !rec.Encrypted() {
		return rec.Mnemonic, nil
	}
	if password == "" {
		return "", fmt.Errorf("%w: password required", ErrWrongPassword)
	}

	enc, err := base64.StdEncoding.DecodeString(rec.EncryptedMnemonic)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	plain, err := wallet.Decrypt(enc, []byte(password))
	if errors.Is(err, wallet.ErrDecrypt) {
		return "", ErrWrongPassword
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return string(plain), nil
}

func (s *Store) load() (*Record, error) {
	data, err := s.db.Get([]byte(RecordKey))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoWallet
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	// Records written before checksums existed carry none.
	if rec.Checksum != "" {
		want, err := rec.computeChecksum()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		if want != rec.Checksum {
			return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptRecord)
		}
	}
	return &rec, nil
}

func (s *Store) put(rec *Record) error {
	sum, err := rec.computeChecksum()
	if err != nil {
		return fmt.Errorf("checksum: %w", err)
	}
	rec.Checksum = sum
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := s.db.Put([]byte(RecordKey), data); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}
