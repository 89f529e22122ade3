// Package session manages the single in-memory account session: creating a
// fresh recovery phrase, restoring from one, and clearing on logout.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/signer"
	"github.com/Klingon-tech/seiwallet/internal/wallet"
)

var (
	ErrProviderUnavailable = errors.New("signing provider unavailable")
	ErrGenerationFailed    = errors.New("wallet generation failed")
	ErrInvalidPhraseLength = errors.New("recovery phrase must be 12 or 24 words")
	ErrInvalidPhrase       = errors.New("invalid recovery phrase")
	ErrNoAccounts          = errors.New("session has no accounts")
)

// Active is a live session and the facts derived from it.
type Active struct {
	Session   signer.Session
	Address   string
	Name      string
	StartedAt time.Time
}

// Manager owns at most one active session.
type Manager struct {
	provider signer.Provider
	prefix   string

	mu     sync.RWMutex
	active *Active
}

// NewManager creates a session manager. prefix is the bech32 human-readable
// part of derived addresses.
func NewManager(provider signer.Provider, prefix string) *Manager {
	return &Manager{provider: provider, prefix: prefix}
}

// Provider returns the signing provider sessions are created with.
func (m *Manager) Provider() signer.Provider {
	return m.provider
}

// GenerateNew creates a fresh 12-word phrase and makes its session active.
// The phrase is returned once so the caller can show it for backup.
func (m *Manager) GenerateNew(displayName string) (*Active, string, error) {
	if err := signer.CheckReady(m.provider); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	s, phrase, err := m.provider.Generate(wallet.WordsShort, m.prefix)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	addr, err := PrimaryAddress(s)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	a := m.activate(s, addr, displayName)
	log.Wallet.Info().Str("address", addr).Msg("New wallet generated")
	return a, phrase, nil
}

// RestoreFromPhrase rederives the session from an existing phrase and makes
// it active. Whitespace and case are normalized first.
func (m *Manager) RestoreFromPhrase(phrase, displayName string) (*Active, error) {
	normalized := wallet.NormalizeMnemonic(phrase)
	if n := wallet.WordCount(normalized); n != wallet.WordsShort && n != wallet.WordsLong {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPhraseLength, n)
	}
	if err := signer.CheckReady(m.provider); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	s, err := m.provider.FromMnemonic(normalized, m.prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhrase, err)
	}
	addr, err := PrimaryAddress(s)
	if err != nil {
		return nil, err
	}

	a := m.activate(s, addr, displayName)
	log.Wallet.Info().Str("address", addr).Msg("Wallet restored")
	return a, nil
}

// PrimaryAddress returns the address of the session's first account.
func PrimaryAddress(s signer.Session) (string, error) {
	if s == nil {
		return "", ErrNoAccounts
	}
	accounts, err := s.Accounts()
	if err != nil {
		return "", fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 || accounts[0].Address == "" {
		return "", ErrNoAccounts
	}
	return accounts[0].Address, nil
}

// Current returns the active session, or nil.
func (m *Manager) Current() *Active {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Rename changes the display name of the active session.
func (m *Manager) Rename(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		a := *m.active
		a.Name = name
		m.active = &a
	}
}

// Clear drops the active session. Persisted data is not touched.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		log.Wallet.Info().Str("address", m.active.Address).Msg("Session cleared")
	}
	m.active = nil
}

func (m *Manager) activate(s signer.Session, addr, name string) *Active {
	a := &Active{
		Session:   s,
		Address:   addr,
		Name:      name,
		StartedAt: time.Now(),
	}
	m.mu.Lock()
	m.active = a
	m.mu.Unlock()
	return a
}
