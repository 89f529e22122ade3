// Package app wires the wallet components into one application-state
// object shared by the CLI and the local API.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/seiwallet/config"
	"github.com/Klingon-tech/seiwallet/internal/balance"
	"github.com/Klingon-tech/seiwallet/internal/chainclient"
	klog "github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/metrics"
	"github.com/Klingon-tech/seiwallet/internal/netstatus"
	"github.com/Klingon-tech/seiwallet/internal/pricefeed"
	"github.com/Klingon-tech/seiwallet/internal/session"
	"github.com/Klingon-tech/seiwallet/internal/signer"
	"github.com/Klingon-tech/seiwallet/internal/storage"
	"github.com/Klingon-tech/seiwallet/internal/store"
	"github.com/Klingon-tech/seiwallet/internal/transfer"
	"github.com/Klingon-tech/seiwallet/internal/wallet"
)

var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNotOpen          = errors.New("no wallet open")
)

// Options overrides collaborators. Zero values select the defaults.
type Options struct {
	DB       storage.DB       // Default: Badger at cfg.DBDir().
	Provider signer.Provider  // Default: local direct signer.
	Metrics  *metrics.Metrics // Default: none.
	// EncryptionParams overrides the Argon2id cost of stored phrases.
	EncryptionParams *wallet.EncryptionParams
}

// App is the wallet's application state.
type App struct {
	cfg    *config.Config
	logger zerolog.Logger

	db     storage.DB
	ownsDB bool

	provider  signer.Provider
	sessions  *session.Manager
	store     *store.Store
	balances  *balance.Tracker
	transfers *transfer.Workflow
	status    *netstatus.Probe
	prices    *pricefeed.Feed
	metrics   *metrics.Metrics

	// Serializes wallet lifecycle operations (create, import, logout, ...).
	mu sync.Mutex
}

// New builds the application state. It does not touch the network.
func New(cfg *config.Config, opts Options) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	a := &App{
		cfg:     cfg,
		logger:  klog.WithComponent("app"),
		metrics: opts.Metrics,
	}

	// ── Storage ─────────────────────────────────────────────────────
	a.db = opts.DB
	if a.db == nil {
		db, err := storage.NewBadger(cfg.DBDir())
		if err != nil {
			return nil, err
		}
		a.db = db
		a.ownsDB = true
	}
	a.store = store.New(a.db, cfg.Chain.ChainID)
	if opts.EncryptionParams != nil {
		a.store.SetEncryptionParams(*opts.EncryptionParams)
	}

	// ── Signing provider and session ────────────────────────────────
	a.provider = opts.Provider
	if a.provider == nil {
		a.provider = signer.NewLocal(signer.LocalConfig{
			ChainID:        cfg.Chain.ChainID,
			RequestTimeout: cfg.Timeouts.Submit,
			PollInterval:   cfg.Transfer.PollInterval,
			ConfirmTimeout: cfg.Transfer.ConfirmTimeout,
		})
	}
	a.sessions = session.NewManager(a.provider, cfg.Chain.Bech32Prefix)

	// ── Chain readers ───────────────────────────────────────────────
	rest := chainclient.NewWithTimeout(cfg.Chain.RESTURL, cfg.Timeouts.Balance)
	a.balances = balance.NewTracker(rest, cfg.Chain.Denom, cfg.Chain.Decimals, cfg.Timeouts.Balance)
	a.balances.SetMetrics(a.metrics)

	a.status = netstatus.New(cfg.Chain.RPCURL, cfg.Timeouts.Status)
	a.status.SetMetrics(a.metrics)

	a.prices = pricefeed.New(pricefeed.Config{
		URL:      cfg.Price.URL,
		CoinID:   cfg.Price.CoinID,
		Currency: cfg.Price.Currency,
		Fallback: cfg.Price.Fallback,
		Timeout:  cfg.Timeouts.Price,
	})
	a.prices.SetMetrics(a.metrics)
	a.balances.SetRate(a.prices.Last())

	// ── Transfers ───────────────────────────────────────────────────
	a.transfers = transfer.New(transfer.Config{
		Endpoint:    cfg.Chain.RESTURL,
		Denom:       cfg.Chain.Denom,
		Prefix:      cfg.Chain.Bech32Prefix,
		Decimals:    cfg.Chain.Decimals,
		GasLimit:    cfg.Transfer.GasLimit,
		SettleDelay: cfg.Transfer.SettleDelay,
	}, a.provider, a.balances)
	a.transfers.SetMetrics(a.metrics)

	a.logger.Info().
		Str("chain_id", cfg.Chain.ChainID).
		Str("network", string(cfg.Network)).
		Str("rest", cfg.Chain.RESTURL).
		Msg("Wallet initialized")
	return a, nil
}

// Close stops timers and closes the database if the app opened it.
func (a *App) Close() error {
	a.transfers.Close()
	if a.ownsDB {
		return a.db.Close()
	}
	return nil
}

// Config returns the configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Metrics returns the metrics, or nil.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Transfers returns the transfer workflow, for state observers.
func (a *App) Transfers() *transfer.Workflow { return a.transfers }

// ── Wallet lifecycle ────────────────────────────────────────────────

// WalletInfo describes the open wallet.
type WalletInfo struct {
	Name            string     `json:"name"`
	Address         string     `json:"address"`
	ChainID         string     `json:"chain_id"`
	Encrypted       bool       `json:"encrypted"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	ImportedAt      *time.Time `json:"imported_at,omitempty"`
	AddressMismatch bool       `json:"address_mismatch,omitempty"`
}

func (a *App) info(active *session.Active, rec *store.Record, mismatch bool) *WalletInfo {
	info := &WalletInfo{
		Name:            active.Name,
		Address:         active.Address,
		ChainID:         a.cfg.Chain.ChainID,
		AddressMismatch: mismatch,
	}
	if rec != nil {
		info.Encrypted = rec.Encrypted()
		info.CreatedAt = rec.CreatedAt
		info.ImportedAt = rec.ImportedAt
	}
	return info
}

// Startup reopens the stored wallet. Any failure leaves the app with no
// wallet open; the error says why.
func (a *App) Startup(password string) (*WalletInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, err := a.store.RestoreSession(a.sessions, password)
	if err != nil {
		if !errors.Is(err, store.ErrNoWallet) {
			a.logger.Warn().Err(err).Msg("Stored wallet could not be opened")
		}
		return nil, err
	}
	a.resetAccountState()
	return a.info(r.Active, r.Record, r.AddressMismatch), nil
}

// Locked reports whether a stored wallet needs a password to open.
func (a *App) Locked() (bool, error) {
	rec, err := a.store.Load()
	if err != nil {
		return false, err
	}
	return rec.Encrypted(), nil
}

func (a *App) checkPassword(password, confirm string) error {
	if len(password) < a.cfg.Wallet.MinPasswordLength {
		return fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, a.cfg.Wallet.MinPasswordLength)
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func (a *App) nameOr(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}

// Created is the result of Create. Phrase must be shown to the user once
// for backup.
type Created struct {
	Wallet *WalletInfo `json:"wallet"`
	Phrase string      `json:"phrase"`
}

// Create generates a new wallet, stores it encrypted under password and
// opens it.
func (a *App) Create(name, password, confirm string) (*Created, error) {
	if err := a.checkPassword(password, confirm); err != nil {
		return nil, err
	}
	name = a.nameOr(name, a.cfg.Wallet.DefaultName)

	a.mu.Lock()
	defer a.mu.Unlock()

	active, phrase, err := a.sessions.GenerateNew(name)
	if err != nil {
		return nil, err
	}
	if err := a.store.Save(name, active.Address, phrase, store.Created, password); err != nil {
		a.sessions.Clear()
		return nil, fmt.Errorf("save wallet: %w", err)
	}
	a.resetAccountState()
	rec, _ := a.store.Load()
	return &Created{Wallet: a.info(active, rec, false), Phrase: phrase}, nil
}

// Import restores a wallet from phrase, stores it and opens it. An empty
// password stores the phrase unencrypted.
func (a *App) Import(name, phrase, password string) (*WalletInfo, error) {
	if password != "" && len(password) < a.cfg.Wallet.MinPasswordLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, a.cfg.Wallet.MinPasswordLength)
	}
	name = a.nameOr(name, "Imported wallet")

	a.mu.Lock()
	defer a.mu.Unlock()

	active, err := a.sessions.RestoreFromPhrase(phrase, name)
	if err != nil {
		return nil, err
	}
	normalized := wallet.NormalizeMnemonic(phrase)
	if err := a.store.Save(name, active.Address, normalized, store.Imported, password); err != nil {
		a.sessions.Clear()
		return nil, fmt.Errorf("save wallet: %w", err)
	}
	a.resetAccountState()
	rec, _ := a.store.Load()
	return a.info(active, rec, false), nil
}

// resetAccountState drops state tied to the previous session: refreshes
// scheduled by its transfers and its cached balance.
func (a *App) resetAccountState() {
	a.transfers.CancelPending()
	a.balances.Reset()
}

func (a *App) endSession() {
	a.sessions.Clear()
	a.resetAccountState()
}

// Logout closes the session. The stored wallet is kept.
func (a *App) Logout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.endSession()
}

// Forget closes the session and deletes the stored wallet.
func (a *App) Forget() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.endSession()
	return a.store.Delete()
}

// Rename changes the display name of the open wallet. Empty names are ignored.
func (a *App) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.store.UpdateDisplayName(name); err != nil {
		return err
	}
	a.sessions.Rename(name)
	return nil
}

// Current returns the open wallet, or ErrNotOpen.
func (a *App) Current() (*WalletInfo, error) {
	active := a.sessions.Current()
	if active == nil {
		return nil, ErrNotOpen
	}
	rec, err := a.store.Load()
	if err != nil {
		rec = nil
	}
	return a.info(active, rec, rec != nil && rec.AddressDiffers(active.Address)), nil
}

// Backup is the recovery material of the open wallet.
type Backup struct {
	Address string   `json:"address"`
	Phrase  string   `json:"phrase"`
	Words   []string `json:"words"`
}

// Backup reveals the recovery phrase of the open wallet.
func (a *App) Backup(password string) (*Backup, error) {
	active := a.sessions.Current()
	if active == nil {
		return nil, ErrNotOpen
	}
	phrase, err := a.store.Phrase(password)
	if err != nil {
		return nil, err
	}
	return &Backup{
		Address: active.Address,
		Phrase:  phrase,
		Words:   strings.Fields(phrase),
	}, nil
}

// ── Chain operations ────────────────────────────────────────────────

func (a *App) active() (*session.Active, error) {
	active := a.sessions.Current()
	if active == nil {
		return nil, ErrNotOpen
	}
	return active, nil
}

// RefreshBalance reads the balance of the open wallet.
func (a *App) RefreshBalance(ctx context.Context) (balance.State, error) {
	active, err := a.active()
	if err != nil {
		return balance.State{}, err
	}
	return a.balances.Refresh(ctx, active.Address)
}

// Price fetches the fiat rate and caches it for balance conversion.
func (a *App) Price(ctx context.Context) float64 {
	rate := a.prices.Fetch(ctx)
	a.balances.SetRate(rate)
	return rate
}

// Status probes the RPC endpoint.
func (a *App) Status(ctx context.Context) (netstatus.Status, error) {
	return a.status.Check(ctx)
}

// WatchStatus probes periodically until ctx is done, logging transitions.
func (a *App) WatchStatus(ctx context.Context, interval time.Duration) {
	online := true
	a.status.Watch(ctx, interval, func(st netstatus.Status, err error) {
		if st.Online == online {
			return
		}
		online = st.Online
		if online {
			a.logger.Info().Str("network", st.Network).Int64("height", st.LatestHeight).Msg("Network online")
		} else {
			a.logger.Warn().Err(err).Msg("Network offline")
		}
	})
}

// Preview validates a transfer against the cached balance.
func (a *App) Preview(req transfer.Request) (*transfer.Preview, error) {
	if _, err := a.active(); err != nil {
		return nil, err
	}
	return a.transfers.Preview(req, a.balances.Current().Display)
}

// MaxSendable returns the largest amount sendable at the default fee.
func (a *App) MaxSendable() (string, error) {
	if _, err := a.active(); err != nil {
		return "", err
	}
	sendable := transfer.MaxSendable(a.balances.Current().Display)
	return balance.FormatDisplay(sendable, a.cfg.Chain.Decimals), nil
}

// Send submits a transfer from the open wallet.
func (a *App) Send(ctx context.Context, req transfer.Request) (*transfer.Result, error) {
	active, err := a.active()
	if err != nil {
		return nil, err
	}
	return a.transfers.Submit(ctx, active, req)
}
