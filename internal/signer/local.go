package signer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/Klingon-tech/seiwallet/internal/chainclient"
	"github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/wallet"
)

// nodeInfoPath reports the chain ID served by a REST endpoint.
const nodeInfoPath = "/cosmos/base/tendermint/v1beta1/node_info"

// LocalConfig configures the local provider.
type LocalConfig struct {
	ChainID        string
	RequestTimeout time.Duration // Per REST call.
	PollInterval   time.Duration // Between inclusion checks.
	ConfirmTimeout time.Duration // Total wait for inclusion.
}

func (c *LocalConfig) setDefaults() {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 3 * time.Second
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = 60 * time.Second
	}
}

// Local derives keys in process and signs with SIGN_MODE_DIRECT.
type Local struct {
	cfg LocalConfig
}

// NewLocal creates a local provider.
func NewLocal(cfg LocalConfig) *Local {
	cfg.setDefaults()
	return &Local{cfg: cfg}
}

// Ready implements Readiness.
func (p *Local) Ready() error {
	if p.cfg.ChainID == "" {
		return fmt.Errorf("%w: chain id not configured", ErrNotReady)
	}
	return nil
}

// Generate implements Provider.
func (p *Local) Generate(words int, prefix string) (Session, string, error) {
	phrase, err := wallet.GenerateMnemonic(words)
	if err != nil {
		return nil, "", err
	}
	s, err := p.FromMnemonic(phrase, prefix)
	if err != nil {
		return nil, "", err
	}
	return s, phrase, nil
}

// FromMnemonic implements Provider.
func (p *Local) FromMnemonic(phrase, prefix string) (Session, error) {
	key, err := wallet.PrimaryKeyFromMnemonic(wallet.NormalizeMnemonic(phrase))
	if err != nil {
		return nil, err
	}
	addr, err := key.Bech32Address(prefix)
	if err != nil {
		return nil, fmt.Errorf("encode address: %w", err)
	}
	return &LocalSession{
		key: key,
		account: Account{
			Address: addr,
			PubKey:  key.PublicKeyBytes(),
			Algo:    AlgoSecp256k1,
		},
	}, nil
}

// ConnectWithSigner implements Provider. The endpoint is a REST (LCD) URL;
// its chain ID must match the configured one.
func (p *Local) ConnectWithSigner(ctx context.Context, endpoint string, s Session) (SigningClient, error) {
	ls, ok := s.(*LocalSession)
	if !ok || ls == nil {
		return nil, ErrForeignSession
	}
	if err := p.Ready(); err != nil {
		return nil, err
	}

	rest := chainclient.NewWithTimeout(endpoint, p.cfg.RequestTimeout)

	var info struct {
		DefaultNodeInfo struct {
			Network string `json:"network"`
		} `json:"default_node_info"`
	}
	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()
	if err := rest.Get(reqCtx, nodeInfoPath, &info); err != nil {
		return nil, fmt.Errorf("connect %s: %w", endpoint, err)
	}
	if got := info.DefaultNodeInfo.Network; got != "" && got != p.cfg.ChainID {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrChainMismatch, p.cfg.ChainID, got)
	}

	return &DirectClient{cfg: p.cfg, rest: rest, session: ls}, nil
}

// LocalSession holds the primary HD key of one phrase.
type LocalSession struct {
	key     *wallet.HDKey
	account Account
}

// Accounts implements Session.
func (s *LocalSession) Accounts() ([]Account, error) {
	return []Account{s.account}, nil
}

// DirectClient signs locally and submits through a REST endpoint.
type DirectClient struct {
	cfg     LocalConfig
	rest    *chainclient.Client
	session *LocalSession
}

// Sign looks up the sender's account number and sequence and returns the
// signed transaction.
func (c *DirectClient) Sign(ctx context.Context, from string, msgs []Msg, fee Fee, memo string) (*SignedTx, error) {
	if from != c.session.account.Address {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSigner, from)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	acct, err := c.rest.Account(reqCtx, from)
	if err != nil {
		return nil, fmt.Errorf("account lookup: %w", err)
	}

	key, err := c.session.key.Signer()
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	b := NewTxBuilder().SetFee(fee).SetMemo(memo)
	for _, m := range msgs {
		b.AddMsg(m)
	}
	signed, err := b.Sign(key, SignerData{
		ChainID:       c.cfg.ChainID,
		AccountNumber: acct.AccountNumber,
		Sequence:      acct.Sequence,
	})
	if err != nil {
		return nil, err
	}
	log.Signer.Debug().
		Str("hash", signed.Hash).
		Uint64("account_number", acct.AccountNumber).
		Uint64("sequence", acct.Sequence).
		Msg("Transaction signed")
	return signed, nil
}

// Broadcast submits tx in sync mode and waits for it to be included.
// A CheckTx rejection is returned as a result with a non-zero code.
func (c *DirectClient) Broadcast(ctx context.Context, tx *SignedTx) (*BroadcastResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	resp, err := c.rest.BroadcastTx(reqCtx, tx.Bytes)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("broadcast: %w", err)
	}
	if resp.Code != 0 {
		return &BroadcastResult{Code: resp.Code, TxHash: resp.TxHash, RawLog: resp.RawLog}, nil
	}

	hash := resp.TxHash
	if hash == "" {
		hash = tx.Hash
	}
	log.Signer.Debug().Str("hash", hash).Msg("Transaction accepted into mempool")

	included, err := c.waitForTx(ctx, hash)
	if err != nil {
		return nil, err
	}
	return &BroadcastResult{
		Code:   included.Code,
		TxHash: hash,
		RawLog: included.RawLog,
		Height: included.Height,
	}, nil
}

// SignAndBroadcast implements SigningClient.
func (c *DirectClient) SignAndBroadcast(ctx context.Context, from string, msgs []Msg, fee Fee, memo string) (*BroadcastResult, error) {
	tx, err := c.Sign(ctx, from, msgs, fee, memo)
	if err != nil {
		return nil, err
	}
	return c.Broadcast(ctx, tx)
}

// waitForTx polls the tx endpoint until hash is found or the confirm
// timeout elapses.
func (c *DirectClient) waitForTx(ctx context.Context, hash string) (*chainclient.TxResponse, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ConfirmTimeout)
	defer cancel()

	var found *chainclient.TxResponse
	err := retry.Do(
		func() error {
			reqCtx, cancel := context.WithTimeout(waitCtx, c.cfg.RequestTimeout)
			defer cancel()
			resp, err := c.rest.GetTx(reqCtx, hash)
			if err != nil {
				return err
			}
			found = resp
			return nil
		},
		retry.Context(waitCtx),
		retry.Attempts(0),
		retry.Delay(c.cfg.PollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if !chainclient.IsNotFound(err) {
				log.Signer.Debug().Err(err).Uint("attempt", n).Str("hash", hash).Msg("Tx lookup failed")
			}
		}),
	)
	if err != nil {
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("tx %s not included after %s: %w", hash, c.cfg.ConfirmTimeout, err)
		}
		return nil, fmt.Errorf("wait for tx %s: %w", hash, err)
	}
	return found, nil
}
