// Package signer defines the signing-provider capability the wallet depends
// on, and a local implementation that derives keys from a BIP-39 phrase and
// signs Cosmos SDK transactions in SIGN_MODE_DIRECT.
package signer

import (
	"context"
	"errors"

	"github.com/Klingon-tech/seiwallet/pkg/types"
)

// AlgoSecp256k1 is the only key algorithm the wallet uses.
const AlgoSecp256k1 = "secp256k1"

var (
	ErrNotReady       = errors.New("signing provider not ready")
	ErrForeignSession = errors.New("session was not created by this provider")
	ErrUnknownSigner  = errors.New("sender is not an account of this session")
	ErrChainMismatch  = errors.New("endpoint serves a different chain")
)

// Account is one address controlled by a session.
type Account struct {
	Address string `json:"address"`
	PubKey  []byte `json:"pubkey"`
	Algo    string `json:"algo"`
}

// Session is an in-memory key holder derived from a recovery phrase.
type Session interface {
	Accounts() ([]Account, error)
}

// Msg is a transaction message packed as a protobuf Any.
type Msg interface {
	TypeURL() string
	Marshal() ([]byte, error)
}

// Fee is the fee attached to a transaction.
type Fee struct {
	Amount   types.Coins `json:"amount"`
	GasLimit uint64      `json:"gas"`
}

// BroadcastResult is the outcome of a submitted transaction.
// Code 0 means the chain accepted it.
type BroadcastResult struct {
	Code   uint32 `json:"code"`
	TxHash string `json:"txhash"`
	RawLog string `json:"raw_log"`
	Height int64  `json:"height"`
}

// SigningClient signs and submits transactions for one session.
type SigningClient interface {
	SignAndBroadcast(ctx context.Context, from string, msgs []Msg, fee Fee, memo string) (*BroadcastResult, error)
}

// StepClient is implemented by clients that can sign and broadcast as
// separate steps, letting callers observe each one.
type StepClient interface {
	SigningClient
	Sign(ctx context.Context, from string, msgs []Msg, fee Fee, memo string) (*SignedTx, error)
	Broadcast(ctx context.Context, tx *SignedTx) (*BroadcastResult, error)
}

// Provider creates sessions and signing clients.
type Provider interface {
	// Generate creates a fresh phrase of the given word count and its session.
	Generate(words int, prefix string) (Session, string, error)
	// FromMnemonic restores a session from an existing phrase.
	FromMnemonic(phrase, prefix string) (Session, error)
	// ConnectWithSigner binds a session to a chain endpoint.
	ConnectWithSigner(ctx context.Context, endpoint string, s Session) (SigningClient, error)
}

// Readiness is implemented by providers that may be unavailable at runtime.
type Readiness interface {
	Ready() error
}

// CheckReady reports whether p can be used.
func CheckReady(p Provider) error {
	if p == nil {
		return ErrNotReady
	}
	if r, ok := p.(Readiness); ok {
		return r.Ready()
	}
	return nil
}
