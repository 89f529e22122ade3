// Package transfer runs the send workflow: validate the request against the
// cached balance, build a MsgSend, sign, broadcast and report the outcome.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cosmossdk.io/math"

	"github.com/Klingon-tech/seiwallet/internal/balance"
	"github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/metrics"
	"github.com/Klingon-tech/seiwallet/internal/session"
	"github.com/Klingon-tech/seiwallet/internal/signer"
	"github.com/Klingon-tech/seiwallet/pkg/types"
)

// DefaultGasLimit is the gas attached to every transfer.
const DefaultGasLimit = 200000

// Config holds the chain parameters the workflow needs.
type Config struct {
	Endpoint    string // REST endpoint handed to the provider.
	Denom       string
	Prefix      string
	Decimals    int
	GasLimit    uint64
	SettleDelay time.Duration // Wait before refreshing the balance after a confirmed send.
}

// Balances is the balance cache the workflow validates against.
type Balances interface {
	Current() balance.State
	Refresh(ctx context.Context, address string) (balance.State, error)
}

// Request is one transfer.
type Request struct {
	Recipient string  `json:"recipient"`
	Amount    string  `json:"amount"` // Display units, e.g. "1.5".
	Tier      FeeTier `json:"tier"`
	Memo      string  `json:"memo"`
}

// Preview is a validated request with its amounts resolved.
type Preview struct {
	Recipient    string         `json:"recipient"`
	Tier         FeeTier        `json:"tier"`
	Amount       math.LegacyDec `json:"amount"`
	Fee          math.LegacyDec `json:"fee"`
	Total        math.LegacyDec `json:"total"`
	NativeAmount math.Int       `json:"native_amount"`
	NativeFee    math.Int       `json:"native_fee"`
}

// Result is the outcome of a confirmed transfer.
type Result struct {
	TxHash  string   `json:"txhash"`
	Height  int64    `json:"height"`
	Preview *Preview `json:"preview"`
}

// Workflow runs at most one transfer at a time.
type Workflow struct {
	cfg      Config
	provider signer.Provider
	balances Balances
	metrics  *metrics.Metrics

	inFlight atomic.Bool

	mu       sync.Mutex
	state    State
	observer func(State)
	timers   []*time.Timer
}

// New creates a workflow.
func New(cfg Config, provider signer.Provider, balances Balances) *Workflow {
	if cfg.GasLimit == 0 {
		cfg.GasLimit = DefaultGasLimit
	}
	return &Workflow{cfg: cfg, provider: provider, balances: balances}
}

// SetMetrics attaches metrics.
func (w *Workflow) SetMetrics(m *metrics.Metrics) {
	w.metrics = m
}

// OnStateChange registers fn to receive every state transition. fn runs on
// the submitting goroutine and must not block.
func (w *Workflow) OnStateChange(fn func(State)) {
	w.mu.Lock()
	w.observer = fn
	w.mu.Unlock()
}

// State returns the state of the current or last attempt.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) setState(s State) {
	w.mu.Lock()
	w.state = s
	fn := w.observer
	w.mu.Unlock()
	log.Transfer.Debug().Str("state", s.String()).Msg("Transfer state")
	if fn != nil {
		fn(s)
	}
}

// Preview validates req against bal (display units) without submitting.
func (w *Workflow) Preview(req Request, bal math.LegacyDec) (*Preview, error) {
	if !types.HasPrefix(req.Recipient, w.cfg.Prefix) {
		return nil, fmt.Errorf("%w: must start with %s1", ErrInvalidRecipient, w.cfg.Prefix)
	}
	if err := types.ValidateRecipient(req.Recipient, w.cfg.Prefix); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}

	amount, err := balance.ParseDisplay(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, req.Amount)
	}
	nativeAmount, err := balance.ToNative(amount, w.cfg.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !nativeAmount.IsPositive() {
		return nil, fmt.Errorf("%w: %q is below the smallest unit", ErrInvalidAmount, req.Amount)
	}

	tier := ParseTier(string(req.Tier))
	fee := tier.Fee()
	nativeFee, err := balance.ToNative(fee, w.cfg.Decimals)
	if err != nil {
		return nil, err
	}
	total := amount.Add(fee)

	if bal.IsNil() {
		bal = math.LegacyZeroDec()
	}
	if amount.GT(bal) {
		return nil, fmt.Errorf("%w: amount %s exceeds balance %s", ErrInsufficientFunds, amount, bal)
	}
	if total.GT(bal) {
		return nil, fmt.Errorf("%w: amount plus fee %s exceeds balance %s", ErrInsufficientFunds, total, bal)
	}

	return &Preview{
		Recipient:    req.Recipient,
		Tier:         tier,
		Amount:       amount,
		Fee:          fee,
		Total:        total,
		NativeAmount: nativeAmount,
		NativeFee:    nativeFee,
	}, nil
}

// MaxSendable returns the largest amount sendable at the default fee,
// never negative.
func MaxSendable(bal math.LegacyDec) math.LegacyDec {
	if bal.IsNil() {
		return math.LegacyZeroDec()
	}
	sendable := bal.Sub(DefaultTier.Fee())
	if sendable.IsNegative() {
		return math.LegacyZeroDec()
	}
	return sendable
}

// Submit runs one transfer from the active session. Only one attempt may
// run at a time; a concurrent call fails with ErrAttemptInProgress.
func (w *Workflow) Submit(ctx context.Context, active *session.Active, req Request) (*Result, error) {
	if !w.inFlight.CompareAndSwap(false, true) {
		w.metrics.TransferFinished(metrics.ResultBusy, 0)
		return nil, ErrAttemptInProgress
	}
	defer w.inFlight.Store(false)

	if active == nil || active.Session == nil {
		return nil, ErrNoSession
	}

	w.setState(Validating)
	preview, err := w.Preview(req, w.balances.Current().Display)
	if err != nil {
		w.setState(Idle)
		w.metrics.TransferFinished(metrics.ResultInvalid, 0)
		return nil, err
	}

	start := time.Now()
	res, err := w.submit(ctx, active, req.Memo, preview)
	elapsed := time.Since(start)
	if err != nil {
		w.setState(Rejected)
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			w.metrics.TransferFinished(metrics.ResultRejected, elapsed)
		} else {
			w.metrics.TransferFinished(metrics.ResultFailed, elapsed)
		}
		log.Transfer.Warn().Err(err).Str("recipient", preview.Recipient).Msg("Transfer failed")
		return nil, err
	}

	w.setState(Confirmed)
	w.metrics.TransferFinished(metrics.ResultConfirmed, elapsed)
	log.Transfer.Info().
		Str("txhash", res.TxHash).
		Int64("height", res.Height).
		Str("amount", preview.NativeAmount.String()+w.cfg.Denom).
		Str("recipient", preview.Recipient).
		Msg("Transfer confirmed")

	w.scheduleRefresh(active.Address)
	return res, nil
}

func (w *Workflow) submit(ctx context.Context, active *session.Active, memo string, p *Preview) (*Result, error) {
	w.setState(Building)
	msg := signer.MsgSend{
		FromAddress: active.Address,
		ToAddress:   p.Recipient,
		Amount:      types.Coins{types.NewCoin(w.cfg.Denom, p.NativeAmount)},
	}
	fee := signer.Fee{
		Amount:   types.Coins{types.NewCoin(w.cfg.Denom, p.NativeFee)},
		GasLimit: w.cfg.GasLimit,
	}

	w.setState(Signing)
	client, err := w.provider.ConnectWithSigner(ctx, w.cfg.Endpoint, active.Session)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrSubmissionFailed, err)
	}

	var out *signer.BroadcastResult
	if step, ok := client.(signer.StepClient); ok {
		tx, err := step.Sign(ctx, active.Address, []signer.Msg{msg}, fee, memo)
		if err != nil {
			return nil, fmt.Errorf("%w: sign: %v", ErrSubmissionFailed, err)
		}
		w.setState(Broadcasting)
		out, err = step.Broadcast(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("%w: broadcast: %v", ErrSubmissionFailed, err)
		}
	} else {
		out, err = client.SignAndBroadcast(ctx, active.Address, []signer.Msg{msg}, fee, memo)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		}
	}

	if out.Code != 0 {
		return nil, &RejectedError{Code: out.Code, TxHash: out.TxHash, RawLog: out.RawLog}
	}
	return &Result{TxHash: out.TxHash, Height: out.Height, Preview: p}, nil
}

// scheduleRefresh refreshes the balance once the chain has settled.
func (w *Workflow) scheduleRefresh(address string) {
	t := time.AfterFunc(w.cfg.SettleDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), balance.DefaultTimeout)
		defer cancel()
		if _, err := w.balances.Refresh(ctx, address); err != nil {
			log.Transfer.Debug().Err(err).Msg("Post-transfer balance refresh failed")
		}
	})
	w.mu.Lock()
	w.timers = append(w.timers, t)
	w.mu.Unlock()
}

// CancelPending stops balance refreshes scheduled by earlier transfers.
// Called when the session that made them ends.
func (w *Workflow) CancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
}

// Close stops pending balance refreshes.
func (w *Workflow) Close() {
	w.CancelPending()
}
