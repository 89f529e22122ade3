// Package balance tracks the native balance of the active address and
// converts between native, display and fiat amounts.
package balance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/math"

	"github.com/Klingon-tech/seiwallet/internal/chainclient"
	"github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/metrics"
	"github.com/Klingon-tech/seiwallet/pkg/types"
)

// DefaultTimeout bounds one balance query.
const DefaultTimeout = 10 * time.Second

// ErrBalanceFetchFailed is returned when the balance could not be read.
// The previous state is kept.
var ErrBalanceFetchFailed = errors.New("balance fetch failed")

// Fetcher reads the coins held by an address.
type Fetcher interface {
	Balances(ctx context.Context, address string) (types.Coins, error)
}

// State is a balance snapshot.
type State struct {
	Address   string         `json:"address"`
	Denom     string         `json:"denom"`
	Native    math.Int       `json:"native"`
	Display   math.LegacyDec `json:"display"`
	Rate      float64        `json:"rate"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Fiat returns the fiat value of the balance at the cached rate.
func (s State) Fiat() float64 {
	return ToFiat(s.Display, s.Rate)
}

// Tracker caches the last known balance.
type Tracker struct {
	client   Fetcher
	denom    string
	decimals int
	timeout  time.Duration
	metrics  *metrics.Metrics

	mu    sync.RWMutex
	state State
	gen   uint64 // bumped by Reset; refreshes started before it are dropped
}

// NewTracker creates a tracker for denom with the given display precision.
func NewTracker(client Fetcher, denom string, decimals int, timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	t := &Tracker{
		client:   client,
		denom:    denom,
		decimals: decimals,
		timeout:  timeout,
	}
	t.state = t.zero("")
	return t
}

// SetMetrics attaches metrics.
func (t *Tracker) SetMetrics(m *metrics.Metrics) {
	t.metrics = m
}

// Decimals returns the display precision.
func (t *Tracker) Decimals() int {
	return t.decimals
}

// Denom returns the native denomination.
func (t *Tracker) Denom() string {
	return t.denom
}

// Refresh queries the balance of address. A 404 or a missing denom is a
// zero balance. Any other failure leaves the cached state untouched and
// returns it with ErrBalanceFetchFailed. A result that arrives after Reset
// belongs to a closed session and is discarded.
func (t *Tracker) Refresh(ctx context.Context, address string) (State, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	t.mu.RLock()
	gen := t.gen
	t.mu.RUnlock()

	coins, err := t.client.Balances(ctx, address)
	result := metrics.ResultOK
	if err != nil {
		if !chainclient.IsNotFound(err) {
			return t.fail(address, err)
		}
		result = metrics.ResultNotFound
		coins = nil
	}

	native, err := coins.AmountOf(t.denom)
	if err != nil {
		return t.fail(address, err)
	}

	t.mu.Lock()
	if t.gen != gen {
		s := t.state
		t.mu.Unlock()
		log.Balance.Debug().Str("address", address).Msg("Discarding balance of a closed session")
		return s, nil
	}
	t.state = State{
		Address:   address,
		Denom:     t.denom,
		Native:    native,
		Display:   ToDisplay(native, t.decimals),
		Rate:      t.state.Rate,
		UpdatedAt: time.Now(),
	}
	s := t.state
	t.mu.Unlock()

	f, _ := s.Display.Float64()
	t.metrics.BalanceRefreshed(result, f)
	log.Balance.Debug().Str("address", address).Str("native", native.String()).Msg("Balance refreshed")
	return s, nil
}

func (t *Tracker) fail(address string, err error) (State, error) {
	t.metrics.BalanceRefreshed(metrics.ResultError, 0)
	log.Balance.Warn().Err(err).Str("address", address).Msg("Balance fetch failed")
	return t.Current(), fmt.Errorf("%w: %v", ErrBalanceFetchFailed, err)
}

// Current returns the cached state.
func (t *Tracker) Current() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// SetRate updates the cached fiat rate. Rates that are not positive and
// finite are ignored.
func (t *Tracker) SetRate(rate float64) {
	if !validRate(rate) {
		return
	}
	t.mu.Lock()
	t.state.Rate = rate
	t.mu.Unlock()
}

// Reset zeroes the cached balance, keeping the rate.
func (t *Tracker) Reset() {
	t.mu.Lock()
	rate := t.state.Rate
	t.state = t.zero("")
	t.state.Rate = rate
	t.gen++
	t.mu.Unlock()
}

func (t *Tracker) zero(address string) State {
	return State{
		Address: address,
		Denom:   t.denom,
		Native:  math.ZeroInt(),
		Display: math.LegacyZeroDec(),
	}
}
