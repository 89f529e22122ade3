package transfer

import (
	"errors"
	"fmt"
	"strings"

	"cosmossdk.io/math"
)

var (
	ErrInvalidRecipient  = errors.New("invalid recipient address")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSubmissionFailed  = errors.New("transaction submission failed")
	ErrAttemptInProgress = errors.New("a transfer is already in progress")
	ErrNoSession         = errors.New("no active wallet session")
)

// RejectedError is returned when the chain answers with a non-zero code.
// Its message is the chain's raw log, unchanged.
type RejectedError struct {
	Code   uint32
	TxHash string
	RawLog string
}

func (e *RejectedError) Error() string {
	if e.RawLog != "" {
		return e.RawLog
	}
	return fmt.Sprintf("transaction rejected with code %d", e.Code)
}

// State is a step of a transfer attempt.
type State int

const (
	Idle State = iota
	Validating
	Building
	Signing
	Broadcasting
	Confirmed
	Rejected
)

var stateNames = [...]string{"idle", "validating", "building", "signing", "broadcasting", "confirmed", "rejected"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Final reports whether s ends an attempt.
func (s State) Final() bool {
	return s == Confirmed || s == Rejected
}

// FeeTier selects a flat fee.
type FeeTier string

const (
	Low    FeeTier = "low"
	Medium FeeTier = "medium"
	High   FeeTier = "high"
)

// DefaultTier is used for empty or unknown tiers.
const DefaultTier = Medium

// Fees in display units.
var (
	feeLow    = math.LegacyNewDecWithPrec(1, 3) // 0.001
	feeMedium = math.LegacyNewDecWithPrec(2, 3) // 0.002
	feeHigh   = math.LegacyNewDecWithPrec(5, 3) // 0.005
)

// ParseTier maps a tier name to a FeeTier, falling back to DefaultTier.
func ParseTier(s string) FeeTier {
	switch FeeTier(strings.ToLower(strings.TrimSpace(s))) {
	case Low:
		return Low
	case High:
		return High
	default:
		return DefaultTier
	}
}

// Fee returns the tier's fee in display units.
func (t FeeTier) Fee() math.LegacyDec {
	switch ParseTier(string(t)) {
	case Low:
		return feeLow
	case High:
		return feeHigh
	default:
		return feeMedium
	}
}

// Tiers lists all tiers from cheapest to most expensive.
func Tiers() []FeeTier {
	return []FeeTier{Low, Medium, High}
}
