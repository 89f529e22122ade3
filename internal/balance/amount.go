package balance

import (
	"errors"
	"fmt"
	stdmath "math"
	"strings"

	"cosmossdk.io/math"
)

// ErrInvalidDecimal is returned for amount strings that are not plain
// non-negative decimals.
var ErrInvalidDecimal = errors.New("invalid decimal amount")

// ParseDisplay parses a display-unit amount such as "1.5".
func ParseDisplay(s string) (math.LegacyDec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.LegacyDec{}, fmt.Errorf("%w: empty", ErrInvalidDecimal)
	}
	d, err := math.LegacyNewDecFromStr(s)
	if err != nil {
		return math.LegacyDec{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	if d.IsNegative() {
		return math.LegacyDec{}, fmt.Errorf("%w: %q is negative", ErrInvalidDecimal, s)
	}
	return d, nil
}

// ToNative converts a display amount to native units, rounding down.
// 1.2345678 SEI at 6 decimals is 1234567 usei.
func ToNative(display math.LegacyDec, decimals int) (math.Int, error) {
	if display.IsNil() || display.IsNegative() {
		return math.Int{}, fmt.Errorf("%w: negative amount", ErrInvalidDecimal)
	}
	if decimals < 0 || decimals > math.LegacyPrecision {
		return math.Int{}, fmt.Errorf("decimals %d out of range", decimals)
	}
	return display.MulInt(math.NewIntWithDecimal(1, decimals)).TruncateInt(), nil
}

// ToDisplay converts native units to a display amount.
func ToDisplay(native math.Int, decimals int) math.LegacyDec {
	if native.IsNil() {
		return math.LegacyZeroDec()
	}
	return math.LegacyNewDecFromIntWithPrec(native, int64(decimals))
}

// ToFiat returns amount * rate, or 0 when either is not positive or the
// rate is not finite.
func ToFiat(amount math.LegacyDec, rate float64) float64 {
	if amount.IsNil() || !amount.IsPositive() || !validRate(rate) {
		return 0
	}
	f, err := amount.Float64()
	if err != nil {
		return 0
	}
	return f * rate
}

func validRate(rate float64) bool {
	return rate > 0 && !stdmath.IsInf(rate, 0)
}

// FormatDisplay renders d with exactly places fractional digits, truncated.
func FormatDisplay(d math.LegacyDec, places int) string {
	if d.IsNil() {
		d = math.LegacyZeroDec()
	}
	s := d.String() // always 18 fractional digits
	dot := strings.IndexByte(s, '.')
	if dot < 0 || places <= 0 {
		if dot >= 0 {
			return s[:dot]
		}
		return s
	}
	end := dot + 1 + places
	if end > len(s) {
		end = len(s)
	}
	return s[:end]
}
