package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// Coin is a denominated amount in native units, encoded as on the REST API.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// NewCoin builds a Coin from a native-unit integer.
func NewCoin(denom string, amount math.Int) Coin {
	return Coin{Denom: denom, Amount: amount.String()}
}

// AmountInt parses the coin amount. A negative amount is rejected.
func (c Coin) AmountInt() (math.Int, error) {
	n, ok := math.NewIntFromString(c.Amount)
	if !ok {
		return math.Int{}, fmt.Errorf("invalid %s amount %q", c.Denom, c.Amount)
	}
	if n.IsNegative() {
		return math.Int{}, fmt.Errorf("negative %s amount %q", c.Denom, c.Amount)
	}
	return n, nil
}

// String returns "<amount><denom>", the SDK text form.
func (c Coin) String() string {
	return c.Amount + c.Denom
}

// Coins is a list of coins as returned by the bank module.
type Coins []Coin

// AmountOf returns the native amount for denom, zero when absent.
func (cs Coins) AmountOf(denom string) (math.Int, error) {
	for _, c := range cs {
		if c.Denom == denom {
			return c.AmountInt()
		}
	}
	return math.ZeroInt(), nil
}
