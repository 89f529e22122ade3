package types

import (
	"testing"

	"cosmossdk.io/math"
)

func TestCoins_AmountOf(t *testing.T) {
	cs := Coins{
		{Denom: "uatom", Amount: "5"},
		{Denom: "usei", Amount: "1234500"},
	}

	got, err := cs.AmountOf("usei")
	if err != nil {
		t.Fatalf("AmountOf() error: %v", err)
	}
	if !got.Equal(math.NewInt(1234500)) {
		t.Errorf("AmountOf(usei) = %s, want 1234500", got)
	}

	missing, err := cs.AmountOf("uosmo")
	if err != nil {
		t.Fatalf("AmountOf() error: %v", err)
	}
	if !missing.IsZero() {
		t.Errorf("AmountOf(missing) = %s, want 0", missing)
	}
}

func TestCoin_AmountInt_Invalid(t *testing.T) {
	for _, amt := range []string{"", "abc", "1.5", "-3"} {
		c := Coin{Denom: "usei", Amount: amt}
		if _, err := c.AmountInt(); err == nil {
			t.Errorf("AmountInt(%q) should fail", amt)
		}
	}
}

func TestCoin_String(t *testing.T) {
	c := NewCoin("usei", math.NewInt(2000))
	if c.String() != "2000usei" {
		t.Errorf("String() = %q, want %q", c.String(), "2000usei")
	}
}
