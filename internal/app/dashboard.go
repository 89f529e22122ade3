package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Klingon-tech/seiwallet/internal/balance"
	"github.com/Klingon-tech/seiwallet/internal/netstatus"
)

// Dashboard is a combined view of the open wallet. Each part is fetched
// independently; a failed part carries its error and the rest still fill.
type Dashboard struct {
	Wallet *WalletInfo `json:"wallet"`

	Balance      string  `json:"balance"`
	Denom        string  `json:"denom"`
	FiatValue    float64 `json:"fiat_value"`
	BalanceError string  `json:"balance_error,omitempty"`

	Price    float64 `json:"price"`
	Currency string  `json:"currency"`

	Status      netstatus.Status `json:"status"`
	StatusError string           `json:"status_error,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Dashboard refreshes balance, price and network status concurrently.
func (a *App) Dashboard(ctx context.Context) (*Dashboard, error) {
	info, err := a.Current()
	if err != nil {
		return nil, err
	}

	var (
		bal     balance.State
		balErr  error
		rate    float64
		st      netstatus.Status
		statErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bal, balErr = a.balances.Refresh(gctx, info.Address)
		return nil
	})
	g.Go(func() error {
		rate = a.prices.Fetch(gctx)
		return nil
	})
	g.Go(func() error {
		st, statErr = a.status.Check(gctx)
		return nil
	})
	_ = g.Wait()

	a.balances.SetRate(rate)
	bal.Rate = rate

	d := &Dashboard{
		Wallet:    info,
		Balance:   balance.FormatDisplay(bal.Display, a.cfg.Chain.Decimals),
		Denom:     a.cfg.Chain.DisplayDenom,
		FiatValue: bal.Fiat(),
		Price:     rate,
		Currency:  a.prices.Currency(),
		Status:    st,
		UpdatedAt: time.Now(),
	}
	if balErr != nil {
		d.BalanceError = balErr.Error()
	}
	if statErr != nil {
		d.StatusError = statErr.Error()
	}
	return d, nil
}
