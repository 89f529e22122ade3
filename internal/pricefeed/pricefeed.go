// Package pricefeed reads the fiat rate of the native token from a
// CoinGecko-compatible simple price endpoint.
package pricefeed

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/Klingon-tech/seiwallet/internal/chainclient"
	"github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/metrics"
)

// DefaultTimeout bounds one fetch.
const DefaultTimeout = 5 * time.Second

// Config configures a Feed.
type Config struct {
	URL      string // e.g. https://api.coingecko.com/api/v3/simple/price
	CoinID   string // e.g. sei-network
	Currency string // e.g. usd
	Fallback float64
	Timeout  time.Duration
}

// Feed fetches and caches the rate.
type Feed struct {
	cfg     Config
	client  *chainclient.Client
	metrics *metrics.Metrics

	mu   sync.RWMutex
	last float64
}

// New creates a feed. Until the first fetch, Last returns the fallback.
func New(cfg Config) *Feed {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Feed{
		cfg:    cfg,
		client: chainclient.NewWithTimeout(cfg.URL, cfg.Timeout),
		last:   cfg.Fallback,
	}
}

// SetMetrics attaches metrics.
func (f *Feed) SetMetrics(m *metrics.Metrics) {
	f.metrics = m
}

// Fetch returns the current rate. It never fails: any error, a missing
// entry or a non-positive value yields the fallback rate.
func (f *Feed) Fetch(ctx context.Context) float64 {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	q := url.Values{}
	q.Set("ids", f.cfg.CoinID)
	q.Set("vs_currencies", f.cfg.Currency)

	var resp map[string]map[string]float64
	rate := f.cfg.Fallback
	fallback := true

	if err := f.client.Get(ctx, "?"+q.Encode(), &resp); err != nil {
		log.Price.Debug().Err(err).Msg("Price fetch failed, using fallback")
	} else if v := resp[f.cfg.CoinID][f.cfg.Currency]; v > 0 {
		rate = v
		fallback = false
	} else {
		log.Price.Debug().Msg("Price missing from response, using fallback")
	}

	f.mu.Lock()
	f.last = rate
	f.mu.Unlock()
	f.metrics.PriceFetched(fallback, rate)
	return rate
}

// Last returns the most recent rate.
func (f *Feed) Last() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.last
}

// Currency returns the fiat currency code.
func (f *Feed) Currency() string {
	return f.cfg.Currency
}
