// Package node runs the wallet as a long-lived process: the application
// state, the local API and the background status and price refreshers.
// It can be embedded in any binary.
package node

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/seiwallet/config"
	"github.com/Klingon-tech/seiwallet/internal/api"
	"github.com/Klingon-tech/seiwallet/internal/app"
	klog "github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/metrics"
	"github.com/Klingon-tech/seiwallet/internal/store"
)

// Refresh intervals of the background loops.
const (
	StatusInterval = 30 * time.Second
	PriceInterval  = 5 * time.Minute
)

// Node is a fully initialized wallet process.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	app       *app.App
	metrics   *metrics.Metrics
	apiServer *api.Server

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and initializes a Node. It performs all setup steps (logger,
// metrics, storage, wallet, API) but does NOT start the API or background
// goroutines. Call Start() for that.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := cfg.LogFile()
	if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
		return nil, fmt.Errorf("creating logs dir: %w", err)
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	logger.Info().
		Str("chain_id", cfg.Chain.ChainID).
		Str("network", string(cfg.Network)).
		Str("rpc", cfg.Chain.RPCURL).
		Str("rest", cfg.Chain.RESTURL).
		Msg("Starting Sei wallet")

	// ── 2. Metrics ──────────────────────────────────────────────────
	var m *metrics.Metrics
	if cfg.API.Metrics {
		m = metrics.New()
	}

	// ── 3. Wallet (opens storage) ───────────────────────────────────
	a, err := app.New(cfg, app.Options{Metrics: m})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", cfg.DBDir()).Msg("Database opened")

	n := &Node{
		cfg:     cfg,
		logger:  logger,
		app:     a,
		metrics: m,
	}
	n.ctx, n.cancel = context.WithCancel(context.Background())

	// ── 4. API server ───────────────────────────────────────────────
	if cfg.API.Enabled {
		n.apiServer = api.New(cfg.APIListenAddr(), a, api.Options{
			Metrics: cfg.API.Metrics,
			Swagger: cfg.API.Swagger,
		})
	}

	return n, nil
}

// App returns the application state.
func (n *Node) App() *app.App {
	return n.app
}

// Start reopens the stored wallet with password, starts the API and the
// refresh loops. A missing wallet or a wrong password is not fatal: the
// wallet stays closed and can be opened through the API.
func (n *Node) Start(password string) error {
	info, err := n.app.Startup(password)
	switch {
	case err == nil:
		n.logger.Info().Str("address", info.Address).Str("name", info.Name).Msg("Wallet opened")
	case errors.Is(err, store.ErrNoWallet):
		n.logger.Info().Msg("No wallet stored; create or import one")
	case errors.Is(err, store.ErrWrongPassword):
		n.logger.Warn().Msg("Stored wallet is locked; unlock it through the API")
	default:
		n.logger.Warn().Err(err).Msg("Stored wallet could not be opened")
	}

	if n.apiServer != nil {
		if err := n.apiServer.Start(); err != nil {
			return err
		}
	}

	n.wg.Add(2)
	go func() {
		defer n.wg.Done()
		n.app.WatchStatus(n.ctx, StatusInterval)
	}()
	go func() {
		defer n.wg.Done()
		n.runPriceLoop(PriceInterval)
	}()

	n.logger.Info().
		Str("api", n.APIAddr()).
		Bool("wallet_open", err == nil).
		Msg("Wallet started successfully")
	return nil
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	n.cancel()
	n.wg.Wait()

	if n.apiServer != nil {
		n.apiServer.Stop()
	}
	if err := n.app.Close(); err != nil {
		n.logger.Warn().Err(err).Msg("Closing database")
	}

	n.logger.Info().Msg("Goodbye!")
}

// APIAddr returns the address the API server is listening on.
func (n *Node) APIAddr() string {
	if n.apiServer == nil {
		return ""
	}
	return n.apiServer.Addr()
}

// ── Price ───────────────────────────────────────────────────────────

func (n *Node) runPriceLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	n.app.Price(n.ctx)
	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			rate := n.app.Price(n.ctx)
			n.logger.Debug().Float64("rate", rate).Msg("Price refreshed")
		}
	}
}
