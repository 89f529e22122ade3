// Package netstatus probes the chain RPC endpoint for liveness.
package netstatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Klingon-tech/seiwallet/internal/chainclient"
	"github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/metrics"
)

// DefaultTimeout bounds one probe.
const DefaultTimeout = 5 * time.Second

// ErrNetworkOffline is returned when the node is unreachable or its answer
// carries no node info.
var ErrNetworkOffline = errors.New("network offline")

// Status is the result of one probe.
type Status struct {
	Online       bool      `json:"online"`
	Network      string    `json:"network,omitempty"`
	Moniker      string    `json:"moniker,omitempty"`
	Version      string    `json:"version,omitempty"`
	LatestHeight int64     `json:"latest_height,omitempty"`
	CatchingUp   bool      `json:"catching_up,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}

// Getter issues a GET and decodes JSON. *chainclient.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, path string, result interface{}) error
}

// Probe checks an RPC endpoint.
type Probe struct {
	rpc     Getter
	timeout time.Duration
	metrics *metrics.Metrics

	mu   sync.RWMutex
	last Status
}

// New creates a probe for the RPC endpoint at rpcURL.
func New(rpcURL string, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewWithGetter(chainclient.NewWithTimeout(rpcURL, timeout), timeout)
}

// NewWithGetter creates a probe over an existing client.
func NewWithGetter(rpc Getter, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Probe{rpc: rpc, timeout: timeout}
}

// SetMetrics attaches metrics.
func (p *Probe) SetMetrics(m *metrics.Metrics) {
	p.metrics = m
}

type nodeInfo struct {
	Network string `json:"network"`
	Moniker string `json:"moniker"`
	Version string `json:"version"`
}

type syncInfo struct {
	LatestBlockHeight string `json:"latest_block_height"`
	CatchingUp        bool   `json:"catching_up"`
}

type statusBody struct {
	NodeInfo *nodeInfo `json:"node_info"`
	SyncInfo *syncInfo `json:"sync_info"`
}

// statusPayload accepts both the bare and the JSON-RPC wrapped forms.
type statusPayload struct {
	statusBody
	Result *statusBody `json:"result"`
}

// Check probes {rpc}/status. The node is online only when the payload
// carries a node_info object.
func (p *Probe) Check(ctx context.Context) (Status, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	st := Status{CheckedAt: time.Now()}

	var raw json.RawMessage
	if err := p.rpc.Get(ctx, "/status", &raw); err != nil {
		return p.record(st, fmt.Errorf("%w: %v", ErrNetworkOffline, err))
	}

	var payload statusPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return p.record(st, fmt.Errorf("%w: %v", ErrNetworkOffline, err))
	}
	body := payload.statusBody
	if body.NodeInfo == nil && payload.Result != nil {
		body = *payload.Result
	}
	if body.NodeInfo == nil {
		return p.record(st, fmt.Errorf("%w: response has no node_info", ErrNetworkOffline))
	}

	st.Online = true
	st.Network = body.NodeInfo.Network
	st.Moniker = body.NodeInfo.Moniker
	st.Version = body.NodeInfo.Version
	if body.SyncInfo != nil {
		st.LatestHeight, _ = strconv.ParseInt(body.SyncInfo.LatestBlockHeight, 10, 64)
		st.CatchingUp = body.SyncInfo.CatchingUp
	}
	return p.record(st, nil)
}

func (p *Probe) record(st Status, err error) (Status, error) {
	p.mu.Lock()
	wasOnline := p.last.Online
	first := p.last.CheckedAt.IsZero()
	p.last = st
	p.mu.Unlock()

	p.metrics.StatusChecked(st.Online)
	if first || wasOnline != st.Online {
		if st.Online {
			log.Status.Info().Str("network", st.Network).Int64("height", st.LatestHeight).Msg("Network online")
		} else {
			log.Status.Warn().Err(err).Msg("Network offline")
		}
	}
	return st, err
}

// Last returns the result of the most recent probe.
func (p *Probe) Last() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Watch probes every interval until ctx is done, calling fn with each
// result. The first probe runs immediately.
func (p *Probe) Watch(ctx context.Context, interval time.Duration, fn func(Status, error)) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st, err := p.Check(ctx)
		if fn != nil {
			fn(st, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
