// Package metrics exposes wallet activity as Prometheus metrics.
//
// All methods are safe on a nil *Metrics, so components work without them.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "seiwallet"

// Result labels.
const (
	ResultOK        = "ok"
	ResultNotFound  = "not_found"
	ResultError     = "error"
	ResultFallback  = "fallback"
	ResultOnline    = "online"
	ResultOffline   = "offline"
	ResultConfirmed = "confirmed"
	ResultRejected  = "rejected"
	ResultFailed    = "failed"
	ResultInvalid   = "invalid"
	ResultBusy      = "busy"
)

// Metrics holds the wallet's collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	balanceRefreshes *prometheus.CounterVec
	balance          prometheus.Gauge
	transfers        *prometheus.CounterVec
	transferDuration prometheus.Histogram
	statusChecks     *prometheus.CounterVec
	online           prometheus.Gauge
	priceFetches     *prometheus.CounterVec
	price            prometheus.Gauge
	httpRequests     *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		balanceRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_refresh_total",
			Help:      "Balance refreshes by result.",
		}, []string{"result"}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "balance",
			Help:      "Last known balance in display units.",
		}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_total",
			Help:      "Transfer attempts by outcome.",
		}, []string{"result"}),
		transferDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_duration_seconds",
			Help:      "Time from submission to a final transfer state.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		}),
		statusChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_check_total",
			Help:      "Network status checks by result.",
		}, []string{"result"}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_online",
			Help:      "1 when the last status check found the node online.",
		}),
		priceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_fetch_total",
			Help:      "Price oracle fetches by result.",
		}, []string{"result"}),
		price: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "price",
			Help:      "Last fiat rate in use.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Local API requests by route and status code.",
		}, []string{"route", "code"}),
	}
	m.registry.MustRegister(
		m.balanceRefreshes, m.balance,
		m.transfers, m.transferDuration,
		m.statusChecks, m.online,
		m.priceFetches, m.price,
		m.httpRequests,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// BalanceRefreshed records a refresh. display is ignored unless result is ok
// or not_found.
func (m *Metrics) BalanceRefreshed(result string, display float64) {
	if m == nil {
		return
	}
	m.balanceRefreshes.WithLabelValues(result).Inc()
	if result == ResultOK || result == ResultNotFound {
		m.balance.Set(display)
	}
}

// TransferFinished records a transfer outcome. A zero elapsed skips the
// duration histogram (e.g. validation failures).
func (m *Metrics) TransferFinished(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(result).Inc()
	if elapsed > 0 {
		m.transferDuration.Observe(elapsed.Seconds())
	}
}

// StatusChecked records a status probe.
func (m *Metrics) StatusChecked(online bool) {
	if m == nil {
		return
	}
	if online {
		m.statusChecks.WithLabelValues(ResultOnline).Inc()
		m.online.Set(1)
		return
	}
	m.statusChecks.WithLabelValues(ResultOffline).Inc()
	m.online.Set(0)
}

// PriceFetched records an oracle fetch and the rate in use afterwards.
func (m *Metrics) PriceFetched(fallback bool, rate float64) {
	if m == nil {
		return
	}
	result := ResultOK
	if fallback {
		result = ResultFallback
	}
	m.priceFetches.WithLabelValues(result).Inc()
	m.price.Set(rate)
}

// HTTPRequest records a local API request.
func (m *Metrics) HTTPRequest(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, statusText(code)).Inc()
}

func statusText(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
