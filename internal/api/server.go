// Package api implements the local JSON HTTP API over the wallet.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Klingon-tech/seiwallet/internal/api/docs" // swagger spec
	"github.com/Klingon-tech/seiwallet/internal/app"
	klog "github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/metrics"
)

// maxBodySize is the maximum allowed request body size (64 KB).
const maxBodySize = 64 << 10

// BasePath prefixes every wallet route.
const BasePath = "/api/v1"

// Options selects the optional routes.
type Options struct {
	Metrics bool // Serve /metrics.
	Swagger bool // Serve /swagger/.
}

// Server is the local HTTP API server.
type Server struct {
	addr    string
	app     *app.App
	metrics *metrics.Metrics
	handler http.Handler
	server  *http.Server
	logger  zerolog.Logger
	ln      net.Listener
}

// New creates a server bound to addr once started.
func New(addr string, a *app.App, opts Options) *Server {
	s := &Server{
		addr:    addr,
		app:     a,
		metrics: a.Metrics(),
		logger:  klog.API,
	}

	mux := http.NewServeMux()
	s.route(mux, "GET", "/status", s.handleStatus)
	s.route(mux, "GET", "/wallet", s.handleWallet)
	s.route(mux, "POST", "/wallet/create", s.handleWalletCreate)
	s.route(mux, "POST", "/wallet/import", s.handleWalletImport)
	s.route(mux, "POST", "/wallet/unlock", s.handleWalletUnlock)
	s.route(mux, "POST", "/wallet/logout", s.handleWalletLogout)
	s.route(mux, "POST", "/wallet/forget", s.handleWalletForget)
	s.route(mux, "POST", "/wallet/rename", s.handleWalletRename)
	s.route(mux, "POST", "/wallet/backup", s.handleWalletBackup)
	s.route(mux, "GET", "/balance", s.handleBalance)
	s.route(mux, "GET", "/price", s.handlePrice)
	s.route(mux, "GET", "/dashboard", s.handleDashboard)
	s.route(mux, "GET", "/receive", s.handleReceive)
	s.route(mux, "GET", "/send/max", s.handleSendMax)
	s.route(mux, "POST", "/send/preview", s.handleSendPreview)
	s.route(mux, "POST", "/send", s.handleSend)

	if opts.Metrics && s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	if opts.Swagger {
		mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	}

	s.handler = mux
	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // Sends wait for block inclusion.
	}
	return s
}

// route registers a handler under BasePath, instrumented with metrics.
func (s *Server) route(mux *http.ServeMux, method, path string, h http.HandlerFunc) {
	name := method + " " + path
	mux.HandleFunc(method+" "+BasePath+path, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		r.Body = http.MaxBytesReader(rec, r.Body, maxBodySize)
		start := time.Now()
		h(rec, r)
		s.metrics.HTTPRequest(name, rec.code)
		s.logger.Debug().
			Str("route", name).
			Int("code", rec.code).
			Dur("elapsed", time.Since(start)).
			Msg("Request served")
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("API server listening")
	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
