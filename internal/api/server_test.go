package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/seiwallet/config"
	"github.com/Klingon-tech/seiwallet/internal/app"
	"github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/metrics"
	"github.com/Klingon-tech/seiwallet/internal/signer"
	"github.com/Klingon-tech/seiwallet/internal/storage"
	"github.com/Klingon-tech/seiwallet/internal/wallet"
)

const (
	testMnemonic  = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testRecipient = "sei1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5jwagqa"
	testPassword  = "correct horse"
)

func init() {
	log.Discard()
}

// chain fakes the node RPC, the REST API and the price oracle.
type chain struct {
	offline atomic.Bool
}

func (c *chain) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if c.offline.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"node_info":{"network":"atlantic-2"},"sync_info":{"latest_block_height":"9"}}`)
	})
	mux.HandleFunc("/cosmos/bank/v1beta1/balances/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"balances":[{"denom":"usei","amount":"3000000"}]}`)
	})
	mux.HandleFunc("/cosmos/base/tendermint/v1beta1/node_info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"default_node_info":{"network":"atlantic-2"}}`)
	})
	mux.HandleFunc("/cosmos/auth/v1beta1/accounts/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"account":{"account_number":"5","sequence":"1"}}`)
	})
	mux.HandleFunc("/cosmos/tx/v1beta1/txs", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TxBytes string `json:"tx_bytes"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		raw, _ := base64.StdEncoding.DecodeString(req.TxBytes)
		fmt.Fprintf(w, `{"tx_response":{"txhash":%q,"code":0}}`, signer.TxHash(raw))
	})
	mux.HandleFunc("/cosmos/tx/v1beta1/txs/", func(w http.ResponseWriter, r *http.Request) {
		hash := strings.TrimPrefix(r.URL.Path, "/cosmos/tx/v1beta1/txs/")
		fmt.Fprintf(w, `{"tx_response":{"height":"12","txhash":%q,"code":0}}`, hash)
	})
	mux.HandleFunc("/price", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sei-network":{"usd":0.25}}`)
	})
	return mux
}

type fixture struct {
	t       *testing.T
	chain   *chain
	app     *app.App
	server  *Server
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := &chain{}
	upstream := httptest.NewServer(c.handler())
	t.Cleanup(upstream.Close)

	cfg := config.DefaultTestnet()
	cfg.Chain.RPCURL = upstream.URL
	cfg.Chain.RESTURL = upstream.URL
	cfg.Price.URL = upstream.URL + "/price"
	cfg.Transfer.PollInterval = 5 * time.Millisecond
	cfg.Transfer.ConfirmTimeout = 2 * time.Second
	cfg.Transfer.SettleDelay = time.Hour

	m := metrics.New()
	a, err := app.New(cfg, app.Options{
		DB:               storage.NewMemory(),
		Metrics:          m,
		EncryptionParams: &wallet.EncryptionParams{Memory: 64, Iterations: 1, Parallelism: 1},
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	return &fixture{
		t:       t,
		chain:   c,
		app:     a,
		server:  New("127.0.0.1:0", a, Options{Metrics: true, Swagger: true}),
		metrics: m,
	}
}

func (f *fixture) do(method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(f.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestWalletLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do("GET", "/api/v1/wallet", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNoWallet, decodeBody[ErrorResponse](t, rec).Code)

	rec = f.do("POST", "/api/v1/wallet/create", CreateRequest{Password: "short", Confirm: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do("POST", "/api/v1/wallet/create", CreateRequest{Name: "Main", Password: testPassword, Confirm: testPassword})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[app.Created](t, rec)
	assert.Len(t, strings.Fields(created.Phrase), 12)
	assert.True(t, strings.HasPrefix(created.Wallet.Address, "sei1"))

	rec = f.do("POST", "/api/v1/wallet/rename", RenameRequest{Name: "Savings"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Savings", decodeBody[app.WalletInfo](t, rec).Name)

	rec = f.do("POST", "/api/v1/wallet/backup", PasswordRequest{Password: "not the password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do("POST", "/api/v1/wallet/backup", PasswordRequest{Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, created.Phrase, decodeBody[app.Backup](t, rec).Phrase)

	rec = f.do("POST", "/api/v1/wallet/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, f.do("GET", "/api/v1/wallet", nil).Code)

	rec = f.do("POST", "/api/v1/wallet/unlock", PasswordRequest{Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	info := decodeBody[app.WalletInfo](t, rec)
	assert.Equal(t, created.Wallet.Address, info.Address)
	assert.Equal(t, "Savings", info.Name)

	assert.Equal(t, http.StatusNoContent, f.do("POST", "/api/v1/wallet/forget", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do("POST", "/api/v1/wallet/unlock", nil).Code)
}

func TestImport_InvalidPhrase(t *testing.T) {
	f := newFixture(t)

	rec := f.do("POST", "/api/v1/wallet/import", ImportRequest{Phrase: "abandon abandon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Error, "12 or 24")

	rec = f.do("POST", "/api/v1/wallet/import", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBalancePriceDashboard(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do("POST", "/api/v1/wallet/import", ImportRequest{Phrase: testMnemonic}).Code)

	rec := f.do("GET", "/api/v1/price", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, PriceResponse{Rate: 0.25, Currency: "usd"}, decodeBody[PriceResponse](t, rec))

	rec = f.do("GET", "/api/v1/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decodeBody[BalanceResponse](t, rec)
	assert.Equal(t, "3.000000", bal.Balance)
	assert.Equal(t, "3000000", bal.Native)
	assert.Equal(t, "SEI", bal.Denom)
	assert.InDelta(t, 0.75, bal.FiatValue, 1e-9)

	rec = f.do("GET", "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decodeBody[app.Dashboard](t, rec)
	assert.True(t, d.Status.Online)
	assert.Empty(t, d.BalanceError)

	rec = f.do("GET", "/api/v1/send/max", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2.998000", decodeBody[MaxResponse](t, rec).Amount)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)

	rec := f.do("GET", "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[StatusResponse](t, rec)
	assert.Equal(t, "atlantic-2", st.ChainID)
	assert.Equal(t, int64(9), st.Status.LatestHeight)

	f.chain.offline.Store(true)
	rec = f.do("GET", "/api/v1/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, decodeBody[StatusResponse](t, rec).Status.Online)
}

func TestReceive(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do("GET", "/api/v1/receive", nil).Code)

	require.Equal(t, http.StatusCreated, f.do("POST", "/api/v1/wallet/import", ImportRequest{Phrase: testMnemonic}).Code)

	rec := f.do("GET", "/api/v1/receive?size=128", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = f.do("GET", "/api/v1/receive?format=json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rcv := decodeBody[app.Receive](t, rec)
	assert.True(t, strings.HasPrefix(rcv.Address, "sei1"))
	assert.NotEmpty(t, rcv.QR)

	assert.Equal(t, http.StatusBadRequest, f.do("GET", "/api/v1/receive?size=99999", nil).Code)
}

func TestSend(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do("POST", "/api/v1/wallet/import", ImportRequest{Phrase: testMnemonic}).Code)
	require.Equal(t, http.StatusOK, f.do("GET", "/api/v1/balance", nil).Code)

	rec := f.do("POST", "/api/v1/send/preview", map[string]string{"recipient": "cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu", "amount": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do("POST", "/api/v1/send/preview", map[string]string{"recipient": testRecipient, "amount": "5"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Error, "insufficient")

	rec = f.do("POST", "/api/v1/send/preview", map[string]string{"recipient": testRecipient, "amount": "1", "tier": "high"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do("POST", "/api/v1/send", map[string]string{"recipient": testRecipient, "amount": "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		TxHash string `json:"txhash"`
		Height int64  `json:"height"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.TxHash, 64)
	assert.Equal(t, int64(12), res.Height)
}

func TestMetricsAndSwagger(t *testing.T) {
	f := newFixture(t)
	f.do("GET", "/api/v1/wallet", nil)
	f.do("GET", "/api/v1/wallet", nil)

	expected := `
# HELP seiwallet_http_requests_total Local API requests by route and status code.
# TYPE seiwallet_http_requests_total counter
seiwallet_http_requests_total{code="4xx",route="GET /wallet"} 2
`
	require.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "seiwallet_http_requests_total"))

	rec := f.do("GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="GET /wallet"`)

	rec = f.do("GET", "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sei Wallet API")
}

func TestStartStop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.server.Start())
	t.Cleanup(func() { f.server.Stop() })

	resp, err := http.Get("http://" + f.server.Addr() + "/api/v1/price")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
