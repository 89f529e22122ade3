package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Klingon-tech/seiwallet/internal/app"
	"github.com/Klingon-tech/seiwallet/internal/balance"
	"github.com/Klingon-tech/seiwallet/internal/chainclient"
	"github.com/Klingon-tech/seiwallet/internal/netstatus"
	"github.com/Klingon-tech/seiwallet/internal/session"
	"github.com/Klingon-tech/seiwallet/internal/store"
	"github.com/Klingon-tech/seiwallet/internal/transfer"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest = "invalid_request"
	CodeNoWallet       = "no_wallet"
	CodeWrongPassword  = "wrong_password"
	CodeBusy           = "busy"
	CodeRejected       = "rejected"
	CodeUpstream       = "upstream"
	CodeOffline        = "offline"
	CodeInternal       = "internal"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	TxHash string `json:"txhash,omitempty"`
}

// classify maps an error to an HTTP status and code.
func classify(err error) (int, string) {
	var rejected *transfer.RejectedError
	var httpErr *chainclient.HTTPError
	switch {
	case errors.Is(err, app.ErrPasswordTooShort),
		errors.Is(err, app.ErrPasswordMismatch),
		errors.Is(err, session.ErrInvalidPhraseLength),
		errors.Is(err, session.ErrInvalidPhrase),
		errors.Is(err, transfer.ErrInvalidRecipient),
		errors.Is(err, transfer.ErrInvalidAmount),
		errors.Is(err, transfer.ErrInsufficientFunds):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, store.ErrWrongPassword):
		return http.StatusUnauthorized, CodeWrongPassword
	case errors.Is(err, app.ErrNotOpen),
		errors.Is(err, store.ErrNoWallet),
		errors.Is(err, transfer.ErrNoSession),
		errors.Is(err, store.ErrMissingRecoveryPhrase):
		return http.StatusNotFound, CodeNoWallet
	case errors.Is(err, transfer.ErrAttemptInProgress):
		return http.StatusConflict, CodeBusy
	case errors.As(err, &rejected):
		return http.StatusBadGateway, CodeRejected
	case errors.Is(err, netstatus.ErrNetworkOffline),
		errors.Is(err, session.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, CodeOffline
	case errors.Is(err, transfer.ErrSubmissionFailed),
		errors.Is(err, balance.ErrBalanceFetchFailed),
		errors.As(err, &httpErr):
		return http.StatusBadGateway, CodeUpstream
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code, name := classify(err)
	resp := ErrorResponse{Error: err.Error(), Code: name}
	var rejected *transfer.RejectedError
	if errors.As(err, &rejected) {
		resp.TxHash = rejected.TxHash
	}
	writeJSON(w, code, resp)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Code: CodeInvalidRequest})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeBadRequest(w, "request body too large")
		return false
	}
	writeBadRequest(w, "invalid JSON: "+err.Error())
	return false
}
