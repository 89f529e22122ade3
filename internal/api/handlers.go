package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Klingon-tech/seiwallet/internal/app"
	"github.com/Klingon-tech/seiwallet/internal/balance"
	"github.com/Klingon-tech/seiwallet/internal/netstatus"
	"github.com/Klingon-tech/seiwallet/internal/transfer"
)

// maxQRSize caps the PNG edge length.
const maxQRSize = 1024

// handleStatus handles GET /status
// @Summary      Network status
// @Description  Probes the RPC endpoint. Answers 503 when the node is unreachable.
// @Tags         network
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /status [get]
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.app.Status(r.Context())
	resp := StatusResponse{ChainID: s.app.Config().Chain.ChainID, Status: st}
	if err != nil && errors.Is(err, netstatus.ErrNetworkOffline) {
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleWallet handles GET /wallet
// @Summary      Open wallet
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  app.WalletInfo
// @Failure      404  {object}  ErrorResponse
// @Router       /wallet [get]
func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	info, err := s.app.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleWalletCreate handles POST /wallet/create
// @Summary      Create wallet
// @Description  Generates a 12-word phrase, stores it encrypted and opens the wallet. The phrase is returned once.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequest  true  "Name and password"
// @Success      201      {object}  app.Created
// @Failure      400      {object}  ErrorResponse
// @Router       /wallet/create [post]
func (s *Server) handleWalletCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !decode(w, r, &req) {
		return
	}
	created, err := s.app.Create(req.Name, req.Password, req.Confirm)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleWalletImport handles POST /wallet/import
// @Summary      Import wallet
// @Description  Restores a wallet from a 12 or 24 word phrase. The password is optional.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      ImportRequest  true  "Phrase"
// @Success      201      {object}  app.WalletInfo
// @Failure      400      {object}  ErrorResponse
// @Router       /wallet/import [post]
func (s *Server) handleWalletImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decode(w, r, &req) {
		return
	}
	info, err := s.app.Import(req.Name, req.Phrase, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// handleWalletUnlock handles POST /wallet/unlock
// @Summary      Open the stored wallet
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      PasswordRequest  false  "Password of an encrypted wallet"
// @Success      200      {object}  app.WalletInfo
// @Failure      401      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /wallet/unlock [post]
func (s *Server) handleWalletUnlock(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if !decode(w, r, &req) {
		return
	}
	info, err := s.app.Startup(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleWalletLogout handles POST /wallet/logout
// @Summary      Close the session
// @Description  The stored wallet is kept.
// @Tags         wallet
// @Success      204
// @Router       /wallet/logout [post]
func (s *Server) handleWalletLogout(w http.ResponseWriter, r *http.Request) {
	s.app.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// handleWalletForget handles POST /wallet/forget
// @Summary      Delete the stored wallet
// @Tags         wallet
// @Success      204
// @Router       /wallet/forget [post]
func (s *Server) handleWalletForget(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Forget(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWalletRename handles POST /wallet/rename
// @Summary      Rename wallet
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      RenameRequest  true  "New name"
// @Success      200      {object}  app.WalletInfo
// @Router       /wallet/rename [post]
func (s *Server) handleWalletRename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.app.Rename(req.Name); err != nil {
		writeError(w, err)
		return
	}
	s.handleWallet(w, r)
}

// handleWalletBackup handles POST /wallet/backup
// @Summary      Reveal the recovery phrase
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      PasswordRequest  false  "Password of an encrypted wallet"
// @Success      200      {object}  app.Backup
// @Failure      401      {object}  ErrorResponse
// @Router       /wallet/backup [post]
func (s *Server) handleWalletBackup(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if !decode(w, r, &req) {
		return
	}
	backup, err := s.app.Backup(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, backup)
}

// handleBalance handles GET /balance
// @Summary      Balance of the open wallet
// @Tags         balance
// @Produce      json
// @Success      200  {object}  BalanceResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /balance [get]
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	st, err := s.app.RefreshBalance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	cfg := s.app.Config()
	writeJSON(w, http.StatusOK, BalanceResponse{
		Address:   st.Address,
		Balance:   balance.FormatDisplay(st.Display, cfg.Chain.Decimals),
		Denom:     cfg.Chain.DisplayDenom,
		Native:    st.Native.String(),
		FiatValue: st.Fiat(),
		Currency:  cfg.Price.Currency,
	})
}

// handlePrice handles GET /price
// @Summary      Fiat rate
// @Description  Falls back to a fixed rate when the oracle is unreachable.
// @Tags         balance
// @Produce      json
// @Success      200  {object}  PriceResponse
// @Router       /price [get]
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	rate := s.app.Price(r.Context())
	writeJSON(w, http.StatusOK, PriceResponse{Rate: rate, Currency: s.app.Config().Price.Currency})
}

// handleDashboard handles GET /dashboard
// @Summary      Balance, price and status in one call
// @Tags         balance
// @Produce      json
// @Success      200  {object}  app.Dashboard
// @Router       /dashboard [get]
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.app.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleReceive handles GET /receive
// @Summary      Receive address
// @Description  Returns a PNG QR code of the address, or JSON with format=json.
// @Tags         wallet
// @Produce      png
// @Produce      json
// @Param        format  query     string  false  "png (default) or json"
// @Param        size    query     int     false  "PNG edge length in pixels"
// @Success      200     {object}  app.Receive
// @Router       /receive [get]
func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("format") == "json" {
		rcv, err := s.app.Receive()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rcv)
		return
	}

	size := app.QRSize
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxQRSize {
			writeBadRequest(w, "size must be between 1 and "+strconv.Itoa(maxQRSize))
			return
		}
		size = n
	}
	png, err := s.app.ReceivePNG(size)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleSendMax handles GET /send/max
// @Summary      Largest sendable amount at the default fee
// @Tags         send
// @Produce      json
// @Success      200  {object}  MaxResponse
// @Router       /send/max [get]
func (s *Server) handleSendMax(w http.ResponseWriter, r *http.Request) {
	amount, err := s.app.MaxSendable()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MaxResponse{Amount: amount, Denom: s.app.Config().Chain.DisplayDenom})
}

// handleSendPreview handles POST /send/preview
// @Summary      Validate a transfer
// @Description  Checks recipient, amount and fee against the cached balance without submitting.
// @Tags         send
// @Accept       json
// @Produce      json
// @Param        request  body      transfer.Request  true  "Transfer"
// @Success      200      {object}  transfer.Preview
// @Failure      400      {object}  ErrorResponse
// @Router       /send/preview [post]
func (s *Server) handleSendPreview(w http.ResponseWriter, r *http.Request) {
	var req transfer.Request
	if !decode(w, r, &req) {
		return
	}
	p, err := s.app.Preview(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleSend handles POST /send
// @Summary      Send SEI
// @Description  Signs, broadcasts and waits for inclusion.
// @Tags         send
// @Accept       json
// @Produce      json
// @Param        request  body      transfer.Request  true  "Transfer"
// @Success      200      {object}  transfer.Result
// @Failure      400      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse
// @Router       /send [post]
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req transfer.Request
	if !decode(w, r, &req) {
		return
	}
	res, err := s.app.Send(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
