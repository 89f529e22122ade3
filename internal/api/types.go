package api

import "github.com/Klingon-tech/seiwallet/internal/netstatus"

// CreateRequest is the body of POST /wallet/create.
type CreateRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

// ImportRequest is the body of POST /wallet/import.
type ImportRequest struct {
	Name     string `json:"name"`
	Phrase   string `json:"phrase"`
	Password string `json:"password,omitempty"`
}

// PasswordRequest is the body of POST /wallet/unlock and /wallet/backup.
type PasswordRequest struct {
	Password string `json:"password"`
}

// RenameRequest is the body of POST /wallet/rename.
type RenameRequest struct {
	Name string `json:"name"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	ChainID string           `json:"chain_id"`
	Status  netstatus.Status `json:"status"`
}

// BalanceResponse is returned by GET /balance.
type BalanceResponse struct {
	Address   string  `json:"address"`
	Balance   string  `json:"balance"`
	Denom     string  `json:"denom"`
	Native    string  `json:"native"`
	FiatValue float64 `json:"fiat_value"`
	Currency  string  `json:"currency"`
}

// PriceResponse is returned by GET /price.
type PriceResponse struct {
	Rate     float64 `json:"rate"`
	Currency string  `json:"currency"`
}

// MaxResponse is returned by GET /send/max.
type MaxResponse struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}
