package chainclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Klingon-tech/seiwallet/pkg/types"
)

// Cosmos SDK REST paths.
const (
	balancesPath = "/cosmos/bank/v1beta1/balances/"
	accountsPath = "/cosmos/auth/v1beta1/accounts/"
	txsPath      = "/cosmos/tx/v1beta1/txs"
)

// BroadcastModeSync returns after CheckTx, before the tx is in a block.
const BroadcastModeSync = "BROADCAST_MODE_SYNC"

// Balances returns every coin held by address.
// A 404 is surfaced as an *HTTPError; callers decide what it means.
func (c *Client) Balances(ctx context.Context, address string) (types.Coins, error) {
	var resp struct {
		Balances types.Coins `json:"balances"`
	}
	if err := c.Get(ctx, balancesPath+url.PathEscape(address), &resp); err != nil {
		return nil, err
	}
	return resp.Balances, nil
}

// AccountInfo is the signing state of an on-chain account.
type AccountInfo struct {
	Address       string
	AccountNumber uint64
	Sequence      uint64
}

// baseAccount mirrors cosmos.auth.v1beta1.BaseAccount in its JSON form.
// Numbers are encoded as strings.
type baseAccount struct {
	Address       string `json:"address"`
	AccountNumber string `json:"account_number"`
	Sequence      string `json:"sequence"`
}

// accountJSON covers BaseAccount and the vesting wrappers that nest it.
type accountJSON struct {
	baseAccount
	BaseAccount        *baseAccount `json:"base_account"`
	BaseVestingAccount *struct {
		BaseAccount *baseAccount `json:"base_account"`
	} `json:"base_vesting_account"`
}

func (a *accountJSON) base() *baseAccount {
	switch {
	case a.BaseAccount != nil:
		return a.BaseAccount
	case a.BaseVestingAccount != nil && a.BaseVestingAccount.BaseAccount != nil:
		return a.BaseVestingAccount.BaseAccount
	default:
		return &a.baseAccount
	}
}

// Account returns the account number and sequence of address.
func (c *Client) Account(ctx context.Context, address string) (*AccountInfo, error) {
	var resp struct {
		Account accountJSON `json:"account"`
	}
	if err := c.Get(ctx, accountsPath+url.PathEscape(address), &resp); err != nil {
		return nil, err
	}
	base := resp.Account.base()

	info := &AccountInfo{Address: base.Address}
	var err error
	if info.AccountNumber, err = parseUint(base.AccountNumber); err != nil {
		return nil, fmt.Errorf("account_number: %w", err)
	}
	if info.Sequence, err = parseUint(base.Sequence); err != nil {
		return nil, fmt.Errorf("sequence: %w", err)
	}
	return info, nil
}

func parseUint(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

// TxResponse is the subset of cosmos.base.abci.v1beta1.TxResponse the wallet reads.
type TxResponse struct {
	Height    int64  `json:"height,string"`
	TxHash    string `json:"txhash"`
	Code      uint32 `json:"code"`
	Codespace string `json:"codespace"`
	RawLog    string `json:"raw_log"`
	GasWanted int64  `json:"gas_wanted,string"`
	GasUsed   int64  `json:"gas_used,string"`
}

type txResponseEnvelope struct {
	TxResponse *TxResponse `json:"tx_response"`
}

// BroadcastTx submits signed tx bytes in sync mode.
func (c *Client) BroadcastTx(ctx context.Context, txBytes []byte) (*TxResponse, error) {
	req := struct {
		TxBytes string `json:"tx_bytes"`
		Mode    string `json:"mode"`
	}{
		TxBytes: base64.StdEncoding.EncodeToString(txBytes),
		Mode:    BroadcastModeSync,
	}
	var resp txResponseEnvelope
	if err := c.Post(ctx, txsPath, req, &resp); err != nil {
		return nil, err
	}
	if resp.TxResponse == nil {
		return nil, fmt.Errorf("broadcast: response has no tx_response")
	}
	return resp.TxResponse, nil
}

// GetTx looks up an included transaction by hash. Until the tx is in a
// block the node answers 404.
func (c *Client) GetTx(ctx context.Context, hash string) (*TxResponse, error) {
	var resp txResponseEnvelope
	if err := c.Get(ctx, txsPath+"/"+url.PathEscape(hash), &resp); err != nil {
		return nil, err
	}
	if resp.TxResponse == nil {
		return nil, fmt.Errorf("get tx: response has no tx_response")
	}
	return resp.TxResponse, nil
}

// Raw fetches path and returns the undecoded JSON body.
func (c *Client) Raw(ctx context.Context, path string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
