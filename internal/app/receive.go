package app

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the edge length in pixels of receive QR images.
const QRSize = 256

// Receive is what a payer needs to send to the open wallet.
type Receive struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
	ChainID string `json:"chain_id"`
	// QR renders the address with half-block characters for terminals.
	QR string `json:"qr,omitempty"`
}

// Receive returns the receive address with a terminal QR rendering.
func (a *App) Receive() (*Receive, error) {
	active, err := a.active()
	if err != nil {
		return nil, err
	}
	q, err := qrcode.New(active.Address, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return &Receive{
		Address: active.Address,
		Denom:   a.cfg.Chain.DisplayDenom,
		ChainID: a.cfg.Chain.ChainID,
		QR:      q.ToSmallString(false),
	}, nil
}

// ReceivePNG returns the receive address as a PNG QR code.
func (a *App) ReceivePNG(size int) ([]byte, error) {
	active, err := a.active()
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = QRSize
	}
	png, err := qrcode.Encode(active.Address, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
