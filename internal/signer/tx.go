package signer

import (
	"encoding/hex"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/Klingon-tech/seiwallet/pkg/crypto"
	"github.com/Klingon-tech/seiwallet/pkg/types"
)

// Protobuf type URLs.
const (
	MsgSendTypeURL = "/cosmos.bank.v1beta1.MsgSend"
	PubKeyTypeURL  = "/cosmos.crypto.secp256k1.PubKey"
)

// signModeDirect is cosmos.tx.signing.v1beta1.SignMode SIGN_MODE_DIRECT.
const signModeDirect = 1

// MsgSend is cosmos.bank.v1beta1.MsgSend.
type MsgSend struct {
	FromAddress string
	ToAddress   string
	Amount      types.Coins
}

// TypeURL implements Msg.
func (m MsgSend) TypeURL() string { return MsgSendTypeURL }

// Marshal implements Msg.
func (m MsgSend) Marshal() ([]byte, error) {
	if m.FromAddress == "" || m.ToAddress == "" {
		return nil, fmt.Errorf("msg send: from and to addresses are required")
	}
	if len(m.Amount) == 0 {
		return nil, fmt.Errorf("msg send: amount is required")
	}
	var b []byte
	b = appendString(b, 1, m.FromAddress)
	b = appendString(b, 2, m.ToAddress)
	for _, c := range m.Amount {
		if _, err := c.AmountInt(); err != nil {
			return nil, fmt.Errorf("msg send: %w", err)
		}
		b = appendMessage(b, 3, marshalCoin(c))
	}
	return b, nil
}

// SignedTx is an encoded TxRaw ready for broadcast.
type SignedTx struct {
	Bytes []byte
	Hash  string
}

// TxHash returns the uppercase hex sha256 of encoded tx bytes, the form
// the chain reports.
func TxHash(txBytes []byte) string {
	h := crypto.Sha256(txBytes)
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// TxBuilder constructs a single-signer transaction incrementally.
type TxBuilder struct {
	msgs []Msg
	fee  Fee
	memo string
}

// NewTxBuilder creates a new transaction builder.
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{}
}

// AddMsg appends a message.
func (b *TxBuilder) AddMsg(m Msg) *TxBuilder {
	b.msgs = append(b.msgs, m)
	return b
}

// SetFee sets the fee.
func (b *TxBuilder) SetFee(fee Fee) *TxBuilder {
	b.fee = fee
	return b
}

// SetMemo sets the memo.
func (b *TxBuilder) SetMemo(memo string) *TxBuilder {
	b.memo = memo
	return b
}

// SignerData is the on-chain state a signature commits to.
type SignerData struct {
	ChainID       string
	AccountNumber uint64
	Sequence      uint64
}

// Sign encodes the body and auth info, signs sha256(SignDoc) with key and
// returns the encoded TxRaw.
func (b *TxBuilder) Sign(key crypto.Signer, data SignerData) (*SignedTx, error) {
	if len(b.msgs) == 0 {
		return nil, fmt.Errorf("tx has no messages")
	}
	if data.ChainID == "" {
		return nil, fmt.Errorf("chain id is required")
	}

	body, err := marshalTxBody(b.msgs, b.memo)
	if err != nil {
		return nil, err
	}
	authInfo := marshalAuthInfo(key.PublicKey(), data.Sequence, b.fee)
	signDoc := marshalSignDoc(body, authInfo, data.ChainID, data.AccountNumber)

	hash := crypto.Sha256(signDoc)
	sig, err := key.Sign(hash[:])
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}

	raw := marshalTxRaw(body, authInfo, [][]byte{sig})
	return &SignedTx{Bytes: raw, Hash: TxHash(raw)}, nil
}

// ── Wire encoding ───────────────────────────────────────────────────────
//
// Field numbers follow the cosmos-sdk protobuf definitions. Zero values are
// omitted, as proto3 requires for a canonical SignDoc.

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessage always writes the field, even when the embedded message is
// empty, so presence is preserved.
func appendMessage(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendUvarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// cosmos.base.v1beta1.Coin
func marshalCoin(c types.Coin) []byte {
	var b []byte
	b = appendString(b, 1, c.Denom)
	return appendString(b, 2, c.Amount)
}

// google.protobuf.Any
func marshalAny(typeURL string, value []byte) []byte {
	var b []byte
	b = appendString(b, 1, typeURL)
	return appendBytes(b, 2, value)
}

// cosmos.tx.v1beta1.TxBody
func marshalTxBody(msgs []Msg, memo string) ([]byte, error) {
	var b []byte
	for i, m := range msgs {
		value, err := m.Marshal()
		if err != nil {
			return nil, fmt.Errorf("msg %d: %w", i, err)
		}
		b = appendMessage(b, 1, marshalAny(m.TypeURL(), value))
	}
	return appendString(b, 2, memo), nil
}

// cosmos.tx.v1beta1.AuthInfo with one SignerInfo.
func marshalAuthInfo(pubKey []byte, sequence uint64, fee Fee) []byte {
	pk := appendBytes(nil, 1, pubKey)

	single := appendUvarint(nil, 1, signModeDirect)
	modeInfo := appendMessage(nil, 1, single)

	var signerInfo []byte
	signerInfo = appendMessage(signerInfo, 1, marshalAny(PubKeyTypeURL, pk))
	signerInfo = appendMessage(signerInfo, 2, modeInfo)
	signerInfo = appendUvarint(signerInfo, 3, sequence)

	var feeBytes []byte
	for _, c := range fee.Amount {
		feeBytes = appendMessage(feeBytes, 1, marshalCoin(c))
	}
	feeBytes = appendUvarint(feeBytes, 2, fee.GasLimit)

	var b []byte
	b = appendMessage(b, 1, signerInfo)
	return appendMessage(b, 2, feeBytes)
}

// cosmos.tx.v1beta1.SignDoc
func marshalSignDoc(body, authInfo []byte, chainID string, accountNumber uint64) []byte {
	var b []byte
	b = appendBytes(b, 1, body)
	b = appendBytes(b, 2, authInfo)
	b = appendString(b, 3, chainID)
	return appendUvarint(b, 4, accountNumber)
}

// cosmos.tx.v1beta1.TxRaw
func marshalTxRaw(body, authInfo []byte, sigs [][]byte) []byte {
	var b []byte
	b = appendBytes(b, 1, body)
	b = appendBytes(b, 2, authInfo)
	for _, s := range sigs {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, s)
	}
	return b
}
