package transfer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cosmossdk.io/math"

	"github.com/Klingon-tech/seiwallet/internal/balance"
	"github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/session"
	"github.com/Klingon-tech/seiwallet/internal/signer"
)

const (
	testFrom      = "sei17499s50fxu4c0qg23esvm5h8elvqkm33cuysq3"
	testRecipient = "sei1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5jwagqa"
	testContract  = "sei1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5z5tpwxqergd3c8g7rusqzdvza8"
)

func init() {
	log.Discard()
}

// fakeBalances is a fixed balance that counts refreshes.
type fakeBalances struct {
	display   math.LegacyDec
	refreshes atomic.Int32
}

func (f *fakeBalances) Current() balance.State {
	return balance.State{Display: f.display}
}

func (f *fakeBalances) Refresh(context.Context, string) (balance.State, error) {
	f.refreshes.Add(1)
	return f.Current(), nil
}

type stubSession struct{}

func (stubSession) Accounts() ([]signer.Account, error) {
	return []signer.Account{{Address: testFrom}}, nil
}

// fakeClient records what it was asked to sign.
type fakeClient struct {
	result *signer.BroadcastResult
	err    error
	block  chan struct{}
	msgs   []signer.Msg
	fee    signer.Fee
	memo   string
	calls  atomic.Int32
}

func (c *fakeClient) SignAndBroadcast(_ context.Context, _ string, msgs []signer.Msg, fee signer.Fee, memo string) (*signer.BroadcastResult, error) {
	c.calls.Add(1)
	c.msgs, c.fee, c.memo = msgs, fee, memo
	if c.block != nil {
		<-c.block
	}
	return c.result, c.err
}

// stepClient additionally exposes separate sign and broadcast steps.
type stepClient struct {
	fakeClient
}

func (c *stepClient) Sign(ctx context.Context, from string, msgs []signer.Msg, fee signer.Fee, memo string) (*signer.SignedTx, error) {
	c.msgs, c.fee, c.memo = msgs, fee, memo
	return &signer.SignedTx{Hash: "ABC"}, nil
}

func (c *stepClient) Broadcast(context.Context, *signer.SignedTx) (*signer.BroadcastResult, error) {
	return c.result, c.err
}

type fakeProvider struct {
	client     signer.SigningClient
	connectErr error
}

func (p *fakeProvider) Generate(int, string) (signer.Session, string, error) {
	return nil, "", errors.New("unused")
}

func (p *fakeProvider) FromMnemonic(string, string) (signer.Session, error) {
	return nil, errors.New("unused")
}

func (p *fakeProvider) ConnectWithSigner(context.Context, string, signer.Session) (signer.SigningClient, error) {
	if p.connectErr != nil {
		return nil, p.connectErr
	}
	return p.client, nil
}

func testConfig() Config {
	return Config{
		Endpoint:    "http://rest",
		Denom:       "usei",
		Prefix:      "sei",
		Decimals:    6,
		SettleDelay: 10 * time.Millisecond,
	}
}

func testActive() *session.Active {
	return &session.Active{Session: stubSession{}, Address: testFrom}
}

func mustDec(s string) math.LegacyDec {
	return math.LegacyMustNewDecFromStr(s)
}

func newWorkflow(client signer.SigningClient, bal string) (*Workflow, *fakeBalances) {
	b := &fakeBalances{display: mustDec(bal)}
	w := New(testConfig(), &fakeProvider{client: client}, b)
	return w, b
}

func TestFeeTiers(t *testing.T) {
	tests := map[string]string{
		"low":     "0.001",
		"medium":  "0.002",
		"HIGH":    "0.005",
		"":        "0.002",
		"instant": "0.002",
	}
	for tier, want := range tests {
		if got := FeeTier(tier).Fee(); !got.Equal(mustDec(want)) {
			t.Errorf("tier %q fee = %s, want %s", tier, got, want)
		}
	}
}

func TestPreview(t *testing.T) {
	w, _ := newWorkflow(nil, "10")
	p, err := w.Preview(Request{Recipient: testRecipient, Amount: "1.2345678", Tier: High}, mustDec("10"))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.NativeAmount.Int64() != 1234567 {
		t.Errorf("NativeAmount = %s, want 1234567 (floored)", p.NativeAmount)
	}
	if p.NativeFee.Int64() != 5000 {
		t.Errorf("NativeFee = %s, want 5000", p.NativeFee)
	}
	if !p.Total.Equal(mustDec("1.2395678")) {
		t.Errorf("Total = %s", p.Total)
	}
}

func TestPreview_Validation(t *testing.T) {
	w, _ := newWorkflow(nil, "1")
	tests := []struct {
		name string
		req  Request
		bal  string
		want error
	}{
		{"wrong prefix", Request{Recipient: "cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu", Amount: "0.1"}, "1", ErrInvalidRecipient},
		{"osmosis recipient", Request{Recipient: "osmo1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5helwsw", Amount: "10", Tier: Low}, "50", ErrInvalidRecipient},
		{"25-byte payload", Request{Recipient: "sei1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5z5tpwxqe32sc8h", Amount: "0.1"}, "1", ErrInvalidRecipient},
		{"empty recipient", Request{Amount: "0.1"}, "1", ErrInvalidRecipient},
		{"bad checksum", Request{Recipient: "sei1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5jwagqq", Amount: "0.1"}, "1", ErrInvalidRecipient},
		{"zero amount", Request{Recipient: testRecipient, Amount: "0"}, "1", ErrInvalidAmount},
		{"negative amount", Request{Recipient: testRecipient, Amount: "-1"}, "1", ErrInvalidAmount},
		{"not a number", Request{Recipient: testRecipient, Amount: "abc"}, "1", ErrInvalidAmount},
		{"below one usei", Request{Recipient: testRecipient, Amount: "0.0000001"}, "1", ErrInvalidAmount},
		{"amount over balance", Request{Recipient: testRecipient, Amount: "2"}, "1", ErrInsufficientFunds},
		{"fee tips over balance", Request{Recipient: testRecipient, Amount: "0.999"}, "1", ErrInsufficientFunds},
		{"100 at medium against 50", Request{Recipient: testRecipient, Amount: "100", Tier: Medium}, "50", ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := w.Preview(tt.req, mustDec(tt.bal)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	// Exactly amount + fee is allowed.
	if _, err := w.Preview(Request{Recipient: testRecipient, Amount: "0.998"}, mustDec("1")); err != nil {
		t.Errorf("amount + fee == balance should pass: %v", err)
	}

	p, err := w.Preview(Request{Recipient: testRecipient, Amount: "10", Tier: Low}, mustDec("50"))
	if err != nil {
		t.Fatalf("10 at low against 50: %v", err)
	}
	if !p.Total.Equal(mustDec("10.001")) {
		t.Errorf("Total = %s, want 10.001", p.Total)
	}

	if _, err := w.Preview(Request{Recipient: testContract, Amount: "1"}, mustDec("5")); err != nil {
		t.Errorf("32-byte contract recipient should pass: %v", err)
	}
}

func TestCancelPending_StopsRefresh(t *testing.T) {
	client := &fakeClient{result: &signer.BroadcastResult{Code: 0, TxHash: "HASH", Height: 1}}
	w, b := newWorkflow(client, "5")
	w.cfg.SettleDelay = 50 * time.Millisecond
	defer w.Close()

	if _, err := w.Submit(context.Background(), testActive(), Request{Recipient: testRecipient, Amount: "1"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	w.CancelPending()
	time.Sleep(150 * time.Millisecond)

	if n := b.refreshes.Load(); n != 0 {
		t.Errorf("refreshes = %d after CancelPending, want 0", n)
	}
}

func TestMaxSendable(t *testing.T) {
	tests := map[string]string{
		"1":     "0.998",
		"0.002": "0",
		"0.001": "0",
		"0":     "0",
	}
	for bal, want := range tests {
		if got := MaxSendable(mustDec(bal)); !got.Equal(mustDec(want)) {
			t.Errorf("MaxSendable(%s) = %s, want %s", bal, got, want)
		}
	}
	if !MaxSendable(math.LegacyDec{}).IsZero() {
		t.Error("nil balance should give 0")
	}
}

func TestSubmit_Confirmed(t *testing.T) {
	client := &fakeClient{result: &signer.BroadcastResult{Code: 0, TxHash: "HASH", Height: 99}}
	w, b := newWorkflow(client, "5")
	defer w.Close()

	var mu sync.Mutex
	var states []State
	w.OnStateChange(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	res, err := w.Submit(context.Background(), testActive(), Request{Recipient: testRecipient, Amount: "1.5", Memo: "rent"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.TxHash != "HASH" || res.Height != 99 {
		t.Errorf("result = %+v", res)
	}

	mu.Lock()
	want := []State{Validating, Building, Signing, Confirmed}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("states = %v, want %v", states, want)
			break
		}
	}
	mu.Unlock()

	// Message and fee.
	send, ok := client.msgs[0].(signer.MsgSend)
	if !ok || len(client.msgs) != 1 {
		t.Fatalf("msgs = %#v", client.msgs)
	}
	if send.FromAddress != testFrom || send.ToAddress != testRecipient || send.Amount[0].String() != "1500000usei" {
		t.Errorf("msg = %+v", send)
	}
	if client.fee.GasLimit != DefaultGasLimit || client.fee.Amount[0].String() != "2000usei" {
		t.Errorf("fee = %+v", client.fee)
	}
	if client.memo != "rent" {
		t.Errorf("memo = %q", client.memo)
	}

	// Balance refresh after the settle delay.
	deadline := time.Now().Add(time.Second)
	for b.refreshes.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if b.refreshes.Load() != 1 {
		t.Errorf("refreshes = %d, want 1", b.refreshes.Load())
	}
}

func TestSubmit_StepClientObservesBroadcasting(t *testing.T) {
	client := &stepClient{fakeClient{result: &signer.BroadcastResult{TxHash: "H"}}}
	w, _ := newWorkflow(client, "5")
	defer w.Close()

	var states []State
	w.OnStateChange(func(s State) { states = append(states, s) })
	if _, err := w.Submit(context.Background(), testActive(), Request{Recipient: testRecipient, Amount: "1"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := []State{Validating, Building, Signing, Broadcasting, Confirmed}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	if client.calls.Load() != 0 {
		t.Error("step client should not use SignAndBroadcast")
	}
}

func TestSubmit_Rejected(t *testing.T) {
	client := &fakeClient{result: &signer.BroadcastResult{Code: 5, TxHash: "H", RawLog: "spendable balance 10usei is smaller than 2000usei: insufficient funds"}}
	w, b := newWorkflow(client, "5")
	defer w.Close()

	_, err := w.Submit(context.Background(), testActive(), Request{Recipient: testRecipient, Amount: "1"})
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want *RejectedError", err)
	}
	if rejected.Code != 5 || err.Error() != client.result.RawLog {
		t.Errorf("rejected = %+v, message %q", rejected, err.Error())
	}
	if w.State() != Rejected {
		t.Errorf("State = %v, want rejected", w.State())
	}
	time.Sleep(30 * time.Millisecond)
	if b.refreshes.Load() != 0 {
		t.Error("rejected transfer must not schedule a refresh")
	}
}

func TestSubmit_SubmissionFailed(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
	}{
		{"connect", &fakeProvider{connectErr: errors.New("dial tcp: refused")}},
		{"broadcast", &fakeProvider{client: &fakeClient{err: errors.New("timeout")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(testConfig(), tt.provider, &fakeBalances{display: mustDec("5")})
			_, err := w.Submit(context.Background(), testActive(), Request{Recipient: testRecipient, Amount: "1"})
			if !errors.Is(err, ErrSubmissionFailed) {
				t.Fatalf("err = %v, want ErrSubmissionFailed", err)
			}
			if w.State() != Rejected {
				t.Errorf("State = %v, want rejected", w.State())
			}
		})
	}
}

func TestSubmit_ValidationReturnsToIdle(t *testing.T) {
	client := &fakeClient{}
	w, _ := newWorkflow(client, "0.5")
	_, err := w.Submit(context.Background(), testActive(), Request{Recipient: testRecipient, Amount: "1"})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v", err)
	}
	if w.State() != Idle {
		t.Errorf("State = %v, want idle", w.State())
	}
	if client.calls.Load() != 0 {
		t.Error("invalid request reached the signer")
	}
}

func TestSubmit_NoSession(t *testing.T) {
	w, _ := newWorkflow(&fakeClient{}, "5")
	if _, err := w.Submit(context.Background(), nil, Request{}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestSubmit_AttemptInProgress(t *testing.T) {
	client := &fakeClient{
		result: &signer.BroadcastResult{TxHash: "H"},
		block:  make(chan struct{}),
	}
	w, _ := newWorkflow(client, "5")
	defer w.Close()

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background(), testActive(), Request{Recipient: testRecipient, Amount: "1"})
		done <- err
	}()

	// Wait until the first attempt is inside the signer.
	deadline := time.Now().Add(time.Second)
	for client.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	_, err := w.Submit(context.Background(), testActive(), Request{Recipient: testRecipient, Amount: "1"})
	if !errors.Is(err, ErrAttemptInProgress) {
		t.Fatalf("second attempt err = %v, want ErrAttemptInProgress", err)
	}

	close(client.block)
	if err := <-done; err != nil {
		t.Fatalf("first attempt: %v", err)
	}

	// A new attempt is allowed once the first finished.
	if _, err := w.Submit(context.Background(), testActive(), Request{Recipient: testRecipient, Amount: "1"}); err != nil {
		t.Fatalf("third attempt: %v", err)
	}
}

func TestStateString(t *testing.T) {
	if Broadcasting.String() != "broadcasting" || State(42).String() != "state(42)" {
		t.Error("unexpected state names")
	}
	if !Confirmed.Final() || !Rejected.Final() || Signing.Final() {
		t.Error("unexpected Final results")
	}
}
