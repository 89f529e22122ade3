// seiwallet is a command-line SEI wallet. It works on the same data
// directory as seiwalletd; run one or the other, not both.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cosmossdk.io/math"
	"golang.org/x/term"

	"github.com/Klingon-tech/seiwallet/config"
	"github.com/Klingon-tech/seiwallet/internal/app"
	"github.com/Klingon-tech/seiwallet/internal/balance"
	klog "github.com/Klingon-tech/seiwallet/internal/log"
	"github.com/Klingon-tech/seiwallet/internal/storage"
	"github.com/Klingon-tech/seiwallet/internal/store"
	"github.com/Klingon-tech/seiwallet/internal/transfer"
)

// globals holds the flags that appear before the subcommand.
type globals struct {
	dataDir string
	network config.NetworkType
	rpcURL  string
	restURL string
	asJSON  bool
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	g := globals{network: config.Mainnet}
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--datadir" && len(args) > 1:
			g.dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			g.dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			g.network = config.NetworkType(args[1])
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			g.network = config.NetworkType(args[0][len("--network="):])
			args = args[1:]
		case args[0] == "--testnet":
			g.network = config.Testnet
			args = args[1:]
		case args[0] == "--rpc-url" && len(args) > 1:
			g.rpcURL = args[1]
			args = args[2:]
		case args[0] == "--rest-url" && len(args) > 1:
			g.restURL = args[1]
			args = args[2:]
		case args[0] == "--json":
			g.asJSON = true
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "help", "--help", "-h":
		usage()
		return
	case "version", "--version":
		fmt.Println("seiwallet", config.Version)
		return
	}

	a := open(g)
	defer a.Close()

	switch cmd {
	case "create":
		cmdCreate(a, g, cmdArgs)
	case "import":
		cmdImport(a, g, cmdArgs)
	case "info":
		cmdInfo(a, g)
	case "rename":
		cmdRename(a, g, cmdArgs)
	case "backup":
		cmdBackup(a, g)
	case "forget":
		cmdForget(a, cmdArgs)
	case "balance":
		cmdBalance(a, g)
	case "price":
		cmdPrice(a, g)
	case "status":
		cmdStatus(a, g)
	case "dashboard":
		cmdDashboard(a, g)
	case "receive":
		cmdReceive(a, g, cmdArgs)
	case "max":
		cmdMax(a, g)
	case "send":
		cmdSend(a, g, cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: seiwallet [global flags] <command> [flags]

Global flags:
  --datadir <path>    Data directory (default: ~/.seiwallet)
  --network <net>     mainnet (default, pacific-1) or testnet (atlantic-2)
  --testnet           Shorthand for --network testnet
  --rpc-url <url>     Chain RPC endpoint
  --rest-url <url>    Chain REST endpoint
  --json              Print results as JSON

Wallet:
  create [--name N]               Generate a new wallet (asks for a password)
  import [--name N] [--no-password]
                                  Restore a wallet from a 12 or 24 word phrase
  info                            Show the stored wallet
  rename <name>                   Change the wallet's display name
  backup                          Show the recovery phrase
  forget [--yes]                  Delete the stored wallet

Chain:
  balance                         Show the balance and its fiat value
  price                           Show the SEI fiat rate
  status                          Probe the network
  dashboard                       Balance, price and status together
  receive [--png FILE]            Show the receive address as a QR code
  max                             Largest amount sendable at the default fee
  send --to ADDR --amount N [--fee low|medium|high] [--memo M] [--yes]
                                  Send SEI
`)
}

func open(g globals) *app.App {
	if err := klog.Init("error", false, ""); err != nil {
		fatal("%v", err)
	}
	cfg, err := config.LoadFromFile(g.dataDir, g.network)
	if err != nil {
		fatal("%v", err)
	}
	if g.rpcURL != "" {
		cfg.Chain.RPCURL = g.rpcURL
	}
	if g.restURL != "" {
		cfg.Chain.RESTURL = g.restURL
	}
	a, err := app.New(cfg, app.Options{})
	if errors.Is(err, storage.ErrLocked) {
		fatal("%v\nstop seiwalletd first, or talk to it through its local API", err)
	}
	if err != nil {
		fatal("%v", err)
	}
	return a
}

// unlock opens the stored wallet, asking for the password when needed.
func unlock(a *app.App) *app.WalletInfo {
	locked, err := a.Locked()
	if errors.Is(err, store.ErrNoWallet) {
		fatal("no wallet stored; run 'seiwallet create' or 'seiwallet import'")
	}
	if err != nil {
		fatal("%v", err)
	}
	password := ""
	if locked {
		pw, err := readPassword("Password: ")
		if err != nil {
			fatal("reading password: %v", err)
		}
		password = string(pw)
	}
	info, err := a.Startup(password)
	if err != nil {
		fatal("%v", err)
	}
	if info.AddressMismatch {
		fmt.Fprintln(os.Stderr, "Warning: stored address differs from the address derived from the phrase")
	}
	return info
}

func withTimeout() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	return ctx, func() { cancel(); stop() }
}

// ── create ──────────────────────────────────────────────────────────────

func cmdCreate(a *app.App, g globals, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet display name")
	fs.Parse(args)

	confirmOverwrite(a)

	pw, err := readPassword("Password: ")
	if err != nil {
		fatal("reading password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("reading password: %v", err)
	}

	created, err := a.Create(*name, string(pw), string(confirm))
	if err != nil {
		fatal("%v", err)
	}
	if g.asJSON {
		printJSON(created)
		return
	}

	fmt.Println("Wallet created.")
	fmt.Printf("  Name:    %s\n", created.Wallet.Name)
	fmt.Printf("  Address: %s\n", created.Wallet.Address)
	fmt.Println()
	fmt.Println("Write down your recovery phrase and keep it offline:")
	fmt.Println()
	printWords(strings.Fields(created.Phrase))
}

// ── import ──────────────────────────────────────────────────────────────

func cmdImport(a *app.App, g globals, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	name := fs.String("name", "", "Wallet display name")
	noPassword := fs.Bool("no-password", false, "Store the phrase without encryption")
	fs.Parse(args)

	confirmOverwrite(a)

	phrase, err := readSecret("Recovery phrase: ")
	if err != nil {
		fatal("reading phrase: %v", err)
	}

	password := ""
	if !*noPassword {
		pw, err := readPassword("Password (empty for none): ")
		if err != nil {
			fatal("reading password: %v", err)
		}
		if len(pw) > 0 {
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				fatal("reading password: %v", err)
			}
			if string(pw) != string(confirm) {
				fatal("%v", app.ErrPasswordMismatch)
			}
		}
		password = string(pw)
	}

	info, err := a.Import(*name, phrase, password)
	if err != nil {
		fatal("%v", err)
	}
	if g.asJSON {
		printJSON(info)
		return
	}
	fmt.Println("Wallet imported.")
	fmt.Printf("  Name:    %s\n", info.Name)
	fmt.Printf("  Address: %s\n", info.Address)
	if !info.Encrypted {
		fmt.Println("  Warning: the recovery phrase is stored without a password.")
	}
}

func confirmOverwrite(a *app.App) {
	if _, err := a.Locked(); errors.Is(err, store.ErrNoWallet) {
		return
	}
	if !confirm("A wallet is already stored and will be replaced. Continue?") {
		fatal("aborted")
	}
}

// ── info / rename / backup / forget ─────────────────────────────────────

func cmdInfo(a *app.App, g globals) {
	info := unlock(a)
	if g.asJSON {
		printJSON(info)
		return
	}
	fmt.Printf("Name:      %s\n", info.Name)
	fmt.Printf("Address:   %s\n", info.Address)
	fmt.Printf("Chain:     %s\n", info.ChainID)
	fmt.Printf("Encrypted: %v\n", info.Encrypted)
	if info.CreatedAt != nil {
		fmt.Printf("Created:   %s\n", info.CreatedAt.Local().Format(time.DateTime))
	}
	if info.ImportedAt != nil {
		fmt.Printf("Imported:  %s\n", info.ImportedAt.Local().Format(time.DateTime))
	}
}

func cmdRename(a *app.App, g globals, args []string) {
	if len(args) == 0 {
		fatal("usage: seiwallet rename <name>")
	}
	unlock(a)
	if err := a.Rename(strings.Join(args, " ")); err != nil {
		fatal("%v", err)
	}
	cmdInfo(a, g)
}

func cmdBackup(a *app.App, g globals) {
	info := unlock(a)
	locked, _ := a.Locked()
	password := ""
	if locked {
		pw, err := readPassword("Password again to reveal the phrase: ")
		if err != nil {
			fatal("reading password: %v", err)
		}
		password = string(pw)
	}
	backup, err := a.Backup(password)
	if err != nil {
		fatal("%v", err)
	}
	if g.asJSON {
		printJSON(backup)
		return
	}
	fmt.Printf("Address: %s\n\n", info.Address)
	printWords(backup.Words)
}

func cmdForget(a *app.App, args []string) {
	fs := flag.NewFlagSet("forget", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	fs.Parse(args)

	if !*yes && !confirm("Delete the stored wallet? Funds are lost without the recovery phrase.") {
		fatal("aborted")
	}
	if err := a.Forget(); err != nil {
		fatal("%v", err)
	}
	fmt.Println("Wallet deleted.")
}

// ── balance / price / status / dashboard ────────────────────────────────

func cmdBalance(a *app.App, g globals) {
	unlock(a)
	ctx, cancel := withTimeout()
	defer cancel()

	a.Price(ctx)
	st, err := a.RefreshBalance(ctx)
	if err != nil {
		fatal("%v", err)
	}
	cfg := a.Config()
	amount := formatAmount(a, st.Display)
	if g.asJSON {
		printJSON(map[string]any{
			"address": st.Address,
			"balance": amount,
			"denom":   cfg.Chain.DisplayDenom,
			"native":  st.Native.String(),
			"fiat":    st.Fiat(),
		})
		return
	}
	fmt.Printf("%s %s (%.2f %s)\n", amount, cfg.Chain.DisplayDenom, st.Fiat(), strings.ToUpper(cfg.Price.Currency))
}

func cmdPrice(a *app.App, g globals) {
	ctx, cancel := withTimeout()
	defer cancel()
	rate := a.Price(ctx)
	if g.asJSON {
		printJSON(map[string]any{"rate": rate, "currency": a.Config().Price.Currency})
		return
	}
	fmt.Printf("1 %s = %.6f %s\n", a.Config().Chain.DisplayDenom, rate, strings.ToUpper(a.Config().Price.Currency))
}

func cmdStatus(a *app.App, g globals) {
	ctx, cancel := withTimeout()
	defer cancel()
	st, err := a.Status(ctx)
	if g.asJSON {
		printJSON(st)
		return
	}
	if err != nil {
		fmt.Printf("Offline: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Online:   %s\n", st.Network)
	fmt.Printf("Height:   %d\n", st.LatestHeight)
	fmt.Printf("Node:     %s %s\n", st.Moniker, st.Version)
	if st.CatchingUp {
		fmt.Println("Syncing:  node is catching up")
	}
}

func cmdDashboard(a *app.App, g globals) {
	unlock(a)
	ctx, cancel := withTimeout()
	defer cancel()
	d, err := a.Dashboard(ctx)
	if err != nil {
		fatal("%v", err)
	}
	if g.asJSON {
		printJSON(d)
		return
	}
	fmt.Printf("Wallet:   %s (%s)\n", d.Wallet.Name, d.Wallet.Address)
	if d.BalanceError != "" {
		fmt.Printf("Balance:  unavailable (%s)\n", d.BalanceError)
	} else {
		fmt.Printf("Balance:  %s %s (%.2f %s)\n", d.Balance, d.Denom, d.FiatValue, strings.ToUpper(d.Currency))
	}
	fmt.Printf("Price:    %.6f %s\n", d.Price, strings.ToUpper(d.Currency))
	if d.StatusError != "" {
		fmt.Printf("Network:  offline (%s)\n", d.StatusError)
	} else {
		fmt.Printf("Network:  %s at height %d\n", d.Status.Network, d.Status.LatestHeight)
	}
}

// ── receive ─────────────────────────────────────────────────────────────

func cmdReceive(a *app.App, g globals, args []string) {
	fs := flag.NewFlagSet("receive", flag.ExitOnError)
	pngPath := fs.String("png", "", "Write the QR code as PNG to this file")
	size := fs.Int("size", app.QRSize, "PNG size in pixels")
	fs.Parse(args)

	unlock(a)
	if *pngPath != "" {
		png, err := a.ReceivePNG(*size)
		if err != nil {
			fatal("%v", err)
		}
		if err := os.WriteFile(*pngPath, png, 0644); err != nil {
			fatal("writing %s: %v", *pngPath, err)
		}
	}
	r, err := a.Receive()
	if err != nil {
		fatal("%v", err)
	}
	if g.asJSON {
		printJSON(r)
		return
	}
	fmt.Print(r.QR)
	fmt.Printf("\nSend only %s on %s to:\n  %s\n", r.Denom, r.ChainID, r.Address)
}

// ── send ────────────────────────────────────────────────────────────────

func cmdMax(a *app.App, g globals) {
	unlock(a)
	ctx, cancel := withTimeout()
	defer cancel()
	if _, err := a.RefreshBalance(ctx); err != nil {
		fatal("%v", err)
	}
	amount, err := a.MaxSendable()
	if err != nil {
		fatal("%v", err)
	}
	if g.asJSON {
		printJSON(map[string]string{"amount": amount})
		return
	}
	fmt.Printf("%s %s\n", amount, a.Config().Chain.DisplayDenom)
}

func cmdSend(a *app.App, g globals, args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	to := fs.String("to", "", "Recipient address")
	amount := fs.String("amount", "", "Amount in SEI, or \"max\"")
	fee := fs.String("fee", string(transfer.DefaultTier), "Fee tier: low, medium or high")
	memo := fs.String("memo", "", "Transaction memo")
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	fs.Parse(args)

	if *to == "" || *amount == "" {
		fatal("usage: seiwallet send --to ADDR --amount N [--fee low|medium|high] [--memo M] [--yes]")
	}

	unlock(a)
	ctx, cancel := withTimeout()
	defer cancel()
	if _, err := a.RefreshBalance(ctx); err != nil {
		fatal("%v", err)
	}

	if *amount == "max" {
		sendable, err := a.MaxSendable()
		if err != nil {
			fatal("%v", err)
		}
		*amount = sendable
	}
	req := transfer.Request{
		Recipient: *to,
		Amount:    *amount,
		Tier:      transfer.ParseTier(*fee),
		Memo:      *memo,
	}
	p, err := a.Preview(req)
	if err != nil {
		fatal("%v", err)
	}

	denom := a.Config().Chain.DisplayDenom
	fmt.Fprintf(os.Stderr, "To:     %s\n", p.Recipient)
	fmt.Fprintf(os.Stderr, "Amount: %s %s\n", formatAmount(a, p.Amount), denom)
	fmt.Fprintf(os.Stderr, "Fee:    %s %s (%s)\n", formatAmount(a, p.Fee), denom, p.Tier)
	fmt.Fprintf(os.Stderr, "Total:  %s %s\n", formatAmount(a, p.Total), denom)
	if !*yes && !confirm("Send?") {
		fatal("aborted")
	}

	a.Transfers().OnStateChange(func(s transfer.State) {
		if !g.asJSON && !s.Final() && s != transfer.Idle {
			fmt.Fprintf(os.Stderr, "  %s...\n", s)
		}
	})
	res, err := a.Send(ctx, req)
	var rejected *transfer.RejectedError
	if errors.As(err, &rejected) {
		fatal("transaction %s rejected (code %d): %s", rejected.TxHash, rejected.Code, rejected.RawLog)
	}
	if err != nil {
		fatal("%v", err)
	}
	if g.asJSON {
		printJSON(res)
		return
	}
	fmt.Printf("Sent. Tx %s included at height %d\n", res.TxHash, res.Height)
}

// ── Formatting helpers ─────────────────────────────────────────────────

func formatAmount(a *app.App, d math.LegacyDec) string {
	return balance.FormatDisplay(d, a.Config().Chain.Decimals)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encoding output: %v", err)
	}
}

func printWords(words []string) {
	for i, w := range words {
		fmt.Printf("  %2d. %-12s", i+1, w)
		if (i+1)%4 == 0 {
			fmt.Println()
		}
	}
	if len(words)%4 != 0 {
		fmt.Println()
	}
}

// ── Input helpers ───────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// readSecret reads hidden input from a terminal, or one line from a pipe.
func readSecret(prompt string) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := readPassword(prompt)
		return string(b), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
