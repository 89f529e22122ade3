// Sei wallet daemon.
//
// Usage:
//
//	seiwalletd [--testnet --api-port=...]  Run the wallet service
//	seiwalletd --help                      Show help
//
// An encrypted wallet is opened with the password from SEIWALLET_PASSWORD,
// or from a prompt when stdin is a terminal. Otherwise it starts locked and
// can be opened through POST /api/v1/wallet/unlock.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/Klingon-tech/seiwallet/config"
	"github.com/Klingon-tech/seiwallet/internal/node"
)

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		config.PrintUsage()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flags.Version {
		fmt.Println("seiwalletd", config.Version)
		return
	}

	n, err := node.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := n.Start(password(n)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		n.Stop()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	n.Stop()
}

func password(n *node.Node) string {
	if pw, ok := os.LookupEnv("SEIWALLET_PASSWORD"); ok {
		return pw
	}
	locked, err := n.App().Locked()
	if err != nil || !locked || !term.IsTerminal(int(syscall.Stdin)) {
		return ""
	}
	fmt.Fprint(os.Stderr, "Wallet password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return string(pw)
}
