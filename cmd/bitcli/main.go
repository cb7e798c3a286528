// Package main provides bitcli - a minimal custodial Bitcoin wallet CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ManiReddyt/bitcli/internal/backend"
	"github.com/ManiReddyt/bitcli/internal/chain"
	"github.com/ManiReddyt/bitcli/internal/config"
	"github.com/ManiReddyt/bitcli/internal/storage"
	"github.com/ManiReddyt/bitcli/internal/wallet"
	"github.com/ManiReddyt/bitcli/pkg/helpers"
	"github.com/ManiReddyt/bitcli/pkg/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

const usage = `bitcli - minimal Bitcoin wallet

Usage:
  bitcli [flags] <command> [command flags]

Commands:
  create    Create a new wallet (prints the mnemonic once)
  restore   Restore a wallet from a BIP39 mnemonic
  address   Show the wallet's receive address
  mnemonic  Show the stored mnemonic
  balance   Show the confirmed balance
  utxos     List unspent outputs
  fees      Show current fee rates
  send      Send bitcoin (-to <address> -amount <sats> | -btc <amount> [-tier low|medium|high])
  network   Show the configured network
  reset     Delete the stored wallet
  version   Show version and exit

Flags:
  -data-dir <dir>    Data directory (default ~/.bitcli)
  -testnet           Use testnet (separate data directory)
  -log-level <lvl>   Log level (debug, info, warn, error)
`

func main() {
	var (
		dataDir  = flag.String("data-dir", "~/.bitcli", "Data directory")
		testnet  = flag.Bool("testnet", false, "Use testnet (separate network and data)")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	log := logging.New(&logging.Config{
		Level:      *logLevel,
		TimeFormat: time.TimeOnly,
	})
	logging.SetDefault(log)

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)
	args := flag.Args()[1:]

	if command == "version" {
		fmt.Printf("bitcli %s (commit: %s)\n", version, commit)
		return
	}

	// Testnet uses a subdirectory so the two networks never share a wallet.
	effectiveDataDir := *dataDir
	if *testnet {
		effectiveDataDir = filepath.Join(*dataDir, "testnet")
	}

	cfg, err := config.LoadConfig(effectiveDataDir)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	cfg.Storage.DataDir = effectiveDataDir
	if *testnet {
		cfg.Network = chain.Testnet
	} else {
		cfg.Network = chain.Mainnet
	}

	var store storage.Store = storage.NewFileStore(effectiveDataDir)
	if cfg.Storage.Encrypt {
		passphrase := os.Getenv("BITCLI_PASSPHRASE")
		if passphrase == "" {
			log.Fatal("Encrypted storage enabled but BITCLI_PASSPHRASE is not set")
		}
		store = storage.NewEncryptedFileStore(effectiveDataDir, passphrase)
	}

	app := &app{
		cfg:   cfg,
		store: store,
		log:   log,
	}

	ctx := context.Background()

	var cmdErr error
	switch command {
	case "create":
		cmdErr = app.create()
	case "restore":
		cmdErr = app.restore(args)
	case "address":
		cmdErr = app.address()
	case "mnemonic":
		cmdErr = app.mnemonic()
	case "balance":
		cmdErr = app.balance(ctx)
	case "utxos":
		cmdErr = app.utxos(ctx)
	case "fees":
		cmdErr = app.fees(ctx)
	case "send":
		cmdErr = app.send(ctx, args)
	case "network":
		fmt.Println(cfg.Network)
	case "reset":
		cmdErr = app.reset()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		flag.Usage()
		os.Exit(2)
	}

	if cmdErr != nil {
		exitErr(log, cmdErr)
	}
}

// app holds everything a command needs.
type app struct {
	cfg   *config.Config
	store storage.Store
	log   *logging.Logger
}

// service loads the stored wallet and connects it to the explorer backend.
func (a *app) service() (*wallet.Service, error) {
	w, err := a.loadWallet()
	if err != nil {
		return nil, err
	}

	be, err := a.cfg.NewBackend()
	if err != nil {
		return nil, err
	}

	tier, err := wallet.ParseFeeTier(a.cfg.Fees.Tier)
	if err != nil {
		return nil, err
	}

	return wallet.NewService(&wallet.ServiceConfig{
		Wallet:  w,
		Backend: be,
		Tier:    tier,
		Logger:  a.log,
	})
}

// loadWallet reads the stored mnemonic and derives the wallet from it.
func (a *app) loadWallet() (*wallet.Wallet, error) {
	mnemonic, err := a.store.LoadMnemonic()
	if err != nil {
		return nil, err
	}
	if mnemonic == "" {
		return nil, fmt.Errorf("%w: run 'bitcli create' or 'bitcli restore' first", wallet.ErrNotInitialized)
	}
	return wallet.NewFromMnemonic(mnemonic, a.cfg.Network)
}

func (a *app) create() error {
	if existing, err := a.store.LoadMnemonic(); err != nil {
		return err
	} else if existing != "" {
		return fmt.Errorf("a wallet already exists; run 'bitcli reset' first to discard it")
	}

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		return err
	}

	w, err := wallet.NewFromMnemonic(mnemonic, a.cfg.Network)
	if err != nil {
		return err
	}

	if err := a.store.SaveMnemonic(mnemonic); err != nil {
		return err
	}

	fmt.Println("Wallet created. Write down the mnemonic - it is the only backup:")
	fmt.Println()
	fmt.Printf("  %s\n", mnemonic)
	fmt.Println()
	fmt.Printf("Address: %s\n", w.Address())
	fmt.Printf("Network: %s\n", w.Network())
	return nil
}

func (a *app) restore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	mnemonic := fs.String("mnemonic", "", "BIP39 mnemonic (quoted)")
	fs.Parse(args)

	if *mnemonic == "" {
		return fmt.Errorf("restore requires -mnemonic \"word1 word2 ...\"")
	}
	if !wallet.ValidateMnemonic(*mnemonic) {
		return fmt.Errorf("invalid mnemonic")
	}

	w, err := wallet.NewFromMnemonic(*mnemonic, a.cfg.Network)
	if err != nil {
		return err
	}

	if err := a.store.SaveMnemonic(*mnemonic); err != nil {
		return err
	}

	fmt.Println("Wallet restored.")
	fmt.Printf("Address: %s\n", w.Address())
	fmt.Printf("Network: %s\n", w.Network())
	return nil
}

func (a *app) address() error {
	w, err := a.loadWallet()
	if err != nil {
		return err
	}
	fmt.Println(w.Address())
	return nil
}

func (a *app) mnemonic() error {
	mnemonic, err := a.store.LoadMnemonic()
	if err != nil {
		return err
	}
	if mnemonic == "" {
		return fmt.Errorf("%w: run 'bitcli create' or 'bitcli restore' first", wallet.ErrNotInitialized)
	}
	fmt.Println(mnemonic)
	return nil
}

func (a *app) balance(ctx context.Context) error {
	svc, err := a.service()
	if err != nil {
		return err
	}

	balance, err := svc.Balance(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%d sats (%s BTC)\n", balance, helpers.SatoshisToBTC(balance))
	return nil
}

func (a *app) utxos(ctx context.Context) error {
	svc, err := a.service()
	if err != nil {
		return err
	}

	utxos, err := svc.UTXOs(ctx)
	if err != nil {
		return err
	}

	if len(utxos) == 0 {
		fmt.Println("No unspent outputs.")
		return nil
	}

	var total uint64
	for _, u := range utxos {
		status := "unconfirmed"
		if u.Confirmed {
			status = fmt.Sprintf("confirmed at %d", u.BlockHeight)
		}
		fmt.Printf("%s  %12d sats  %s\n", u.OutPoint(), u.Value, status)
		total += u.Value
	}
	fmt.Printf("total: %d sats (%s BTC) across %d outputs\n", total, helpers.SatoshisToBTC(total), len(utxos))
	return nil
}

func (a *app) fees(ctx context.Context) error {
	svc, err := a.service()
	if err != nil {
		return err
	}

	rates, err := svc.FeeRates(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("high:   %d sat/B\n", rates.High)
	fmt.Printf("medium: %d sat/B\n", rates.Medium)
	fmt.Printf("low:    %d sat/B\n", rates.Low)
	return nil
}

func (a *app) send(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	to := fs.String("to", "", "Recipient address")
	amount := fs.Uint64("amount", 0, "Amount in satoshis")
	btc := fs.String("btc", "", "Amount in BTC (alternative to -amount)")
	tierName := fs.String("tier", "", "Fee tier (low, medium, high; default from config)")
	fs.Parse(args)

	if *btc != "" {
		if *amount != 0 {
			return fmt.Errorf("use either -amount or -btc, not both")
		}
		sats, err := helpers.BTCToSatoshis(*btc)
		if err != nil {
			return fmt.Errorf("invalid -btc amount: %w", err)
		}
		*amount = sats
	}
	if *to == "" || *amount == 0 {
		return fmt.Errorf("send requires -to <address> and -amount <sats> (or -btc <amount>)")
	}

	svc, err := a.service()
	if err != nil {
		return err
	}

	var txid string
	if *tierName != "" {
		tier, err := wallet.ParseFeeTier(*tierName)
		if err != nil {
			return err
		}
		txid, err = svc.SendWithTier(ctx, *to, *amount, tier)
		if err != nil {
			return err
		}
	} else {
		txid, err = svc.Send(ctx, *to, *amount)
		if err != nil {
			return err
		}
	}

	fmt.Printf("txid: %s\n", txid)
	return nil
}

func (a *app) reset() error {
	if err := a.store.Reset(); err != nil {
		return err
	}
	fmt.Println("Wallet deleted. The mnemonic is gone unless you wrote it down.")
	return nil
}

// exitErr reports a command failure and exits non-zero. Explorer rejection
// text is printed verbatim since it is usually actionable.
func exitErr(log *logging.Logger, err error) {
	var bErr *backend.BroadcastError
	switch {
	case errors.As(err, &bErr):
		log.Error("Broadcast rejected", "reason", bErr.Reason)
	case errors.Is(err, wallet.ErrInsufficientFunds):
		log.Error("Insufficient funds", "error", err)
	case errors.Is(err, wallet.ErrNotInitialized):
		log.Error("No wallet", "error", err)
	default:
		log.Error("Command failed", "error", err)
	}
	os.Exit(1)
}
