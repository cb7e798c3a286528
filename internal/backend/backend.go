// Package backend provides block-explorer API clients for fetching chain data
// and broadcasting transactions. This package is read-only for private keys -
// all signing happens in the wallet package.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// Common errors. Callers match with errors.Is; BroadcastError additionally
// carries the explorer's rejection text and is matched with errors.As.
var (
	ErrNetwork         = errors.New("network request failed")
	ErrDecode          = errors.New("malformed explorer response")
	ErrRateLimited     = errors.New("rate limited")
	ErrBroadcastFailed = errors.New("broadcast failed")
)

// BroadcastError is returned when the explorer rejects a transaction.
// Reason is the raw response body (e.g. "min relay fee not met") - it is
// often actionable, so it is surfaced verbatim.
type BroadcastError struct {
	Reason string
}

func (e *BroadcastError) Error() string {
	return fmt.Sprintf("broadcast failed: %s", e.Reason)
}

func (e *BroadcastError) Unwrap() error {
	return ErrBroadcastFailed
}

// Type represents the backend flavor.
type Type string

const (
	TypeMempool Type = "mempool" // mempool.space API
	TypeEsplora Type = "esplora" // blockstream.info API
)

// UTXO represents an unspent transaction output as reported by the explorer.
// Entries are not pre-filtered: everything returned is unspent per the
// explorer's current view and must be refetched before every spend.
type UTXO struct {
	TxID        string `json:"txid"`
	Vout        uint32 `json:"vout"`
	Value       uint64 `json:"value"` // satoshis
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int64  `json:"block_height,omitempty"`
}

// OutPoint returns the canonical txid:vout identifier.
func (u UTXO) OutPoint() string {
	return fmt.Sprintf("%s:%d", u.TxID, u.Vout)
}

// AddressInfo contains the confirmed funding totals for an address.
type AddressInfo struct {
	Address   string `json:"address"`
	FundedSum uint64 `json:"funded_txo_sum"`
	SpentSum  uint64 `json:"spent_txo_sum"`
	TxCount   int64  `json:"tx_count"`
	Balance   uint64 `json:"balance"` // FundedSum - SpentSum
}

// FeeEstimate contains fee rates for different confirmation targets, in
// satoshis per byte.
type FeeEstimate struct {
	FastestFee  uint64 `json:"fastest_fee"`
	HalfHourFee uint64 `json:"half_hour_fee"`
	HourFee     uint64 `json:"hour_fee"`
	EconomyFee  uint64 `json:"economy_fee"`
	MinimumFee  uint64 `json:"minimum_fee"`
}

// Backend defines the explorer operations the wallet consumes.
type Backend interface {
	// Type returns the backend flavor (mempool, esplora).
	Type() Type

	// GetAddressInfo returns confirmed funding totals for an address.
	GetAddressInfo(ctx context.Context, address string) (*AddressInfo, error)

	// GetAddressUTXOs returns the current unspent outputs for an address.
	GetAddressUTXOs(ctx context.Context, address string) ([]UTXO, error)

	// GetFeeEstimates returns current fee rates.
	GetFeeEstimates(ctx context.Context) (*FeeEstimate, error)

	// GetBlockHeight returns the current chain tip height.
	GetBlockHeight(ctx context.Context) (int64, error)

	// BroadcastTransaction submits a hex-encoded raw transaction and
	// returns the accepted txid.
	BroadcastTransaction(ctx context.Context, rawTxHex string) (string, error)
}

// Config contains backend configuration.
type Config struct {
	Type       Type   `yaml:"type"`
	MainnetURL string `yaml:"mainnet"`
	TestnetURL string `yaml:"testnet"`
	Timeout    int    `yaml:"timeout,omitempty"` // seconds, default 30
}

// DefaultConfig returns the default backend configuration.
func DefaultConfig() *Config {
	return &Config{
		Type:       TypeMempool,
		MainnetURL: "https://mempool.space/api",
		TestnetURL: "https://mempool.space/testnet4/api",
	}
}

// New creates a backend from a base URL and flavor.
func New(backendType Type, baseURL string) (Backend, error) {
	switch backendType {
	case TypeMempool, "":
		return NewMempoolBackend(baseURL), nil
	case TypeEsplora:
		return NewEsploraBackend(baseURL), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}
