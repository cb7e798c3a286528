// Package chain defines the supported Bitcoin networks and derivation parameters.
// All network-specific values are hardcoded here - no external configuration needed.
package chain

import (
	"errors"

	"github.com/btcsuite/btcd/chaincfg"
)

// Network represents mainnet or testnet.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// ErrUnsupportedNetwork is returned for networks without known parameters
// or explorer endpoints. No API calls are attempted for such networks.
var ErrUnsupportedNetwork = errors.New("unsupported network")

// BIP84 derivation path components for the wallet's single receive key:
// m/84'/0'/0'/0/0. Coin type 0 is used on both networks, matching the
// derivation the wallet has always used (changing it would orphan funds).
const (
	Purpose      uint32 = 84
	CoinType     uint32 = 0
	Account      uint32 = 0
	Change       uint32 = 0
	AddressIndex uint32 = 0
)

// DerivationPath is the string form of the fixed key path.
const DerivationPath = "m/84'/0'/0'/0/0"

// Default explorer API base URLs per network.
const (
	MainnetAPIURL = "https://mempool.space/api"
	TestnetAPIURL = "https://mempool.space/testnet4/api"
)

// Params returns the btcd chain parameters for a network.
func Params(network Network) (*chaincfg.Params, error) {
	switch network {
	case Mainnet:
		return &chaincfg.MainNetParams, nil
	case Testnet:
		return &chaincfg.TestNet3Params, nil
	default:
		return nil, ErrUnsupportedNetwork
	}
}

// DefaultAPIURL returns the default explorer base URL for a network.
func DefaultAPIURL(network Network) (string, error) {
	switch network {
	case Mainnet:
		return MainnetAPIURL, nil
	case Testnet:
		return TestnetAPIURL, nil
	default:
		return "", ErrUnsupportedNetwork
	}
}

// Valid reports whether the network is one of the supported values.
func Valid(network Network) bool {
	return network == Mainnet || network == Testnet
}
