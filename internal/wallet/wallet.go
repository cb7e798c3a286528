// Package wallet provides a single-key BIP84 wallet: key derivation from a
// BIP39 mnemonic, P2WPKH address encoding, and the transaction construction,
// signing and broadcast pipeline.
package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/tyler-smith/go-bip39"

	"github.com/ManiReddyt/bitcli/internal/chain"
)

// Wallet holds the key material for a single P2WPKH receive address.
// All fields are set at construction and never mutated, so a Wallet is safe
// for concurrent use.
type Wallet struct {
	privKey *btcec.PrivateKey
	pubKey  *btcec.PublicKey
	network chain.Network
	address *btcutil.AddressWitnessPubKeyHash
}

// GenerateMnemonic generates a new 12-word BIP39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128) // 128 bits = 12 words
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic is valid.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// NewFromMnemonic creates a wallet from a BIP39 mnemonic, deriving the key
// at m/84'/0'/0'/0/0. The master key is always derived with mainnet params;
// only address encoding depends on the configured network.
func NewFromMnemonic(mnemonic string, network chain.Network) (*Wallet, error) {
	if !chain.Valid(network) {
		return nil, chain.ErrUnsupportedNetwork
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, "")

	masterKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	// m/84'/0'/0'/0/0
	path := []uint32{
		hdkeychain.HardenedKeyStart + chain.Purpose,
		hdkeychain.HardenedKeyStart + chain.CoinType,
		hdkeychain.HardenedKeyStart + chain.Account,
		chain.Change,
		chain.AddressIndex,
	}

	key := masterKey
	for _, step := range path {
		key, err = key.Derive(step)
		if err != nil {
			return nil, fmt.Errorf("failed to derive key at %s: %w", chain.DerivationPath, err)
		}
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get private key: %w", err)
	}

	return newFromKey(privKey, network)
}

// NewFromPrivateKey creates a wallet from a hex-encoded 32-byte private key.
func NewFromPrivateKey(keyHex string, network chain.Network) (*Wallet, error) {
	if !chain.Valid(network) {
		return nil, chain.ErrUnsupportedNetwork
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: private key is not valid hex: %v", ErrSigning, err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("%w: private key must be 32 bytes, got %d", ErrSigning, len(keyBytes))
	}

	privKey, _ := btcec.PrivKeyFromBytes(keyBytes)
	return newFromKey(privKey, network)
}

func newFromKey(privKey *btcec.PrivateKey, network chain.Network) (*Wallet, error) {
	params, err := chain.Params(network)
	if err != nil {
		return nil, err
	}

	pubKey := privKey.PubKey()
	pubKeyHash := btcutil.Hash160(pubKey.SerializeCompressed())
	address, err := btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create P2WPKH address: %w", err)
	}

	return &Wallet{
		privKey: privKey,
		pubKey:  pubKey,
		network: network,
		address: address,
	}, nil
}

// Network returns the wallet's network.
func (w *Wallet) Network() chain.Network {
	return w.network
}

// Address returns the wallet's bech32 P2WPKH receive address.
func (w *Wallet) Address() string {
	return w.address.EncodeAddress()
}

// ScriptPubKey returns the output script paying to the wallet's address.
// This same script doubles as the BIP143 scriptCode when signing P2WPKH
// inputs owned by the wallet.
func (w *Wallet) ScriptPubKey() ([]byte, error) {
	return txscript.PayToAddrScript(w.address)
}

// WIF returns the wallet's private key in Wallet Import Format.
func (w *Wallet) WIF() (string, error) {
	params, err := chain.Params(w.network)
	if err != nil {
		return "", err
	}
	wif, err := btcutil.NewWIF(w.privKey, params, true)
	if err != nil {
		return "", fmt.Errorf("failed to encode WIF: %w", err)
	}
	return wif.String(), nil
}
