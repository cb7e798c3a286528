package wallet

import (
	"errors"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/ManiReddyt/bitcli/internal/chain"
)

// Reference vector: the well-known all-abandon mnemonic and its first BIP84
// receive key at m/84'/0'/0'/0/0.
const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testAddress  = "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"
	testWIF      = "KyZpNDKnfs94vbrwhJneDi77V6jF64PWPF8x5cdJb8ifgg2DUc9d"
)

func TestGenerateMnemonic(t *testing.T) {
	mnemonic, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic() error = %v", err)
	}
	if words := len(strings.Fields(mnemonic)); words != 12 {
		t.Errorf("mnemonic has %d words, want 12", words)
	}
	if !ValidateMnemonic(mnemonic) {
		t.Error("generated mnemonic failed validation")
	}

	// Each call draws fresh entropy
	other, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic() error = %v", err)
	}
	if mnemonic == other {
		t.Error("two generated mnemonics are identical")
	}
}

func TestValidateMnemonic(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		want     bool
	}{
		{"valid vector", testMnemonic, true},
		{"empty", "", false},
		{"wrong word count", "abandon abandon abandon", false},
		{"bad checksum", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", false},
		{"non-wordlist word", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon zzzzz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateMnemonic(tt.mnemonic); got != tt.want {
				t.Errorf("ValidateMnemonic(%q) = %v, want %v", tt.mnemonic, got, tt.want)
			}
		})
	}
}

func TestNewFromMnemonic(t *testing.T) {
	w, err := NewFromMnemonic(testMnemonic, chain.Mainnet)
	if err != nil {
		t.Fatalf("NewFromMnemonic() error = %v", err)
	}

	if w.Address() != testAddress {
		t.Errorf("Address() = %s, want %s", w.Address(), testAddress)
	}
	if w.Network() != chain.Mainnet {
		t.Errorf("Network() = %s, want mainnet", w.Network())
	}

	wif, err := w.WIF()
	if err != nil {
		t.Fatalf("WIF() error = %v", err)
	}
	if wif != testWIF {
		t.Errorf("WIF() = %s, want %s", wif, testWIF)
	}
}

func TestNewFromMnemonicTestnet(t *testing.T) {
	w, err := NewFromMnemonic(testMnemonic, chain.Testnet)
	if err != nil {
		t.Fatalf("NewFromMnemonic() error = %v", err)
	}

	// Coin type stays 0 on testnet, so only the address encoding changes.
	if !strings.HasPrefix(w.Address(), "tb1q") {
		t.Errorf("Address() = %s, want tb1q prefix", w.Address())
	}

	addr, err := btcutil.DecodeAddress(w.Address(), &chaincfg.TestNet3Params)
	if err != nil {
		t.Fatalf("DecodeAddress() error = %v", err)
	}
	if !addr.IsForNet(&chaincfg.TestNet3Params) {
		t.Error("testnet address does not validate for testnet params")
	}
}

func TestNewFromMnemonicErrors(t *testing.T) {
	if _, err := NewFromMnemonic("not a mnemonic", chain.Mainnet); err == nil {
		t.Error("expected error for invalid mnemonic")
	}
	if _, err := NewFromMnemonic(testMnemonic, "dogecoin"); !errors.Is(err, chain.ErrUnsupportedNetwork) {
		t.Errorf("error = %v, want ErrUnsupportedNetwork", err)
	}
}

func TestNewFromPrivateKey(t *testing.T) {
	keyHex := "0000000000000000000000000000000000000000000000000000000000000001"
	w, err := NewFromPrivateKey(keyHex, chain.Mainnet)
	if err != nil {
		t.Fatalf("NewFromPrivateKey() error = %v", err)
	}
	if !strings.HasPrefix(w.Address(), "bc1q") {
		t.Errorf("Address() = %s, want bc1q prefix", w.Address())
	}

	if _, err := NewFromPrivateKey("nothex", chain.Mainnet); !errors.Is(err, ErrSigning) {
		t.Errorf("error = %v, want ErrSigning", err)
	}
	if _, err := NewFromPrivateKey("abcd", chain.Mainnet); !errors.Is(err, ErrSigning) {
		t.Errorf("error for short key = %v, want ErrSigning", err)
	}
	if _, err := NewFromPrivateKey(keyHex, "dogecoin"); !errors.Is(err, chain.ErrUnsupportedNetwork) {
		t.Errorf("error = %v, want ErrUnsupportedNetwork", err)
	}
}

func TestScriptPubKey(t *testing.T) {
	w, err := NewFromMnemonic(testMnemonic, chain.Mainnet)
	if err != nil {
		t.Fatal(err)
	}

	script, err := w.ScriptPubKey()
	if err != nil {
		t.Fatalf("ScriptPubKey() error = %v", err)
	}

	// P2WPKH: OP_0 <20-byte hash>
	if len(script) != 22 || script[0] != 0x00 || script[1] != 0x14 {
		t.Errorf("unexpected P2WPKH script: %x", script)
	}
}

func TestDerivationIsDeterministic(t *testing.T) {
	a, err := NewFromMnemonic(testMnemonic, chain.Mainnet)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewFromMnemonic(testMnemonic, chain.Mainnet)
	if err != nil {
		t.Fatal(err)
	}
	if a.Address() != b.Address() {
		t.Errorf("same mnemonic derived %s and %s", a.Address(), b.Address())
	}
}
