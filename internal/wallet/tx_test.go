package wallet

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/wire"

	"github.com/ManiReddyt/bitcli/internal/backend"
	"github.com/ManiReddyt/bitcli/internal/chain"
)

const testTxID = "aa00000000000000000000000000000000000000000000000000000000000001"

func testWallet(t *testing.T, network chain.Network) *Wallet {
	t.Helper()
	w, err := NewFromMnemonic(testMnemonic, network)
	if err != nil {
		t.Fatalf("NewFromMnemonic() error = %v", err)
	}
	return w
}

// recipient is a second wallet on the same network, so tests have a valid
// destination address that is not the sender's own.
func testRecipient(t *testing.T, network chain.Network) string {
	t.Helper()
	w, err := NewFromPrivateKey(
		"0000000000000000000000000000000000000000000000000000000000000001", network)
	if err != nil {
		t.Fatalf("NewFromPrivateKey() error = %v", err)
	}
	return w.Address()
}

func TestBuildTx(t *testing.T) {
	w := testWallet(t, chain.Mainnet)
	to := testRecipient(t, chain.Mainnet)

	utxos := []backend.UTXO{{TxID: testTxID, Vout: 0, Value: 100_000, Confirmed: true}}

	// size 226 at 10 sat/B: fee 2260, change 47740
	tx, err := w.BuildTx(to, 50_000, utxos, 10)
	if err != nil {
		t.Fatalf("BuildTx() error = %v", err)
	}

	if tx.Version != 2 {
		t.Errorf("version = %d, want 2", tx.Version)
	}
	if tx.LockTime != 0 {
		t.Errorf("locktime = %d, want 0", tx.LockTime)
	}
	if len(tx.TxIn) != 1 {
		t.Fatalf("inputs = %d, want 1", len(tx.TxIn))
	}
	if tx.TxIn[0].Sequence != wire.MaxTxInSequenceNum-2 {
		t.Errorf("sequence = %x, want %x (RBF)", tx.TxIn[0].Sequence, wire.MaxTxInSequenceNum-2)
	}
	if len(tx.TxOut) != 2 {
		t.Fatalf("outputs = %d, want 2", len(tx.TxOut))
	}
	if tx.TxOut[0].Value != 50_000 {
		t.Errorf("payment output = %d, want 50000", tx.TxOut[0].Value)
	}
	if tx.TxOut[1].Value != 47_740 {
		t.Errorf("change output = %d, want 47740", tx.TxOut[1].Value)
	}

	// Change pays back to the wallet's own script
	walletScript, _ := w.ScriptPubKey()
	if !bytes.Equal(tx.TxOut[1].PkScript, walletScript) {
		t.Error("change output does not pay to the wallet's script")
	}
}

func TestBuildTxMultipleInputs(t *testing.T) {
	w := testWallet(t, chain.Mainnet)
	to := testRecipient(t, chain.Mainnet)

	utxos := []backend.UTXO{
		{TxID: testTxID, Vout: 0, Value: 60_000},
		{TxID: testTxID, Vout: 1, Value: 40_000},
	}

	// size 374 at 5 sat/B: fee 1870, change 100000 - 70000 - 1870 = 28130
	tx, err := w.BuildTx(to, 70_000, utxos, 5)
	if err != nil {
		t.Fatalf("BuildTx() error = %v", err)
	}
	if len(tx.TxIn) != 2 {
		t.Fatalf("inputs = %d, want 2", len(tx.TxIn))
	}
	// Input order matches UTXO order
	if tx.TxIn[0].PreviousOutPoint.Index != 0 || tx.TxIn[1].PreviousOutPoint.Index != 1 {
		t.Error("inputs are not in UTXO order")
	}
	if tx.TxOut[1].Value != 28_130 {
		t.Errorf("change output = %d, want 28130", tx.TxOut[1].Value)
	}
}

func TestBuildTxZeroChange(t *testing.T) {
	w := testWallet(t, chain.Mainnet)
	to := testRecipient(t, chain.Mainnet)

	// Inputs exactly cover amount + fee; the zero-value change output is
	// still emitted.
	utxos := []backend.UTXO{{TxID: testTxID, Vout: 0, Value: 52_260}}
	tx, err := w.BuildTx(to, 50_000, utxos, 10)
	if err != nil {
		t.Fatalf("BuildTx() error = %v", err)
	}
	if len(tx.TxOut) != 2 {
		t.Fatalf("outputs = %d, want 2", len(tx.TxOut))
	}
	if tx.TxOut[1].Value != 0 {
		t.Errorf("change output = %d, want 0", tx.TxOut[1].Value)
	}
}

func TestBuildTxInsufficientFunds(t *testing.T) {
	w := testWallet(t, chain.Mainnet)
	to := testRecipient(t, chain.Mainnet)

	utxos := []backend.UTXO{{TxID: testTxID, Vout: 0, Value: 100_000}}

	// 99000 + 2260 > 100000
	_, err := w.BuildTx(to, 99_000, utxos, 10)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("BuildTx() error = %v, want ErrInsufficientFunds", err)
	}
	if err != nil && !strings.Contains(err.Error(), "fee 2260") {
		t.Errorf("error should report the fee, got: %v", err)
	}

	// Empty UTXO set
	_, err = w.BuildTx(to, 1, nil, 10)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("BuildTx() with no utxos error = %v, want ErrInsufficientFunds", err)
	}
}

func TestBuildTxAmountOverflow(t *testing.T) {
	w := testWallet(t, chain.Mainnet)
	to := testRecipient(t, chain.Mainnet)
	utxos := []backend.UTXO{{TxID: testTxID, Vout: 0, Value: 100_000}}

	// amount + fee wraps around uint64; the funds check must still fail
	// rather than emit a negative payment output.
	tests := []struct {
		name    string
		amount  uint64
		feeRate uint64
	}{
		{"max amount", math.MaxUint64, 10},
		{"amount wraps past total", math.MaxUint64 - 1_000, 10},
		{"fee wraps past total", 50_000, math.MaxUint64 / 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := w.BuildTx(to, tt.amount, utxos, tt.feeRate)
			if !errors.Is(err, ErrInsufficientFunds) {
				t.Fatalf("BuildTx() error = %v, want ErrInsufficientFunds", err)
			}
			if tx != nil {
				t.Error("BuildTx() returned a transaction alongside the error")
			}
		})
	}
}

func TestBuildTxInsufficientFundsBeforeAddressCheck(t *testing.T) {
	w := testWallet(t, chain.Mainnet)

	utxos := []backend.UTXO{{TxID: testTxID, Vout: 0, Value: 1_000}}

	// Funds are checked before the recipient address is decoded.
	_, err := w.BuildTx("not-an-address", 1_000_000, utxos, 10)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("BuildTx() error = %v, want ErrInsufficientFunds", err)
	}
}

func TestBuildTxInvalidAddress(t *testing.T) {
	w := testWallet(t, chain.Mainnet)
	utxos := []backend.UTXO{{TxID: testTxID, Vout: 0, Value: 100_000}}

	_, err := w.BuildTx("garbage", 50_000, utxos, 10)
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("BuildTx() error = %v, want ErrInvalidAddress", err)
	}
}

func TestBuildTxWrongNetworkAddress(t *testing.T) {
	w := testWallet(t, chain.Testnet)
	mainnetAddr := testRecipient(t, chain.Mainnet)
	utxos := []backend.UTXO{{TxID: testTxID, Vout: 0, Value: 100_000}}

	_, err := w.BuildTx(mainnetAddr, 50_000, utxos, 10)
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("BuildTx() error = %v, want ErrInvalidAddress", err)
	}
}

func TestBuildTxDeterministic(t *testing.T) {
	w := testWallet(t, chain.Mainnet)
	to := testRecipient(t, chain.Mainnet)
	utxos := []backend.UTXO{
		{TxID: testTxID, Vout: 0, Value: 60_000},
		{TxID: testTxID, Vout: 1, Value: 40_000},
	}

	a, err := w.BuildTx(to, 50_000, utxos, 10)
	if err != nil {
		t.Fatal(err)
	}
	b, err := w.BuildTx(to, 50_000, utxos, 10)
	if err != nil {
		t.Fatal(err)
	}

	ha, _ := SerializeTx(a)
	hb, _ := SerializeTx(b)
	if ha != hb {
		t.Error("identical inputs produced different unsigned transactions")
	}
}

func TestSignTx(t *testing.T) {
	w := testWallet(t, chain.Mainnet)
	to := testRecipient(t, chain.Mainnet)
	utxos := []backend.UTXO{
		{TxID: testTxID, Vout: 0, Value: 60_000},
		{TxID: testTxID, Vout: 1, Value: 40_000},
	}

	tx, err := w.BuildTx(to, 50_000, utxos, 10)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.SignTx(tx, utxos); err != nil {
		t.Fatalf("SignTx() error = %v", err)
	}

	for i, txIn := range tx.TxIn {
		if len(txIn.Witness) != 2 {
			t.Fatalf("input %d witness items = %d, want 2", i, len(txIn.Witness))
		}
		sig := txIn.Witness[0]
		if len(sig) < 9 || len(sig) > 73 {
			t.Errorf("input %d signature length = %d", i, len(sig))
		}
		if sig[len(sig)-1] != 0x01 { // SIGHASH_ALL
			t.Errorf("input %d sighash byte = %x, want 01", i, sig[len(sig)-1])
		}
		if len(txIn.Witness[1]) != 33 {
			t.Errorf("input %d pubkey length = %d, want 33", i, len(txIn.Witness[1]))
		}
	}
}

func TestSignTxUTXOMismatch(t *testing.T) {
	w := testWallet(t, chain.Mainnet)
	to := testRecipient(t, chain.Mainnet)
	utxos := []backend.UTXO{{TxID: testTxID, Vout: 0, Value: 100_000}}

	tx, err := w.BuildTx(to, 50_000, utxos, 10)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.SignTx(tx, nil); !errors.Is(err, ErrSigning) {
		t.Errorf("SignTx() with mismatched utxos error = %v, want ErrSigning", err)
	}
}

func TestSerializeTxRoundTrip(t *testing.T) {
	w := testWallet(t, chain.Mainnet)
	to := testRecipient(t, chain.Mainnet)
	utxos := []backend.UTXO{{TxID: testTxID, Vout: 0, Value: 100_000}}

	tx, err := w.BuildTx(to, 50_000, utxos, 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SignTx(tx, utxos); err != nil {
		t.Fatal(err)
	}

	rawHex, err := SerializeTx(tx)
	if err != nil {
		t.Fatalf("SerializeTx() error = %v", err)
	}

	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		t.Fatalf("serialized tx is not valid hex: %v", err)
	}

	var decoded wire.MsgTx
	if err := decoded.Deserialize(bytes.NewReader(raw)); err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if decoded.TxHash() != tx.TxHash() {
		t.Error("round-tripped transaction hash differs")
	}
}
