// Transaction building and signing for wallet operations.
package wallet

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ManiReddyt/bitcli/internal/backend"
	"github.com/ManiReddyt/bitcli/internal/chain"
)

// rbfSequence signals replace-by-fee eligibility with no relative locktime.
const rbfSequence = wire.MaxTxInSequenceNum - 2

// BuildTx assembles an unsigned transaction paying amount satoshis to the
// recipient, spending every provided UTXO and returning the remainder to the
// wallet's own address. The result always carries exactly two outputs:
// payment at index 0 and change at index 1. A zero-value change output is
// emitted when the inputs exactly cover amount plus fee.
//
// The fee is feeRate * EstimateTxSize(len(utxos), 2). If amount + fee
// exceeds the input total, ErrInsufficientFunds is returned and no
// transaction is produced.
func (w *Wallet) BuildTx(to string, amount uint64, utxos []backend.UTXO, feeRate uint64) (*wire.MsgTx, error) {
	fee := EstimateFee(feeRate, EstimateTxSize(len(utxos), 2))

	var totalIn uint64
	for _, utxo := range utxos {
		totalIn += utxo.Value
	}

	// Compared without computing amount+fee, which can wrap for huge amounts.
	if amount > totalIn || fee > totalIn-amount {
		return nil, fmt.Errorf("%w: amount %d + fee %d exceeds %d sats available",
			ErrInsufficientFunds, amount, fee, totalIn)
	}
	change := totalIn - amount - fee

	destScript, err := w.recipientScript(to)
	if err != nil {
		return nil, err
	}

	walletScript, err := w.ScriptPubKey()
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(2)
	tx.LockTime = 0

	for _, utxo := range utxos {
		txHash, err := chainhash.NewHashFromStr(utxo.TxID)
		if err != nil {
			return nil, fmt.Errorf("invalid txid %s: %w", utxo.TxID, err)
		}
		txIn := wire.NewTxIn(wire.NewOutPoint(txHash, utxo.Vout), nil, nil)
		txIn.Sequence = rbfSequence
		tx.AddTxIn(txIn)
	}

	tx.AddTxOut(wire.NewTxOut(int64(amount), destScript))
	tx.AddTxOut(wire.NewTxOut(int64(change), walletScript))

	return tx, nil
}

// recipientScript decodes the recipient address and returns its output
// script. The address must belong to the wallet's configured network.
func (w *Wallet) recipientScript(to string) ([]byte, error) {
	params, err := chain.Params(w.network)
	if err != nil {
		return nil, err
	}

	addr, err := btcutil.DecodeAddress(to, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if !addr.IsForNet(params) {
		return nil, fmt.Errorf("%w: %s is not a %s address", ErrInvalidAddress, to, w.network)
	}

	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return script, nil
}

// SignTx signs every input of tx in place. utxos must be the same slice the
// transaction was built from: input i spends utxos[i], and the signer relies
// on that positional correspondence for the BIP143 value commitment.
//
// Each witness ends up as [DER signature + sighash byte, compressed pubkey].
// Signing is all-or-nothing: the first failure aborts and the caller must
// discard the transaction.
func (w *Wallet) SignTx(tx *wire.MsgTx, utxos []backend.UTXO) error {
	if len(tx.TxIn) != len(utxos) {
		return fmt.Errorf("%w: %d inputs but %d utxos", ErrSigning, len(tx.TxIn), len(utxos))
	}

	walletScript, err := w.ScriptPubKey()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSigning, err)
	}

	// All inputs spend outputs paying to the wallet's own script.
	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(utxos))
	for i, utxo := range utxos {
		prevOuts[tx.TxIn[i].PreviousOutPoint] = wire.NewTxOut(int64(utxo.Value), walletScript)
	}
	fetcher := txscript.NewMultiPrevOutFetcher(prevOuts)
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	for i, utxo := range utxos {
		witness, err := txscript.WitnessSignature(
			tx,
			sigHashes,
			i,
			int64(utxo.Value),
			walletScript,
			txscript.SigHashAll,
			w.privKey,
			true, // compressed
		)
		if err != nil {
			return fmt.Errorf("%w: input %d: %v", ErrSigning, i, err)
		}
		tx.TxIn[i].Witness = witness
	}

	return nil
}

// SerializeTx serializes a transaction to its hex-encoded consensus form,
// ready for broadcast.
func SerializeTx(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}
