package wallet

import "errors"

// Wallet errors. Callers distinguish failure kinds with errors.Is rather
// than matching message text.
var (
	// ErrInvalidAddress means the recipient address does not decode or
	// belongs to a different network than the wallet.
	ErrInvalidAddress = errors.New("invalid recipient address")

	// ErrInsufficientFunds means amount + fee exceeds the spendable total.
	// No transaction is constructed.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSigning means the key material could not produce a valid
	// signature. This is fatal and should never occur with a correctly
	// derived key.
	ErrSigning = errors.New("signing failed")

	// ErrUTXOReserved means another in-flight send already holds one of
	// the outputs this send would spend.
	ErrUTXOReserved = errors.New("utxo reserved by another send")

	// ErrNotInitialized means no wallet has been created or restored yet.
	ErrNotInitialized = errors.New("wallet not initialized")
)
