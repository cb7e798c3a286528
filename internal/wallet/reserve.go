package wallet

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ManiReddyt/bitcli/internal/backend"
)

// reservations is an in-memory lease over outpoints, held for the
// build-to-broadcast window of a send. It closes the double-spend window
// between overlapping sends in one process; it offers no protection against
// external spends of the same outputs.
type reservations struct {
	mu     sync.Mutex
	leases map[string]string // outpoint -> lease ID
}

func newReservations() *reservations {
	return &reservations{leases: make(map[string]string)}
}

// reserve leases every outpoint in utxos atomically and returns the lease
// ID. If any outpoint is already leased, nothing is reserved and
// ErrUTXOReserved is returned.
func (r *reservations) reserve(utxos []backend.UTXO) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, utxo := range utxos {
		if _, held := r.leases[utxo.OutPoint()]; held {
			return "", fmt.Errorf("%w: %s", ErrUTXOReserved, utxo.OutPoint())
		}
	}

	lease := uuid.NewString()
	for _, utxo := range utxos {
		r.leases[utxo.OutPoint()] = lease
	}
	return lease, nil
}

// release drops every outpoint held under the lease.
func (r *reservations) release(lease string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for outpoint, held := range r.leases {
		if held == lease {
			delete(r.leases, outpoint)
		}
	}
}

// held reports whether an outpoint is currently leased.
func (r *reservations) held(outpoint string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.leases[outpoint]
	return ok
}
