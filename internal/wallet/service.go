// Package wallet - send orchestration over the explorer backend.
package wallet

import (
	"context"
	"fmt"

	"github.com/ManiReddyt/bitcli/internal/backend"
	"github.com/ManiReddyt/bitcli/internal/chain"
	"github.com/ManiReddyt/bitcli/pkg/logging"
)

// Service ties a wallet to an explorer backend and runs the send pipeline:
// fetch UTXOs -> reserve -> fetch fees -> build -> sign -> broadcast.
type Service struct {
	wallet   *Wallet
	backend  backend.Backend
	tier     FeeTier
	reserved *reservations
	log      *logging.Logger
}

// ServiceConfig holds configuration for the wallet service.
type ServiceConfig struct {
	Wallet  *Wallet
	Backend backend.Backend
	Tier    FeeTier
	Logger  *logging.Logger
}

// NewService creates a new wallet service.
func NewService(cfg *ServiceConfig) (*Service, error) {
	if cfg == nil || cfg.Wallet == nil {
		return nil, ErrNotInitialized
	}
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend required")
	}

	tier := cfg.Tier
	if tier == "" {
		tier = TierHigh
	}

	log := cfg.Logger
	if log == nil {
		log = logging.GetDefault()
	}

	return &Service{
		wallet:   cfg.Wallet,
		backend:  cfg.Backend,
		tier:     tier,
		reserved: newReservations(),
		log:      log,
	}, nil
}

// Wallet returns the underlying wallet.
func (s *Service) Wallet() *Wallet {
	return s.wallet
}

// Network returns the wallet's network.
func (s *Service) Network() chain.Network {
	return s.wallet.Network()
}

// Balance returns the confirmed balance of the wallet address in satoshis.
func (s *Service) Balance(ctx context.Context) (uint64, error) {
	info, err := s.backend.GetAddressInfo(ctx, s.wallet.Address())
	if err != nil {
		return 0, err
	}
	return info.Balance, nil
}

// UTXOs returns the current unspent outputs of the wallet address. Results
// are never cached: every send refetches so it reflects the latest known
// chain state.
func (s *Service) UTXOs(ctx context.Context) ([]backend.UTXO, error) {
	return s.backend.GetAddressUTXOs(ctx, s.wallet.Address())
}

// FeeRates returns the current fee rates mapped onto the wallet's tiers.
func (s *Service) FeeRates(ctx context.Context) (FeeRates, error) {
	est, err := s.backend.GetFeeEstimates(ctx)
	if err != nil {
		return FeeRates{}, err
	}
	return FeeRatesFromEstimate(est), nil
}

// Send pays amount satoshis to the recipient address and returns the
// accepted txid.
//
// The pipeline is strictly sequential and non-restartable: fetch UTXOs,
// reserve their outpoints, fetch fee rates, build, sign, broadcast. The
// first failure aborts with no side effects beyond the failed network call
// itself; the reservation is released on every exit path. A failed send is
// retried only by calling Send again, which refetches everything.
func (s *Service) Send(ctx context.Context, to string, amount uint64) (string, error) {
	return s.SendWithTier(ctx, to, amount, s.tier)
}

// SendWithTier is Send with an explicit fee tier.
func (s *Service) SendWithTier(ctx context.Context, to string, amount uint64, tier FeeTier) (string, error) {
	utxos, err := s.backend.GetAddressUTXOs(ctx, s.wallet.Address())
	if err != nil {
		return "", err
	}

	lease, err := s.reserved.reserve(utxos)
	if err != nil {
		return "", err
	}
	defer s.reserved.release(lease)

	rates, err := s.FeeRates(ctx)
	if err != nil {
		return "", err
	}
	feeRate := rates.Rate(tier)

	s.log.Debug("building transaction",
		"lease", lease, "utxos", len(utxos), "amount", amount, "tier", tier, "rate", feeRate)

	tx, err := s.wallet.BuildTx(to, amount, utxos, feeRate)
	if err != nil {
		return "", err
	}

	if err := s.wallet.SignTx(tx, utxos); err != nil {
		return "", err
	}

	rawHex, err := SerializeTx(tx)
	if err != nil {
		return "", err
	}

	txid, err := s.backend.BroadcastTransaction(ctx, rawHex)
	if err != nil {
		return "", err
	}

	s.log.Info("transaction broadcast", "txid", txid, "to", to, "amount", amount)
	return txid, nil
}
