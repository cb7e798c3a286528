package wallet

import (
	"fmt"

	"github.com/ManiReddyt/bitcli/internal/backend"
)

// FeeTier selects which fee rate a send spends at.
type FeeTier string

const (
	TierLow    FeeTier = "low"    // explorer's minimum relay rate
	TierMedium FeeTier = "medium" // ~30 minute confirmation
	TierHigh   FeeTier = "high"   // next-block confirmation
)

// ParseFeeTier parses a tier name, defaulting to high for an empty string.
func ParseFeeTier(s string) (FeeTier, error) {
	switch FeeTier(s) {
	case TierLow, TierMedium, TierHigh:
		return FeeTier(s), nil
	case "":
		return TierHigh, nil
	default:
		return "", fmt.Errorf("unknown fee tier: %q", s)
	}
}

// FeeRates holds fee rates in satoshis per byte. The hour and economy tiers
// reported by the explorer are intentionally unused.
type FeeRates struct {
	Low    uint64
	Medium uint64
	High   uint64
}

// FeeRatesFromEstimate maps explorer tiers onto the wallet's three tiers:
// high=fastest, medium=half-hour, low=minimum.
func FeeRatesFromEstimate(est *backend.FeeEstimate) FeeRates {
	return FeeRates{
		Low:    est.MinimumFee,
		Medium: est.HalfHourFee,
		High:   est.FastestFee,
	}
}

// Rate returns the rate for a tier.
func (f FeeRates) Rate(tier FeeTier) uint64 {
	switch tier {
	case TierLow:
		return f.Low
	case TierMedium:
		return f.Medium
	default:
		return f.High
	}
}

// EstimateTxSize estimates the transaction size in bytes using the legacy
// formula 10 + 148 per input + 34 per output. For SegWit inputs this
// overshoots the virtual size, which builds in a safety margin against fee
// underpayment. Do not "fix" this to a witness-discounted size without
// revisiting the fee invariants.
func EstimateTxSize(inputs, outputs int) uint64 {
	return 10 + 148*uint64(inputs) + 34*uint64(outputs)
}

// EstimateFee returns rate * size. Truncating integer arithmetic; no
// rounding beyond that.
func EstimateFee(rate, size uint64) uint64 {
	return rate * size
}
