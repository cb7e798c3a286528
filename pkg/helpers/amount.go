// Package helpers provides common utility functions used across the codebase.
package helpers

import (
	"fmt"
	"math/big"
)

// btcDecimals is the number of decimal places in a bitcoin amount.
const btcDecimals = 8

// SatoshisToBTC formats a satoshi amount as a BTC decimal string.
// For example, SatoshisToBTC(150000000) returns "1.5".
func SatoshisToBTC(satoshis uint64) string {
	amount := new(big.Int).SetUint64(satoshis)
	divisor := big.NewInt(100000000)

	whole := new(big.Int).Div(amount, divisor)
	frac := new(big.Int).Mod(amount, divisor)

	if frac.Sign() == 0 {
		return whole.String()
	}

	fracStr := fmt.Sprintf("%0*d", btcDecimals, frac)
	// Trim trailing zeros
	for len(fracStr) > 0 && fracStr[len(fracStr)-1] == '0' {
		fracStr = fracStr[:len(fracStr)-1]
	}

	return fmt.Sprintf("%s.%s", whole.String(), fracStr)
}

// BTCToSatoshis parses a BTC decimal string to satoshis.
// For example, BTCToSatoshis("0.001") returns 100000.
func BTCToSatoshis(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty amount string")
	}

	var wholeStr, fracStr string
	for i, c := range s {
		if c == '.' {
			wholeStr = s[:i]
			fracStr = s[i+1:]
			break
		}
	}
	if wholeStr == "" && fracStr == "" {
		wholeStr = s
	}

	for _, c := range wholeStr {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid character in amount: %c", c)
		}
	}
	for _, c := range fracStr {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid character in amount: %c", c)
		}
	}

	// Pad or truncate fractional part to 8 digits
	for len(fracStr) < btcDecimals {
		fracStr += "0"
	}
	if len(fracStr) > btcDecimals {
		fracStr = fracStr[:btcDecimals]
	}

	combined := wholeStr + fracStr
	amount := new(big.Int)
	if _, ok := amount.SetString(combined, 10); !ok {
		return 0, fmt.Errorf("invalid amount: %s", s)
	}

	if !amount.IsUint64() {
		return 0, fmt.Errorf("amount overflow: %s", s)
	}

	return amount.Uint64(), nil
}
