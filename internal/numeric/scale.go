// Package numeric converts raw on-chain integers into decimal amounts.
package numeric

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ShareDecimals is the fixed precision of pool share tokens and fee percentages.
const ShareDecimals = 18

// Zero is the decimal zero.
var Zero = decimal.Zero

// ScaleDown returns raw / 10^decimals without rounding.
func ScaleDown(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// ScaleShares scales a share or fee amount using the fixed 18 decimals.
func ScaleShares(raw *big.Int) decimal.Decimal {
	return ScaleDown(raw, ShareDecimals)
}

// ParseBigInt parses a base-10 integer, optionally signed.
func ParseBigInt(value string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", value)
	}
	return v, nil
}

// ParseBigInts parses every value in order.
func ParseBigInts(values []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		parsed, err := ParseBigInt(v)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = parsed
	}
	return out, nil
}

// Sum adds raw integers.
func Sum(values []*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}
