// Package poolparams refreshes pool parameters that live only in contract
// state: normalized weights and the amplification factor.
package poolparams

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"vaultScope/internal/entity"
	"vaultScope/internal/model"
	"vaultScope/internal/numeric"
)

// RefreshWeights reads normalized weights and stores them on the pool
// tokens. It reports false when the weights are unavailable.
func RefreshWeights(tx *entity.Tx, pool *model.Pool) (bool, error) {
	weights, ok := tx.Reader().NormalizedWeights(tx.Context(), common.HexToAddress(pool.Address)).Get()
	if !ok || len(weights) != len(pool.TokensList) {
		return false, nil
	}
	total := decimal.Zero
	for i, token := range pool.TokensList {
		pt, err := tx.PoolToken(pool.ID, token)
		if err != nil {
			return false, err
		}
		w := numeric.ScaleShares(weights[i])
		pt.Weight = decimal.NewNullDecimal(w)
		total = total.Add(w)
		tx.Save(pt)
	}
	pool.TotalWeight = total
	tx.Save(pool)
	return true, nil
}

// RefreshAmp reads the amplification factor. It reports false when the
// value is unavailable.
func RefreshAmp(tx *entity.Tx, pool *model.Pool) bool {
	amp, ok := tx.Reader().Amplification(tx.Context(), common.HexToAddress(pool.Address)).Get()
	if !ok {
		return false
	}
	pool.Amp = amp
	tx.Save(pool)
	return true
}
