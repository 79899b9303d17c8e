package pricing

import (
	"github.com/shopspring/decimal"

	"vaultScope/internal/entity"
	"vaultScope/internal/model"
	"vaultScope/internal/snapshot"
)

// counted reports whether token contributes to the pool's liquidity. Pools
// holding their own share token exclude it.
func counted(pool *model.Pool, token string) bool {
	return !(pool.PoolType.HasVirtualSupply() && token == pool.Address)
}

// AddHistoricalLiquidity values the pool in pricingAsset at block and records
// the data point. It reports false when no consistent USD route exists for
// pricingAsset.
func (o *Oracle) AddHistoricalLiquidity(tx *entity.Tx, pool *model.Pool, block uint64, pricingAsset string) (bool, error) {
	poolValue := decimal.Zero
	for _, token := range pool.TokensList {
		if !counted(pool, token) {
			continue
		}
		pt, err := entity.Load[model.PoolToken](tx, entity.PoolTokenID(pool.ID, token))
		if err != nil {
			return false, err
		}
		if pt == nil {
			continue
		}
		if token == pricingAsset {
			poolValue = poolValue.Add(pt.Balance)
			continue
		}
		latest, err := tx.LatestPrice(token, pricingAsset)
		if err != nil {
			return false, err
		}
		if latest != nil {
			poolValue = poolValue.Add(pt.Balance.Mul(latest.Price))
		}
	}

	usd, err := o.ValueInUSD(tx, poolValue, pricingAsset)
	if err != nil {
		return false, err
	}
	v, ok := usd.Get()
	if !ok || (poolValue.IsPositive() && !v.IsPositive()) {
		return false, nil
	}

	shareValue := decimal.Zero
	if pool.TotalShares.IsPositive() {
		shareValue = poolValue.Div(pool.TotalShares)
	}
	tx.Save(&model.PoolHistoricalLiquidity{
		ID:              entity.HistoricalLiquidityID(pool.ID, pricingAsset, block),
		PoolID:          pool.ID,
		PricingAsset:    pricingAsset,
		BlockNumber:     block,
		PoolTotalShares: pool.TotalShares,
		PoolLiquidity:   poolValue,
		PoolShareValue:  shareValue,
	})
	return true, nil
}

// CaptureHistoricalLiquidity records a liquidity point in the first pricing
// asset held by the pool that can be valued.
func (o *Oracle) CaptureHistoricalLiquidity(tx *entity.Tx, pool *model.Pool, block uint64) error {
	for _, asset := range o.priority {
		if pool.TokenIndex(asset) < 0 {
			continue
		}
		ok, err := o.AddHistoricalLiquidity(tx, pool, block, asset)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return nil
}

// UpdatePoolLiquidity recomputes the pool's USD liquidity and moves the
// vault total by the difference.
func (o *Oracle) UpdatePoolLiquidity(tx *entity.Tx, pool *model.Pool, ts uint64) error {
	total := decimal.Zero
	for _, token := range pool.TokensList {
		if !counted(pool, token) {
			continue
		}
		pt, err := entity.Load[model.PoolToken](tx, entity.PoolTokenID(pool.ID, token))
		if err != nil {
			return err
		}
		if pt == nil {
			continue
		}
		value, err := o.ValueInUSD(tx, pt.Balance, token)
		if err != nil {
			return err
		}
		if v, ok := value.Get(); ok {
			total = total.Add(v)
		}
	}

	delta := total.Sub(pool.TotalLiquidity)
	pool.TotalLiquidity = total
	tx.Save(pool)

	vault, err := tx.Vault()
	if err != nil {
		return err
	}
	vault.TotalLiquidity = vault.TotalLiquidity.Add(delta)
	tx.Save(vault)
	if err := snapshot.RefreshVault(tx, vault, ts); err != nil {
		return err
	}
	return snapshot.RefreshPool(tx, pool, ts)
}
