package pricing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vaultScope/internal/entity"
	"vaultScope/internal/model"
)

// SwapObservation is a settled swap as seen by the oracle. Balances are the
// pool token balances after the swap.
type SwapObservation struct {
	Pool        *model.Pool
	TokenIn     string
	TokenOut    string
	AmountIn    decimal.Decimal
	AmountOut   decimal.Decimal
	BalanceIn   decimal.Decimal
	BalanceOut  decimal.Decimal
	WeightIn    decimal.NullDecimal
	WeightOut   decimal.NullDecimal
	ValueUSD    decimal.Decimal
	BlockNumber uint64
	Timestamp   uint64
}

// Eligible reports whether the swap is large enough, in a deep enough pool,
// to be trusted as a price sample.
func (o *Oracle) Eligible(obs SwapObservation) bool {
	return obs.Pool.TotalLiquidity.GreaterThan(o.minPool) && obs.ValueUSD.GreaterThan(o.minSwap)
}

// RecordSwapPrices stores a price sample for each side priced by the other
// when that other side is a pricing asset.
func (o *Oracle) RecordSwapPrices(tx *entity.Tx, obs SwapObservation) (int, error) {
	if obs.AmountIn.IsZero() || obs.AmountOut.IsZero() || !o.Eligible(obs) {
		return 0, nil
	}
	recorded := 0
	if o.IsPricingAsset(obs.TokenIn) {
		price := spotPrice(obs.AmountIn, obs.AmountOut, obs.BalanceIn, obs.BalanceOut, obs.WeightIn, obs.WeightOut)
		if err := o.record(tx, obs, obs.TokenOut, obs.TokenIn, obs.AmountOut, price); err != nil {
			return recorded, err
		}
		recorded++
	}
	if o.IsPricingAsset(obs.TokenOut) {
		price := spotPrice(obs.AmountOut, obs.AmountIn, obs.BalanceOut, obs.BalanceIn, obs.WeightOut, obs.WeightIn)
		if err := o.record(tx, obs, obs.TokenIn, obs.TokenOut, obs.AmountIn, price); err != nil {
			return recorded, err
		}
		recorded++
	}
	return recorded, nil
}

// spotPrice is the price of the counter token in units of the pricing token.
// Weighted pools use post-trade balances over weights; everything else the
// traded ratio.
func spotPrice(pricingAmount, otherAmount, pricingBalance, otherBalance decimal.Decimal, pricingWeight, otherWeight decimal.NullDecimal) decimal.Decimal {
	if pricingWeight.Valid && otherWeight.Valid &&
		!pricingWeight.Decimal.IsZero() && !otherWeight.Decimal.IsZero() &&
		!pricingBalance.IsZero() && !otherBalance.IsZero() {
		num := pricingBalance.Div(pricingWeight.Decimal)
		den := otherBalance.Div(otherWeight.Decimal)
		if !den.IsZero() {
			return num.Div(den)
		}
	}
	return pricingAmount.Div(otherAmount)
}

func (o *Oracle) record(tx *entity.Tx, obs SwapObservation, asset, pricingAsset string, amount, price decimal.Decimal) error {
	usd, err := o.ValueInUSD(tx, price, pricingAsset)
	if err != nil {
		return err
	}
	sample := &model.TokenPrice{
		ID:           entity.TokenPriceID(obs.Pool.ID, asset, pricingAsset, obs.BlockNumber),
		PoolID:       obs.Pool.ID,
		Asset:        asset,
		PricingAsset: pricingAsset,
		Amount:       amount,
		Price:        price,
		PriceUSD:     usd.Or(decimal.Zero),
		BlockNumber:  obs.BlockNumber,
		Timestamp:    obs.Timestamp,
	}
	tx.Insert(sample)
	return o.UpdateLatestPrice(tx, obs.Pool.ID, asset, pricingAsset, price, obs.BlockNumber)
}

// UpdateLatestPrice overwrites the latest price of asset in pricingAsset and
// re-derives the asset's USD price. Samples are not weighted; the last one
// wins.
func (o *Oracle) UpdateLatestPrice(tx *entity.Tx, poolID, asset, pricingAsset string, price decimal.Decimal, block uint64) error {
	latest, err := tx.LatestPrice(asset, pricingAsset)
	if err != nil {
		return err
	}
	if latest == nil {
		latest = &model.LatestPrice{
			ID:           entity.LatestPriceID(asset, pricingAsset),
			Asset:        asset,
			PricingAsset: pricingAsset,
		}
	}
	latest.PoolID = poolID
	latest.Price = price
	latest.BlockNumber = block
	tx.Save(latest)

	token, err := tx.TokenByKey(asset)
	if err != nil {
		return err
	}
	token.LatestPrice = latest.ID
	usd, err := o.ValueInUSD(tx, price, pricingAsset)
	if err != nil {
		return err
	}
	if v, ok := usd.Get(); ok && !v.IsZero() {
		token.LatestUSDPrice = decimal.NewNullDecimal(v)
	}
	tx.Save(token)
	o.logger.Debug("latest price updated",
		zap.String("asset", asset),
		zap.String("pricing_asset", pricingAsset),
		zap.String("price", price.String()),
	)
	return nil
}
