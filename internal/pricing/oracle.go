// Package pricing derives USD valuations and price samples from swaps.
package pricing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vaultScope/internal/entity"
	"vaultScope/internal/model"
	"vaultScope/internal/opt"
)

var (
	DefaultMinPoolLiquidity = decimal.NewFromInt(2000)
	DefaultMinSwapValueUSD  = decimal.NewFromInt(1)
)

// Config lists the assets that anchor prices, in priority order within
// each list, plus the thresholds a swap must pass to produce a price.
type Config struct {
	StableAssets     []string
	PricingAssets    []string
	MinPoolLiquidity decimal.Decimal
	MinSwapValueUSD  decimal.Decimal
}

// Oracle values amounts in USD through chains of observed prices.
type Oracle struct {
	priority []string
	stable   map[string]struct{}
	pricing  map[string]struct{}
	minPool  decimal.Decimal
	minSwap  decimal.Decimal
	logger   *zap.Logger
}

// New builds an oracle. Stable assets are consulted before other pricing
// assets.
func New(cfg Config, logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Oracle{
		stable:  make(map[string]struct{}),
		pricing: make(map[string]struct{}),
		minPool: cfg.MinPoolLiquidity,
		minSwap: cfg.MinSwapValueUSD,
		logger:  logger,
	}
	for _, a := range cfg.StableAssets {
		o.add(a)
		o.stable[a] = struct{}{}
	}
	for _, a := range cfg.PricingAssets {
		o.add(a)
	}
	return o
}

func (o *Oracle) add(asset string) {
	if _, ok := o.pricing[asset]; ok {
		return
	}
	o.pricing[asset] = struct{}{}
	o.priority = append(o.priority, asset)
}

// PricingAssets returns every pricing asset in priority order.
func (o *Oracle) PricingAssets() []string {
	out := make([]string, len(o.priority))
	copy(out, o.priority)
	return out
}

func (o *Oracle) IsUSDStable(asset string) bool {
	_, ok := o.stable[asset]
	return ok
}

func (o *Oracle) IsPricingAsset(asset string) bool {
	_, ok := o.pricing[asset]
	return ok
}

// PreferentialPricingAsset returns the highest priority pricing asset among
// assets.
func (o *Oracle) PreferentialPricingAsset(assets []string) (string, bool) {
	for _, candidate := range o.priority {
		for _, a := range assets {
			if a == candidate {
				return candidate, true
			}
		}
	}
	return "", false
}

// SwapPricingAsset prefers the input token, then the output token.
func (o *Oracle) SwapPricingAsset(tokenIn, tokenOut string) (string, bool) {
	if o.IsPricingAsset(tokenIn) {
		return tokenIn, true
	}
	if o.IsPricingAsset(tokenOut) {
		return tokenOut, true
	}
	return "", false
}

// ValueInUSD values amount of asset. The result is unavailable when no USD
// route exists for asset yet.
func (o *Oracle) ValueInUSD(tx *entity.Tx, amount decimal.Decimal, asset string) (opt.Value[decimal.Decimal], error) {
	if o.IsUSDStable(asset) {
		return opt.Some(amount), nil
	}
	token, err := entity.Load[model.Token](tx, asset)
	if err != nil {
		return opt.None[decimal.Decimal](), err
	}
	if token == nil || !token.LatestUSDPrice.Valid {
		return opt.None[decimal.Decimal](), nil
	}
	return opt.Some(amount.Mul(token.LatestUSDPrice.Decimal)), nil
}

// SwapValueInUSD values a trade. A stable output side wins over a stable
// input side; otherwise the available sides are averaged.
func (o *Oracle) SwapValueInUSD(tx *entity.Tx, tokenIn string, amountIn decimal.Decimal, tokenOut string, amountOut decimal.Decimal) (decimal.Decimal, error) {
	if o.IsUSDStable(tokenOut) {
		return amountOut, nil
	}
	if o.IsUSDStable(tokenIn) {
		return amountIn, nil
	}
	in, err := o.ValueInUSD(tx, amountIn, tokenIn)
	if err != nil {
		return decimal.Zero, err
	}
	out, err := o.ValueInUSD(tx, amountOut, tokenOut)
	if err != nil {
		return decimal.Zero, err
	}
	inValue, inOK := in.Get()
	outValue, outOK := out.Get()
	switch {
	case inOK && outOK:
		return inValue.Add(outValue).Div(decimal.NewFromInt(2)), nil
	case inOK:
		return inValue, nil
	case outOK:
		return outValue, nil
	default:
		return decimal.Zero, nil
	}
}
