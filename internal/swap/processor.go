// Package swap applies vault swaps to pools, tokens, trade pairs and prices.
package swap

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vaultScope/internal/entity"
	"vaultScope/internal/ledger"
	"vaultScope/internal/model"
	"vaultScope/internal/numeric"
	"vaultScope/internal/poolparams"
	"vaultScope/internal/pricing"
	"vaultScope/internal/snapshot"
)

// ErrTokenNotInPool marks a swap naming a token the pool does not hold.
var ErrTokenNotInPool = errors.New("swap token not in pool")

// Swap is a vault swap against a single pool.
type Swap struct {
	Meta      model.EventMeta
	PoolID    string
	TokenIn   common.Address
	TokenOut  common.Address
	AmountIn  *big.Int
	AmountOut *big.Int
}

// Result summarizes what a processed swap produced.
type Result struct {
	Record       *model.Swap
	PriceSamples int
}

// Processor runs the swap pipeline. It is not safe for concurrent use.
type Processor struct {
	ledger *ledger.Ledger
	oracle *pricing.Oracle
	logger *zap.Logger
}

func NewProcessor(l *ledger.Ledger, oracle *pricing.Oracle, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{ledger: l, oracle: oracle, logger: logger}
}

// Process applies ev. It returns entity.ErrPoolNotFound for unknown pools and
// ErrTokenNotInPool when either side has no PoolToken.
func (p *Processor) Process(tx *entity.Tx, ev Swap) (Result, error) {
	pool, err := tx.Pool(ev.PoolID)
	if err != nil {
		return Result{}, err
	}
	ts := ev.Meta.Timestamp

	inKey := model.AddressKey(ev.TokenIn)
	outKey := model.AddressKey(ev.TokenOut)
	ptIn, err := p.poolToken(tx, pool.ID, inKey)
	if err != nil {
		return Result{}, err
	}
	ptOut, err := p.poolToken(tx, pool.ID, outKey)
	if err != nil {
		return Result{}, err
	}

	switch {
	case pool.PoolType.IsVariableWeight():
		if _, err := poolparams.RefreshWeights(tx, pool); err != nil {
			return Result{}, err
		}
	case pool.PoolType.IsStableLike():
		poolparams.RefreshAmp(tx, pool)
	}

	// Swaps against the pool's own token mint or burn virtual supply.
	if inKey == pool.Address {
		pool.TotalShares = pool.TotalShares.Sub(numeric.ScaleShares(ev.AmountIn))
	}
	if outKey == pool.Address {
		pool.TotalShares = pool.TotalShares.Add(numeric.ScaleShares(ev.AmountOut))
	}

	amountIn := numeric.ScaleDown(ev.AmountIn, ptIn.Decimals)
	amountOut := numeric.ScaleDown(ev.AmountOut, ptOut.Decimals)

	valueUSD := decimal.Zero
	feeUSD := decimal.Zero
	feeUnsupported := false
	if inKey != pool.Address && outKey != pool.Address {
		valueUSD, err = p.oracle.SwapValueInUSD(tx, inKey, amountIn, outKey, amountOut)
		if err != nil {
			return Result{}, err
		}
		if pool.PoolType.ChargesSwapFee() {
			feeUSD = valueUSD.Mul(pool.SwapFee)
		}
		if pool.PoolType.HasUnsupportedFeeModel() {
			feeUnsupported = true
			p.logger.Debug("swap fee not modelled", zap.String("pool", pool.ID), zap.String("pool_type", pool.PoolType.String()))
		}
	}

	ptIn.Balance = ptIn.Balance.Add(amountIn)
	ptIn.CashBalance = ptIn.CashBalance.Add(amountIn)
	ptOut.Balance = ptOut.Balance.Sub(amountOut)
	ptOut.CashBalance = ptOut.CashBalance.Sub(amountOut)
	tx.Save(ptIn)
	tx.Save(ptOut)

	record := &model.Swap{
		ID:             ev.Meta.ID(),
		PoolID:         pool.ID,
		TokenIn:        inKey,
		TokenInSym:     ptIn.Symbol,
		TokenOut:       outKey,
		TokenOutSym:    ptOut.Symbol,
		TokenAmountIn:  amountIn,
		TokenAmountOut: amountOut,
		ValueUSD:       valueUSD,
		FeeUSD:         feeUSD,
		FeeUnsupported: feeUnsupported,
		BlockNumber:    ev.Meta.BlockNumber,
		Timestamp:      ts,
		Tx:             ev.Meta.TxHash,
	}
	tx.Insert(record)

	pool.SwapsCount++
	pool.TotalSwapVolume = pool.TotalSwapVolume.Add(valueUSD)
	pool.TotalSwapFee = pool.TotalSwapFee.Add(feeUSD)
	tx.Save(pool)

	if err := p.updateVault(tx, valueUSD, feeUSD, ts); err != nil {
		return Result{}, err
	}
	if err := p.updateToken(tx, inKey, amountIn, amountIn, valueUSD, ts); err != nil {
		return Result{}, err
	}
	if err := p.updateToken(tx, outKey, amountOut, amountOut.Neg(), valueUSD, ts); err != nil {
		return Result{}, err
	}
	if err := p.updateTradePair(tx, inKey, outKey, valueUSD, feeUSD, ts); err != nil {
		return Result{}, err
	}

	result := Result{Record: record}
	if amountIn.IsZero() || amountOut.IsZero() {
		return result, nil
	}
	result.PriceSamples, err = p.oracle.RecordSwapPrices(tx, pricing.SwapObservation{
		Pool:        pool,
		TokenIn:     inKey,
		TokenOut:    outKey,
		AmountIn:    amountIn,
		AmountOut:   amountOut,
		BalanceIn:   ptIn.Balance,
		BalanceOut:  ptOut.Balance,
		WeightIn:    ptIn.Weight,
		WeightOut:   ptOut.Weight,
		ValueUSD:    valueUSD,
		BlockNumber: ev.Meta.BlockNumber,
		Timestamp:   ts,
	})
	if err != nil {
		return Result{}, err
	}
	if err := p.oracle.CaptureHistoricalLiquidity(tx, pool, ev.Meta.BlockNumber); err != nil {
		return Result{}, err
	}
	if err := p.oracle.UpdatePoolLiquidity(tx, pool, ts); err != nil {
		return Result{}, err
	}
	return result, nil
}

func (p *Processor) poolToken(tx *entity.Tx, poolID, token string) (*model.PoolToken, error) {
	pt, err := tx.PoolToken(poolID, token)
	if errors.Is(err, entity.ErrPoolTokenNotFound) {
		p.logger.Warn("swap token not in pool", zap.String("pool", poolID), zap.String("token", token))
		return nil, fmt.Errorf("%w: %w", ErrTokenNotInPool, err)
	}
	return pt, err
}

func (p *Processor) updateVault(tx *entity.Tx, valueUSD, feeUSD decimal.Decimal, ts uint64) error {
	vault, err := tx.Vault()
	if err != nil {
		return err
	}
	vault.TotalSwapCount++
	vault.TotalSwapVolume = vault.TotalSwapVolume.Add(valueUSD)
	vault.TotalSwapFee = vault.TotalSwapFee.Add(feeUSD)
	tx.Save(vault)
	return snapshot.RefreshVault(tx, vault, ts)
}

func (p *Processor) updateToken(tx *entity.Tx, key string, volume, balanceDelta, valueUSD decimal.Decimal, ts uint64) error {
	token, err := tx.TokenByKey(key)
	if err != nil {
		return err
	}
	token.TotalSwapCount++
	token.TotalVolumeNotional = token.TotalVolumeNotional.Add(volume)
	token.TotalVolumeUSD = token.TotalVolumeUSD.Add(valueUSD)
	return p.ledger.AdjustTokenBalance(tx, token, balanceDelta, ts)
}

func (p *Processor) updateTradePair(tx *entity.Tx, a, b string, valueUSD, feeUSD decimal.Decimal, ts uint64) error {
	pair, err := tx.TradePair(a, b)
	if err != nil {
		return err
	}
	pair.TotalSwapVolume = pair.TotalSwapVolume.Add(valueUSD)
	pair.TotalSwapFee = pair.TotalSwapFee.Add(feeUSD)
	tx.Save(pair)
	return snapshot.RefreshTradePair(tx, pair, ts)
}
