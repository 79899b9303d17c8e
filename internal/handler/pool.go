package handler

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vaultScope/internal/entity"
	"vaultScope/internal/model"
	"vaultScope/internal/numeric"
	"vaultScope/internal/pooltype"
	"vaultScope/internal/poolparams"
	"vaultScope/internal/snapshot"
)

func (d *Dispatcher) handlePoolCreated(tx *entity.Tx, meta model.EventMeta, data model.PoolCreatedEventData) error {
	poolAddr, err := parseAddress("pool", data.Pool)
	if err != nil {
		return err
	}
	kind, err := pooltype.Parse(data.PoolType)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	existing, err := entity.Load[model.PoolAddress](tx, model.AddressKey(poolAddr))
	if err != nil {
		return err
	}
	if existing != nil {
		d.logger.Debug("pool already registered", zap.String("pool", existing.PoolID))
		return nil
	}

	ctx := tx.Context()
	reader := tx.Reader()
	poolID, ok := reader.PoolID(ctx, poolAddr).Get()
	if !ok {
		return fmt.Errorf("%w: pool id of %s", ErrPoolUnavailable, model.AddressKey(poolAddr))
	}
	tokens, ok := reader.PoolTokens(ctx, poolID).Get()
	if !ok {
		return fmt.Errorf("%w: tokens of %s", ErrPoolUnavailable, model.HashKey(poolID))
	}

	pool := &model.Pool{
		ID:              model.HashKey(poolID),
		Address:         model.AddressKey(poolAddr),
		PoolType:        kind,
		PoolTypeVersion: data.PoolTypeVersion,
		Factory:         data.Factory,
		Name:            reader.TokenName(ctx, poolAddr).Or(""),
		Symbol:          reader.TokenSymbol(ctx, poolAddr).Or(""),
		SwapEnabled:     true,
		CreateTime:      meta.Timestamp,
		Tx:              meta.TxHash,
	}
	if fee, ok := reader.SwapFeePercentage(ctx, poolAddr).Get(); ok {
		pool.SwapFee = numeric.ScaleShares(fee)
	}
	if owner, ok := reader.Owner(ctx, poolAddr).Get(); ok {
		pool.Owner = model.AddressKey(owner)
	}

	for _, addr := range tokens {
		token, err := tx.Token(addr)
		if err != nil {
			return err
		}
		manager := reader.AssetManager(ctx, poolID, addr).Or(common.Address{})
		tx.Save(&model.PoolToken{
			ID:           entity.PoolTokenID(pool.ID, token.ID),
			PoolID:       pool.ID,
			Address:      token.ID,
			AssetManager: model.AddressKey(manager),
			Name:         token.Name,
			Symbol:       token.Symbol,
			Decimals:     token.Decimals,
			PriceRate:    decimal.NewFromInt(1),
		})
		pool.TokensList = append(pool.TokensList, token.ID)
	}
	tx.CreatePool(pool)

	vault, err := tx.Vault()
	if err != nil {
		return err
	}
	vault.PoolCount++
	tx.Save(vault)
	if err := snapshot.RefreshVault(tx, vault, meta.Timestamp); err != nil {
		return err
	}

	if kind.IsWeighted() {
		if _, err := poolparams.RefreshWeights(tx, pool); err != nil {
			return err
		}
	}
	if kind.HasAmp() {
		poolparams.RefreshAmp(tx, pool)
	}
	d.logger.Info("pool created",
		zap.String("pool", pool.ID),
		zap.String("pool_type", kind.String()),
		zap.Int("tokens", len(pool.TokensList)),
	)
	return nil
}

func (d *Dispatcher) handleSwapFeeChanged(tx *entity.Tx, meta model.EventMeta, emitter string, data model.SwapFeePercentageChangedEventData) error {
	poolAddr, err := parseAddress("address", emitter)
	if err != nil {
		return err
	}
	raw, err := parseInt("swap_fee_percentage", data.SwapFeePercentage)
	if err != nil {
		return err
	}
	pool, err := tx.PoolByAddress(poolAddr)
	if err != nil {
		return err
	}
	fee := numeric.ScaleShares(raw)
	pool.SwapFee = fee
	tx.Save(pool)
	tx.Insert(&model.SwapFeeUpdate{
		ID:                 meta.ID(),
		PoolID:             pool.ID,
		ScheduledTimestamp: meta.Timestamp,
		StartTimestamp:     meta.Timestamp,
		EndTimestamp:       meta.Timestamp,
		StartSwapFee:       fee,
		EndSwapFee:         fee,
	})
	return nil
}

func (d *Dispatcher) handleAmpUpdateStarted(tx *entity.Tx, meta model.EventMeta, emitter string, data model.AmpUpdateStartedEventData) error {
	poolAddr, err := parseAddress("address", emitter)
	if err != nil {
		return err
	}
	startValue, err := parseInt("start_value", data.StartValue)
	if err != nil {
		return err
	}
	endValue, err := parseInt("end_value", data.EndValue)
	if err != nil {
		return err
	}
	startTime, err := parseTimestamp("start_time", data.StartTime)
	if err != nil {
		return err
	}
	endTime, err := parseTimestamp("end_time", data.EndTime)
	if err != nil {
		return err
	}
	pool, err := tx.PoolByAddress(poolAddr)
	if err != nil {
		return err
	}
	tx.Insert(&model.AmpUpdate{
		ID:                 meta.ID(),
		PoolID:             pool.ID,
		ScheduledTimestamp: meta.Timestamp,
		StartTimestamp:     startTime,
		EndTimestamp:       endTime,
		StartAmp:           startValue,
		EndAmp:             endValue,
	})
	return nil
}

func (d *Dispatcher) handleAmpUpdateStopped(tx *entity.Tx, meta model.EventMeta, emitter string, data model.AmpUpdateStoppedEventData) error {
	poolAddr, err := parseAddress("address", emitter)
	if err != nil {
		return err
	}
	current, err := parseInt("current_value", data.CurrentValue)
	if err != nil {
		return err
	}
	pool, err := tx.PoolByAddress(poolAddr)
	if err != nil {
		return err
	}
	tx.Insert(&model.AmpUpdate{
		ID:                 meta.ID(),
		PoolID:             pool.ID,
		ScheduledTimestamp: meta.Timestamp,
		StartTimestamp:     meta.Timestamp,
		EndTimestamp:       meta.Timestamp,
		StartAmp:           current,
		EndAmp:             current,
	})
	poolparams.RefreshAmp(tx, pool)
	return nil
}
