// Package entity resolves and persists the aggregates touched by an event.
package entity

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vaultScope/internal/model"
	"vaultScope/internal/storage"
)

var (
	// ErrPoolNotFound means the event references a pool that was never
	// created. The event is dropped.
	ErrPoolNotFound = errors.New("pool not found")
	// ErrPoolTokenNotFound means a known pool lacks a token position. This
	// indicates corrupted state and stops processing.
	ErrPoolTokenNotFound = errors.New("pool token not found")
)

// Resolver opens units of work over an entity store.
type Resolver struct {
	store  storage.EntityStore
	reader ContractReader
	logger *zap.Logger
}

func NewResolver(store storage.EntityStore, reader ContractReader, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, reader: reader, logger: logger}
}

// Begin opens a Tx for one event.
func (r *Resolver) Begin(ctx context.Context) *Tx {
	return &Tx{
		ctx:      ctx,
		r:        r,
		entries:  make(map[entryKey]model.Entity),
		dirtySet: make(map[entryKey]struct{}),
	}
}

// Vault returns the singleton vault, creating it on first use.
func (tx *Tx) Vault() (*model.Vault, error) {
	v, err := Load[model.Vault](tx, model.VaultID)
	if err != nil || v != nil {
		return v, err
	}
	v = &model.Vault{ID: model.VaultID}
	tx.Save(v)
	return v, nil
}

// Pool returns the pool with id or ErrPoolNotFound.
func (tx *Tx) Pool(id string) (*model.Pool, error) {
	p, err := Load[model.Pool](tx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, id)
	}
	return p, nil
}

// CreatePool registers a pool together with its address index.
func (tx *Tx) CreatePool(p *model.Pool) {
	tx.Save(p)
	tx.Save(&model.PoolAddress{ID: p.Address, PoolID: p.ID})
}

// PoolByAddress resolves a pool from its contract address. Unknown
// addresses fall back to the contract's own pool id.
func (tx *Tx) PoolByAddress(addr common.Address) (*model.Pool, error) {
	key := model.AddressKey(addr)
	idx, err := Load[model.PoolAddress](tx, key)
	if err != nil {
		return nil, err
	}
	if idx != nil {
		return tx.Pool(idx.PoolID)
	}
	poolID, ok := tx.r.reader.PoolID(tx.ctx, addr).Get()
	if !ok {
		return nil, fmt.Errorf("%w: address %s", ErrPoolNotFound, key)
	}
	p, err := tx.Pool(model.HashKey(poolID))
	if err != nil {
		return nil, err
	}
	tx.Save(&model.PoolAddress{ID: key, PoolID: p.ID})
	return p, nil
}

// PoolToken returns the token position or ErrPoolTokenNotFound.
func (tx *Tx) PoolToken(poolID, token string) (*model.PoolToken, error) {
	id := PoolTokenID(poolID, token)
	pt, err := Load[model.PoolToken](tx, id)
	if err != nil {
		return nil, err
	}
	if pt == nil {
		return nil, fmt.Errorf("%w: %s", ErrPoolTokenNotFound, id)
	}
	return pt, nil
}

// Token returns the token, creating it with contract metadata on first
// reference.
func (tx *Tx) Token(addr common.Address) (*model.Token, error) {
	key := model.AddressKey(addr)
	t, err := Load[model.Token](tx, key)
	if err != nil || t != nil {
		return t, err
	}
	t = &model.Token{
		ID:       key,
		Address:  key,
		Name:     tx.r.reader.TokenName(tx.ctx, addr).Or(""),
		Symbol:   tx.r.reader.TokenSymbol(tx.ctx, addr).Or(""),
		Decimals: tx.r.reader.TokenDecimals(tx.ctx, addr).Or(0),
	}
	if poolID, ok := tx.r.reader.PoolID(tx.ctx, addr).Get(); ok {
		t.Pool = model.HashKey(poolID)
	}
	if t.Symbol == "" {
		tx.r.logger.Debug("token metadata unavailable", zap.String("token", key))
	}
	tx.Save(t)
	return t, nil
}

// TokenByKey is Token for an already normalized address.
func (tx *Tx) TokenByKey(key string) (*model.Token, error) {
	return tx.Token(common.HexToAddress(key))
}

// User ensures a user exists for addr.
func (tx *Tx) User(addr common.Address) (*model.User, error) {
	key := model.AddressKey(addr)
	u, err := Load[model.User](tx, key)
	if err != nil || u != nil {
		return u, err
	}
	u = &model.User{ID: key}
	tx.Save(u)
	return u, nil
}

// PoolShare returns the holder's share position in pool. New positions are
// not persisted until saved.
func (tx *Tx) PoolShare(pool *model.Pool, holder common.Address) (*model.PoolShare, error) {
	holderKey := model.AddressKey(holder)
	id := PoolShareID(pool.Address, holderKey)
	s, err := Load[model.PoolShare](tx, id)
	if err != nil || s != nil {
		return s, err
	}
	s = &model.PoolShare{ID: id, PoolID: pool.ID, UserAddress: holderKey, Balance: decimal.Zero}
	tx.stage(s)
	return s, nil
}

// InternalBalance returns the user's internal balance of token.
func (tx *Tx) InternalBalance(user, token string) (*model.UserInternalBalance, error) {
	id := InternalBalanceID(user, token)
	b, err := Load[model.UserInternalBalance](tx, id)
	if err != nil || b != nil {
		return b, err
	}
	b = &model.UserInternalBalance{ID: id, UserAddress: user, Token: token, Balance: decimal.Zero}
	tx.stage(b)
	return b, nil
}

// TradePair returns the pair for two tokens in either order.
func (tx *Tx) TradePair(a, b string) (*model.TradePair, error) {
	id := TradePairID(a, b)
	p, err := Load[model.TradePair](tx, id)
	if err != nil || p != nil {
		return p, err
	}
	token0, token1 := a, b
	if token1 < token0 {
		token0, token1 = token1, token0
	}
	p = &model.TradePair{ID: id, Token0: token0, Token1: token1}
	tx.stage(p)
	return p, nil
}

// LatestPrice returns the latest price of asset in pricingAsset, or nil.
func (tx *Tx) LatestPrice(asset, pricingAsset string) (*model.LatestPrice, error) {
	return Load[model.LatestPrice](tx, LatestPriceID(asset, pricingAsset))
}
