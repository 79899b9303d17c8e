// Package entitytest provides in-memory collaborators for engine tests.
package entitytest

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/opt"
)

// TokenInfo is the metadata a fake token reports.
type TokenInfo struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// PoolInfo is what a fake pool contract reports.
type PoolInfo struct {
	ID                common.Hash
	SwapFeePercentage *big.Int
	Owner             common.Address
	Weights           []*big.Int
	Amp               *big.Int
	Tokens            []common.Address
	AssetManagers     map[common.Address]common.Address
}

// Reader is a map-backed ContractReader. Missing entries are unavailable.
type Reader struct {
	Tokens map[common.Address]TokenInfo
	Pools  map[common.Address]*PoolInfo
	Calls  int
}

func NewReader() *Reader {
	return &Reader{
		Tokens: make(map[common.Address]TokenInfo),
		Pools:  make(map[common.Address]*PoolInfo),
	}
}

// AddToken registers token metadata.
func (r *Reader) AddToken(addr common.Address, symbol string, decimals uint8) {
	r.Tokens[addr] = TokenInfo{Name: symbol + " token", Symbol: symbol, Decimals: decimals}
}

func (r *Reader) poolByID(id common.Hash) *PoolInfo {
	for _, p := range r.Pools {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Reader) PoolID(_ context.Context, pool common.Address) opt.Value[common.Hash] {
	r.Calls++
	if p, ok := r.Pools[pool]; ok {
		return opt.Some(p.ID)
	}
	return opt.None[common.Hash]()
}

func (r *Reader) SwapFeePercentage(_ context.Context, pool common.Address) opt.Value[*big.Int] {
	r.Calls++
	if p, ok := r.Pools[pool]; ok && p.SwapFeePercentage != nil {
		return opt.Some(p.SwapFeePercentage)
	}
	return opt.None[*big.Int]()
}

func (r *Reader) Owner(_ context.Context, pool common.Address) opt.Value[common.Address] {
	r.Calls++
	if p, ok := r.Pools[pool]; ok {
		return opt.Some(p.Owner)
	}
	return opt.None[common.Address]()
}

func (r *Reader) NormalizedWeights(_ context.Context, pool common.Address) opt.Value[[]*big.Int] {
	r.Calls++
	if p, ok := r.Pools[pool]; ok && p.Weights != nil {
		return opt.Some(p.Weights)
	}
	return opt.None[[]*big.Int]()
}

func (r *Reader) Amplification(_ context.Context, pool common.Address) opt.Value[*big.Int] {
	r.Calls++
	if p, ok := r.Pools[pool]; ok && p.Amp != nil {
		return opt.Some(p.Amp)
	}
	return opt.None[*big.Int]()
}

func (r *Reader) PoolTokens(_ context.Context, poolID common.Hash) opt.Value[[]common.Address] {
	r.Calls++
	if p := r.poolByID(poolID); p != nil && p.Tokens != nil {
		return opt.Some(p.Tokens)
	}
	return opt.None[[]common.Address]()
}

func (r *Reader) AssetManager(_ context.Context, poolID common.Hash, token common.Address) opt.Value[common.Address] {
	r.Calls++
	if p := r.poolByID(poolID); p != nil {
		return opt.Some(p.AssetManagers[token])
	}
	return opt.None[common.Address]()
}

func (r *Reader) TokenName(_ context.Context, token common.Address) opt.Value[string] {
	r.Calls++
	if t, ok := r.Tokens[token]; ok {
		return opt.Some(t.Name)
	}
	return opt.None[string]()
}

func (r *Reader) TokenSymbol(_ context.Context, token common.Address) opt.Value[string] {
	r.Calls++
	if t, ok := r.Tokens[token]; ok {
		return opt.Some(t.Symbol)
	}
	return opt.None[string]()
}

func (r *Reader) TokenDecimals(_ context.Context, token common.Address) opt.Value[uint8] {
	r.Calls++
	if t, ok := r.Tokens[token]; ok {
		return opt.Some(t.Decimals)
	}
	return opt.None[uint8]()
}
