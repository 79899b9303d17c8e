package entitytest

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"vaultScope/internal/entity"
	"vaultScope/internal/model"
	"vaultScope/internal/pooltype"
	"vaultScope/internal/storage"
)

// Fixture wires a resolver over a memory store and a fake reader.
type Fixture struct {
	Store    *storage.MemoryStore
	Reader   *Reader
	Resolver *entity.Resolver
}

func NewFixture() *Fixture {
	store := storage.NewMemoryStore()
	reader := NewReader()
	return &Fixture{Store: store, Reader: reader, Resolver: entity.NewResolver(store, reader, nil)}
}

// Begin opens a Tx with a background context.
func (f *Fixture) Begin() *entity.Tx {
	return f.Resolver.Begin(context.Background())
}

// Addr builds a deterministic address from a single byte.
func Addr(b byte) common.Address {
	var a common.Address
	a[19] = b
	return a
}

// PoolIDFor builds a pool id whose prefix is the pool address.
func PoolIDFor(pool common.Address) common.Hash {
	var h common.Hash
	copy(h[:20], pool[:])
	h[31] = 1
	return h
}

// PoolSpec describes a pool seeded directly into the store.
type PoolSpec struct {
	Address common.Address
	Kind    pooltype.Kind
	SwapFee string
	Tokens  []common.Address
	Weights []string
}

// SeedPool writes a pool, its tokens and its token positions and returns the
// pool id.
func (f *Fixture) SeedPool(t testing.TB, spec PoolSpec) string {
	t.Helper()
	poolID := PoolIDFor(spec.Address)
	f.Reader.Pools[spec.Address] = &PoolInfo{ID: poolID, Tokens: spec.Tokens}

	tx := f.Begin()
	pool := &model.Pool{
		ID:       model.HashKey(poolID),
		Address:  model.AddressKey(spec.Address),
		PoolType: spec.Kind,
		SwapFee:  decimalOrZero(spec.SwapFee),
	}
	for i, tokenAddr := range spec.Tokens {
		token, err := tx.Token(tokenAddr)
		if err != nil {
			t.Fatalf("seed token: %v", err)
		}
		pool.TokensList = append(pool.TokensList, token.ID)
		pt := &model.PoolToken{
			ID:        entity.PoolTokenID(pool.ID, token.ID),
			PoolID:    pool.ID,
			Address:   token.ID,
			Symbol:    token.Symbol,
			Decimals:  token.Decimals,
			PriceRate: decimal.NewFromInt(1),
		}
		if i < len(spec.Weights) {
			pt.Weight = decimal.NewNullDecimal(decimal.RequireFromString(spec.Weights[i]))
		}
		tx.Save(pt)
	}
	tx.CreatePool(pool)
	if err := tx.Commit(); err != nil {
		t.Fatalf("seed pool: %v", err)
	}
	return pool.ID
}

func decimalOrZero(v string) decimal.Decimal {
	if v == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(v)
}

// Key normalizes an address like the resolver does.
func Key(a common.Address) string {
	return model.AddressKey(a)
}
