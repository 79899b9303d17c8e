package entity_test

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultScope/internal/entity"
	"vaultScope/internal/entity/entitytest"
	"vaultScope/internal/model"
	"vaultScope/internal/pooltype"
)

func TestVaultIsCreatedOnce(t *testing.T) {
	f := entitytest.NewFixture()

	tx := f.Begin()
	v, err := tx.Vault()
	require.NoError(t, err)
	v.PoolCount = 3
	tx.Save(v)
	require.NoError(t, tx.Commit())

	tx = f.Begin()
	again, err := tx.Vault()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), again.PoolCount)
	assert.Equal(t, []string{model.VaultID}, f.Store.IDs(model.KindVault))
}

func TestTokenUsesMetadataAndFallsBack(t *testing.T) {
	f := entitytest.NewFixture()
	known := entitytest.Addr(1)
	unknown := entitytest.Addr(2)
	f.Reader.AddToken(known, "USDC", 6)

	tx := f.Begin()
	tok, err := tx.Token(known)
	require.NoError(t, err)
	assert.Equal(t, "USDC", tok.Symbol)
	assert.Equal(t, uint8(6), tok.Decimals)

	fallback, err := tx.Token(unknown)
	require.NoError(t, err)
	assert.Equal(t, "", fallback.Symbol)
	assert.Equal(t, "", fallback.Name)
	assert.Equal(t, uint8(0), fallback.Decimals)

	calls := f.Reader.Calls
	same, err := tx.Token(known)
	require.NoError(t, err)
	assert.Same(t, tok, same)
	assert.Equal(t, calls, f.Reader.Calls)
}

func TestTokenDetectsPoolShareToken(t *testing.T) {
	f := entitytest.NewFixture()
	poolAddr := entitytest.Addr(9)
	poolID := f.SeedPool(t, entitytest.PoolSpec{Address: poolAddr, Kind: pooltype.Weighted})

	tx := f.Begin()
	tok, err := tx.Token(poolAddr)
	require.NoError(t, err)
	assert.Equal(t, poolID, tok.Pool)
}

func TestPoolLookups(t *testing.T) {
	f := entitytest.NewFixture()
	poolAddr := entitytest.Addr(9)
	tokenA := entitytest.Addr(1)
	poolID := f.SeedPool(t, entitytest.PoolSpec{
		Address: poolAddr,
		Kind:    pooltype.Stable,
		Tokens:  []common.Address{tokenA},
	})

	tx := f.Begin()
	p, err := tx.Pool(poolID)
	require.NoError(t, err)
	byAddr, err := tx.PoolByAddress(poolAddr)
	require.NoError(t, err)
	assert.Same(t, p, byAddr)

	_, err = tx.Pool("0xmissing")
	assert.True(t, errors.Is(err, entity.ErrPoolNotFound))
	_, err = tx.PoolByAddress(entitytest.Addr(77))
	assert.True(t, errors.Is(err, entity.ErrPoolNotFound))

	pt, err := tx.PoolToken(poolID, entitytest.Key(tokenA))
	require.NoError(t, err)
	assert.Equal(t, entity.PoolTokenID(poolID, entitytest.Key(tokenA)), pt.ID)
	_, err = tx.PoolToken(poolID, entitytest.Key(entitytest.Addr(3)))
	assert.True(t, errors.Is(err, entity.ErrPoolTokenNotFound))
}

func TestUncommittedTxLeavesStoreUntouched(t *testing.T) {
	f := entitytest.NewFixture()
	tx := f.Begin()
	_, err := tx.User(entitytest.Addr(5))
	require.NoError(t, err)
	assert.Empty(t, f.Store.IDs(model.KindUser))

	require.NoError(t, tx.Commit())
	assert.Len(t, f.Store.IDs(model.KindUser), 1)
	assert.Error(t, tx.Commit())
}

func TestInsertTracksCreatedRecords(t *testing.T) {
	f := entitytest.NewFixture()
	tx := f.Begin()
	swap := &model.Swap{ID: "0xabc1", TokenAmountIn: decimal.NewFromInt(1)}
	tx.Insert(swap)
	tx.Save(&model.User{ID: "0x01"})
	require.Len(t, tx.Created(), 1)
	assert.Same(t, swap, tx.Created()[0])
}

func TestCompositeIDs(t *testing.T) {
	assert.Equal(t, "0xa-0xb", entity.TradePairID("0xb", "0xa"))
	assert.Equal(t, entity.TradePairID("0xa", "0xb"), entity.TradePairID("0xb", "0xa"))
	assert.Equal(t, "0xpool-19000", entity.SnapshotID("0xpool", 19000))
	assert.Equal(t, "0xp-0xa-0xu-12", entity.TokenPriceID("0xp", "0xa", "0xu", 12))
	assert.Equal(t, "0xa-0xu", entity.LatestPriceID("0xa", "0xu"))
}
