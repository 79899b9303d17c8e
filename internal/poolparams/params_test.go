package poolparams_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultScope/internal/entity/entitytest"
	"vaultScope/internal/pooltype"
	"vaultScope/internal/poolparams"
)

func TestRefreshWeights(t *testing.T) {
	f := entitytest.NewFixture()
	a, b, poolAddr := entitytest.Addr(1), entitytest.Addr(2), entitytest.Addr(9)
	poolID := f.SeedPool(t, entitytest.PoolSpec{Address: poolAddr, Kind: pooltype.LiquidityBootstrapping, Tokens: []common.Address{a, b}})

	tx := f.Begin()
	pool, err := tx.Pool(poolID)
	require.NoError(t, err)

	ok, err := poolparams.RefreshWeights(tx, pool)
	require.NoError(t, err)
	assert.False(t, ok, "weights unavailable")

	eighty, _ := new(big.Int).SetString("800000000000000000", 10)
	twenty, _ := new(big.Int).SetString("200000000000000000", 10)
	f.Reader.Pools[poolAddr].Weights = []*big.Int{eighty, twenty}

	ok, err = poolparams.RefreshWeights(tx, pool)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", pool.TotalWeight.String())
	pt, err := tx.PoolToken(poolID, entitytest.Key(a))
	require.NoError(t, err)
	require.True(t, pt.Weight.Valid)
	assert.Equal(t, "0.8", pt.Weight.Decimal.String())
}

func TestRefreshAmp(t *testing.T) {
	f := entitytest.NewFixture()
	poolAddr := entitytest.Addr(9)
	poolID := f.SeedPool(t, entitytest.PoolSpec{Address: poolAddr, Kind: pooltype.Stable})

	tx := f.Begin()
	pool, err := tx.Pool(poolID)
	require.NoError(t, err)
	assert.False(t, poolparams.RefreshAmp(tx, pool))

	f.Reader.Pools[poolAddr].Amp = big.NewInt(200)
	assert.True(t, poolparams.RefreshAmp(tx, pool))
	assert.Equal(t, int64(200), pool.Amp.Int64())
}
