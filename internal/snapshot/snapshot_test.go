package snapshot_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultScope/internal/entity"
	"vaultScope/internal/entity/entitytest"
	"vaultScope/internal/model"
	"vaultScope/internal/pooltype"
	"vaultScope/internal/snapshot"
)

const day = 19700

func TestDayID(t *testing.T) {
	assert.Equal(t, uint64(0), snapshot.DayID(86399))
	assert.Equal(t, uint64(1), snapshot.DayID(86400))
	assert.Equal(t, uint64(86400), snapshot.DayStart(100000))
}

// A bucket created mid-day equals the live aggregate at that moment and later
// updates on the same day keep writing the same bucket.
func TestVaultSnapshotCreatedFromLiveValues(t *testing.T) {
	f := entitytest.NewFixture()
	ts := uint64(day*snapshot.SecondsPerDay + 3600)

	tx := f.Begin()
	v, err := tx.Vault()
	require.NoError(t, err)
	v.PoolCount = 4
	v.TotalSwapCount = 10
	v.TotalSwapVolume = decimal.NewFromInt(1500)

	s, err := snapshot.Vault(tx, v, ts)
	require.NoError(t, err)
	assert.Equal(t, entity.SnapshotID(model.VaultID, day), s.ID)
	assert.Equal(t, uint64(day*snapshot.SecondsPerDay), s.Timestamp)
	assert.Equal(t, uint64(4), s.PoolCount)
	assert.Equal(t, uint64(10), s.TotalSwapCount)
	assert.True(t, s.TotalSwapVolume.Equal(decimal.NewFromInt(1500)))

	v.TotalSwapCount = 11
	require.NoError(t, snapshot.RefreshVault(tx, v, ts+60))
	require.NoError(t, tx.Commit())

	assert.Len(t, f.Store.IDs(model.KindVaultSnapshot), 1)

	tx = f.Begin()
	stored, err := entity.Load[model.VaultSnapshot](tx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), stored.TotalSwapCount)
}

func TestNextDayLeavesPreviousBucket(t *testing.T) {
	f := entitytest.NewFixture()
	ts := uint64(day * snapshot.SecondsPerDay)

	tx := f.Begin()
	v, err := tx.Vault()
	require.NoError(t, err)
	v.PoolCount = 1
	require.NoError(t, snapshot.RefreshVault(tx, v, ts))
	v.PoolCount = 2
	require.NoError(t, snapshot.RefreshVault(tx, v, ts+snapshot.SecondsPerDay))
	require.NoError(t, tx.Commit())

	tx = f.Begin()
	first, err := entity.Load[model.VaultSnapshot](tx, entity.SnapshotID(model.VaultID, day))
	require.NoError(t, err)
	second, err := entity.Load[model.VaultSnapshot](tx, entity.SnapshotID(model.VaultID, day+1))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.PoolCount)
	assert.Equal(t, uint64(2), second.PoolCount)
}

func TestPoolSnapshotCopiesTokenBalances(t *testing.T) {
	f := entitytest.NewFixture()
	a, b := entitytest.Addr(1), entitytest.Addr(2)
	f.Reader.AddToken(a, "A", 18)
	f.Reader.AddToken(b, "B", 18)
	poolID := f.SeedPool(t, entitytest.PoolSpec{Address: entitytest.Addr(9), Kind: pooltype.Weighted, Tokens: []common.Address{a, b}})

	tx := f.Begin()
	pool, err := tx.Pool(poolID)
	require.NoError(t, err)
	pt, err := tx.PoolToken(poolID, entitytest.Key(b))
	require.NoError(t, err)
	pt.Balance = decimal.NewFromInt(7)
	pool.HoldersCount = 2

	s, err := snapshot.Pool(tx, pool, 100)
	require.NoError(t, err)
	require.Len(t, s.Amounts, 2)
	assert.True(t, s.Amounts[0].IsZero())
	assert.True(t, s.Amounts[1].Equal(decimal.NewFromInt(7)))
	assert.Equal(t, int64(2), s.HoldersCount)
}

func TestTokenAndPairSnapshots(t *testing.T) {
	f := entitytest.NewFixture()
	tx := f.Begin()

	token := &model.Token{ID: "0xa", TotalSwapCount: 3}
	require.NoError(t, snapshot.RefreshToken(tx, token, 10))
	ts, err := snapshot.Token(tx, token, 20)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), ts.TotalSwapCount)

	pair := &model.TradePair{ID: "0xa-0xb", TotalSwapVolume: decimal.NewFromInt(9)}
	require.NoError(t, snapshot.RefreshTradePair(tx, pair, 10))
	ps, err := snapshot.TradePair(tx, pair, 10)
	require.NoError(t, err)
	assert.True(t, ps.TotalSwapVolume.Equal(decimal.NewFromInt(9)))
}
