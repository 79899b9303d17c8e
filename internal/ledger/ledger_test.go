package ledger_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultScope/internal/entity"
	"vaultScope/internal/entity/entitytest"
	"vaultScope/internal/ledger"
	"vaultScope/internal/model"
	"vaultScope/internal/pooltype"
	"vaultScope/internal/pricing"
	"vaultScope/internal/snapshot"
)

var (
	usdc     = entitytest.Addr(1)
	dai      = entitytest.Addr(2)
	poolAddr = entitytest.Addr(9)
	alice    = entitytest.Addr(20)
	bob      = entitytest.Addr(21)
	zero     = common.Address{}
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func wei(v string) *big.Int {
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		panic(v)
	}
	return n
}

type env struct {
	f      *entitytest.Fixture
	ledger *ledger.Ledger
	poolID string
}

func newEnv(t *testing.T, kind pooltype.Kind, tokens ...common.Address) *env {
	f := entitytest.NewFixture()
	f.Reader.AddToken(usdc, "USDC", 6)
	f.Reader.AddToken(dai, "DAI", 18)
	oracle := pricing.New(pricing.Config{
		StableAssets:     []string{entitytest.Key(usdc), entitytest.Key(dai)},
		MinPoolLiquidity: pricing.DefaultMinPoolLiquidity,
		MinSwapValueUSD:  pricing.DefaultMinSwapValueUSD,
	}, nil)
	poolID := f.SeedPool(t, entitytest.PoolSpec{Address: poolAddr, Kind: kind, Tokens: tokens})
	return &env{f: f, ledger: ledger.New(oracle, nil), poolID: poolID}
}

func (e *env) transfer(t *testing.T, from, to common.Address, value string, logIndex uint64) {
	t.Helper()
	tx := e.f.Begin()
	err := e.ledger.ApplyTransfer(tx, ledger.Transfer{
		Meta:  model.EventMeta{TxHash: "0x01", LogIndex: logIndex, Timestamp: 1000},
		Pool:  poolAddr,
		From:  from,
		To:    to,
		Value: wei(value),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
}

func (e *env) pool(t *testing.T) *model.Pool {
	t.Helper()
	p, err := e.f.Begin().Pool(e.poolID)
	require.NoError(t, err)
	return p
}

// totalShares equals mints minus burns and holdersCount equals the number
// of non-zero holders through any transfer sequence.
func TestTransfersTrackSupplyAndHolders(t *testing.T) {
	e := newEnv(t, pooltype.Weighted, usdc, dai)

	e.transfer(t, zero, alice, "10000000000000000000", 1)
	e.transfer(t, zero, bob, "5000000000000000000", 2)
	p := e.pool(t)
	assert.True(t, p.TotalShares.Equal(d("15")))
	assert.Equal(t, int64(2), p.HoldersCount)

	e.transfer(t, alice, bob, "10000000000000000000", 3)
	p = e.pool(t)
	assert.True(t, p.TotalShares.Equal(d("15")))
	assert.Equal(t, int64(1), p.HoldersCount)

	e.transfer(t, bob, bob, "1000000000000000000", 4)
	assert.Equal(t, int64(1), e.pool(t).HoldersCount)

	e.transfer(t, bob, zero, "15000000000000000000", 5)
	p = e.pool(t)
	assert.True(t, p.TotalShares.IsZero())
	assert.Equal(t, int64(0), p.HoldersCount)

	tx := e.f.Begin()
	share, err := tx.PoolShare(p, bob)
	require.NoError(t, err)
	assert.True(t, share.Balance.IsZero())
	assert.Len(t, e.f.Store.IDs(model.KindUser), 3)
}

func TestTransferForUnknownPool(t *testing.T) {
	e := newEnv(t, pooltype.Weighted, usdc, dai)
	tx := e.f.Begin()
	err := e.ledger.ApplyTransfer(tx, ledger.Transfer{
		Pool:  entitytest.Addr(99),
		From:  zero,
		To:    alice,
		Value: big.NewInt(1),
	})
	assert.True(t, errors.Is(err, entity.ErrPoolNotFound))
}

func (e *env) balanceChange(t *testing.T, logIndex uint64, deltas, fees []*big.Int) error {
	tx := e.f.Begin()
	err := e.ledger.ApplyBalanceChange(tx, ledger.BalanceChange{
		Meta:         model.EventMeta{TxHash: "0x02", LogIndex: logIndex, Timestamp: 2000, BlockNumber: 7},
		PoolID:       e.poolID,
		Provider:     alice,
		Deltas:       deltas,
		ProtocolFees: fees,
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (e *env) poolToken(t *testing.T, token common.Address) *model.PoolToken {
	pt, err := e.f.Begin().PoolToken(e.poolID, entitytest.Key(token))
	require.NoError(t, err)
	return pt
}

// A join followed by an exit of the same magnitudes restores balances.
func TestJoinThenExitRestoresBalances(t *testing.T) {
	e := newEnv(t, pooltype.Stable, usdc, dai)

	require.NoError(t, e.balanceChange(t, 1, []*big.Int{wei("100000000"), wei("50000000000000000000")}, nil))
	assert.True(t, e.poolToken(t, usdc).Balance.Equal(d("100")))
	assert.True(t, e.poolToken(t, dai).Balance.Equal(d("50")))
	assert.True(t, e.pool(t).TotalLiquidity.Equal(d("150")))

	tx := e.f.Begin()
	join, err := entity.Load[model.JoinExit](tx, model.EventID("0x02", 1))
	require.NoError(t, err)
	assert.Equal(t, model.Join, join.Type)
	assert.True(t, join.ValueUSD.Equal(d("150")))

	require.NoError(t, e.balanceChange(t, 2, []*big.Int{wei("-100000000"), wei("-50000000000000000000")}, nil))
	assert.True(t, e.poolToken(t, usdc).Balance.IsZero())
	assert.True(t, e.poolToken(t, dai).Balance.IsZero())

	exit, err := entity.Load[model.JoinExit](e.f.Begin(), model.EventID("0x02", 2))
	require.NoError(t, err)
	assert.Equal(t, model.Exit, exit.Type)
	assert.True(t, exit.Amounts[0].Equal(d("100")))

	token, err := e.f.Begin().Token(usdc)
	require.NoError(t, err)
	assert.True(t, token.TotalBalanceNotional.IsZero())
}

func TestProtocolFeesReduceBalance(t *testing.T) {
	e := newEnv(t, pooltype.Stable, usdc, dai)
	require.NoError(t, e.balanceChange(t, 1,
		[]*big.Int{wei("100000000"), wei("0")},
		[]*big.Int{wei("1000000"), wei("0")}))
	assert.True(t, e.poolToken(t, usdc).Balance.Equal(d("99")))
}

func TestZeroNetDeltaIsExit(t *testing.T) {
	assert.Equal(t, model.Exit, ledger.ClassifyBalanceChange([]*big.Int{big.NewInt(5), big.NewInt(-5)}))
	assert.Equal(t, model.Join, ledger.ClassifyBalanceChange([]*big.Int{big.NewInt(5), big.NewInt(-4)}))
}

func TestPreMintedSharesJoinAdjustsSupply(t *testing.T) {
	e := newEnv(t, pooltype.ComposableStable, usdc, poolAddr)
	e.transfer(t, zero, e.vaultHolder(), "1000000000000000000000", 1)

	require.NoError(t, e.balanceChange(t, 2, []*big.Int{wei("10000000"), wei("10000000000000000000")}, nil))
	assert.True(t, e.pool(t).TotalShares.Equal(d("990")))
	assert.True(t, e.poolToken(t, poolAddr).Balance.IsZero())
	assert.True(t, e.poolToken(t, usdc).Balance.Equal(d("10")))
}

func (e *env) vaultHolder() common.Address {
	return entitytest.Addr(200)
}

func TestMissingPoolTokenIsFatal(t *testing.T) {
	e := newEnv(t, pooltype.Stable, usdc, dai)
	tx := e.f.Begin()
	err := e.ledger.ApplyBalanceManage(tx, ledger.BalanceManage{
		PoolID:       e.poolID,
		Token:        entitytest.Addr(50),
		CashDelta:    big.NewInt(1),
		ManagedDelta: big.NewInt(0),
	})
	assert.True(t, errors.Is(err, entity.ErrPoolTokenNotFound))

	err = e.ledger.ApplyBalanceManage(tx, ledger.BalanceManage{PoolID: "0xnope", Token: usdc, CashDelta: big.NewInt(1), ManagedDelta: big.NewInt(0)})
	assert.True(t, errors.Is(err, entity.ErrPoolNotFound))
}

// After any management operation balance equals cash plus managed.
func TestManagementKeepsBalanceEqualCashPlusManaged(t *testing.T) {
	e := newEnv(t, pooltype.Stable, usdc, dai)
	require.NoError(t, e.balanceChange(t, 1, []*big.Int{wei("100000000"), wei("0")}, nil))

	ops := []struct {
		cash, managed string
		want          model.OperationType
	}{
		{"-40000000", "40000000", model.Withdraw},
		{"0", "5000000", model.Update},
		{"20000000", "-20000000", model.Deposit},
	}
	for i, op := range ops {
		tx := e.f.Begin()
		require.NoError(t, e.ledger.ApplyBalanceManage(tx, ledger.BalanceManage{
			Meta:         model.EventMeta{TxHash: "0x03", LogIndex: uint64(i)},
			PoolID:       e.poolID,
			Token:        usdc,
			CashDelta:    wei(op.cash),
			ManagedDelta: wei(op.managed),
		}))
		created := tx.Created()[0].(*model.ManagementOperation)
		assert.Equal(t, op.want, created.Type)
		require.NoError(t, tx.Commit())

		pt := e.poolToken(t, usdc)
		assert.True(t, pt.Balance.Equal(pt.CashBalance.Add(pt.ManagedBalance)), "op %d", i)
	}
	pt := e.poolToken(t, usdc)
	assert.True(t, pt.Balance.Equal(d("105")))
	assert.True(t, pt.ManagedBalance.Equal(d("25")))
}

func TestManagementRefreshesPoolSnapshot(t *testing.T) {
	e := newEnv(t, pooltype.Stable, usdc, dai)
	require.NoError(t, e.balanceChange(t, 1, []*big.Int{wei("100000000"), wei("0")}, nil))

	const ts = 3*86400 + 10
	tx := e.f.Begin()
	require.NoError(t, e.ledger.ApplyBalanceManage(tx, ledger.BalanceManage{
		Meta:         model.EventMeta{TxHash: "0x04", LogIndex: 1, Timestamp: ts},
		PoolID:       e.poolID,
		Token:        usdc,
		CashDelta:    wei("-40000000"),
		ManagedDelta: wei("50000000"),
	}))
	require.NoError(t, tx.Commit())

	snap, err := entity.Load[model.PoolSnapshot](e.f.Begin(), entity.SnapshotID(e.poolID, snapshot.DayID(ts)))
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Amounts, 2)
	assert.True(t, snap.Amounts[0].Equal(d("110")), snap.Amounts[0].String())
}

func TestInternalBalanceChange(t *testing.T) {
	e := newEnv(t, pooltype.Stable, usdc, dai)
	for _, delta := range []string{"2500000", "-500000"} {
		tx := e.f.Begin()
		require.NoError(t, e.ledger.ApplyInternalBalanceChange(tx, ledger.InternalBalanceChange{User: bob, Token: usdc, Delta: wei(delta)}))
		require.NoError(t, tx.Commit())
	}
	b, err := e.f.Begin().InternalBalance(entitytest.Key(bob), entitytest.Key(usdc))
	require.NoError(t, err)
	assert.True(t, b.Balance.Equal(d("2")))
}
