package process_test

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultScope/internal/entity"
	"vaultScope/internal/entity/entitytest"
	"vaultScope/internal/handler"
	"vaultScope/internal/model"
	"vaultScope/internal/pricing"
	"vaultScope/internal/process"
)

func line(t *testing.T, name string, emitter common.Address, logIndex uint64, payload interface{}) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	rec := model.TypedEventRecord{
		BlockNumber: 10,
		TxHash:      "0x01",
		LogIndex:    logIndex,
		Address:     emitter.Hex(),
		EventName:   name,
		Timestamp:   1700000000,
		Decoded:     raw,
	}
	out, err := json.Marshal(rec)
	require.NoError(t, err)
	return string(out)
}

func TestConsumeAppliesAndResumes(t *testing.T) {
	f := entitytest.NewFixture()
	usdc, dai, pool, holder := entitytest.Addr(1), entitytest.Addr(2), entitytest.Addr(9), entitytest.Addr(20)
	f.Reader.AddToken(usdc, "USDC", 6)
	f.Reader.AddToken(dai, "DAI", 18)
	f.Reader.Pools[pool] = &entitytest.PoolInfo{
		ID:     entitytest.PoolIDFor(pool),
		Amp:    big.NewInt(100),
		Tokens: []common.Address{usdc, dai},
	}

	input := strings.Join([]string{
		line(t, model.EventPoolCreated, entitytest.Addr(10), 0, model.PoolCreatedEventData{Pool: pool.Hex(), PoolType: "Stable"}),
		"{not json",
		"",
		line(t, model.EventTransfer, pool, 1, model.TransferEventData{From: common.Address{}.Hex(), To: holder.Hex(), Value: "1000000000000000000"}),
		line(t, model.EventTransfer, entitytest.Addr(77), 2, model.TransferEventData{From: common.Address{}.Hex(), To: holder.Hex(), Value: "1"}),
	}, "\n")

	newRunner := func() *process.Runner {
		d := handler.NewDispatcher(f.Resolver, pricing.New(pricing.Config{}, nil), handler.Options{})
		return process.NewRunner(d, nil)
	}

	stats, err := newRunner().Consume(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, process.Stats{Total: 4, Applied: 2, Dropped: 1, Failed: 1}, stats)

	p, err := f.Begin().Pool(model.HashKey(entitytest.PoolIDFor(pool)))
	require.NoError(t, err)
	assert.Equal(t, "1", p.TotalShares.String())
	assert.EqualValues(t, 1, p.HoldersCount)

	// A second pass over the same input changes nothing.
	stats, err = newRunner().Consume(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Skipped)

	p, err = f.Begin().Pool(model.HashKey(entitytest.PoolIDFor(pool)))
	require.NoError(t, err)
	assert.Equal(t, "1", p.TotalShares.String())

	c, err := entity.Load[model.Cursor](f.Begin(), handler.DefaultCursorName)
	require.NoError(t, err)
	assert.EqualValues(t, 2, c.LogIndex)
}
