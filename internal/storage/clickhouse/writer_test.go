package clickhouse

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultScope/internal/model"
)

func TestRowsSplitsExportedKinds(t *testing.T) {
	records := []model.Entity{
		&model.Swap{ID: "0xaa1", PoolID: "0xp", TokenAmountIn: decimal.RequireFromString("1.5"), Timestamp: 86400, BlockNumber: 9},
		&model.JoinExit{ID: "0xaa2"},
		&model.TokenPrice{ID: "0xp-0xa-0xb-9", Price: decimal.NewFromInt(3), Timestamp: 86400},
	}
	swaps, prices := Rows(records)
	require.Len(t, swaps, 1)
	require.Len(t, prices, 1)
	assert.Equal(t, "1.5", swaps[0].AmountIn)
	assert.Equal(t, int64(86400), swaps[0].EventTime.Unix())
	assert.Equal(t, uint64(9), swaps[0].BlockNumber)
	assert.Equal(t, "3", prices[0].Price)
}
