package entity

import (
	"sort"
	"strconv"

	"vaultScope/internal/model"
)

func PoolTokenID(poolID, token string) string {
	return model.JoinID(poolID, token)
}

func PoolShareID(poolAddress, holder string) string {
	return model.JoinID(poolAddress, holder)
}

func InternalBalanceID(user, token string) string {
	return model.JoinID(user, token)
}

// SnapshotID keys a daily bucket of owner.
func SnapshotID(owner string, dayID uint64) string {
	return model.JoinID(owner, strconv.FormatUint(dayID, 10))
}

func LatestPriceID(asset, pricingAsset string) string {
	return model.JoinID(asset, pricingAsset)
}

func TokenPriceID(poolID, asset, pricingAsset string, block uint64) string {
	return model.JoinID(poolID, asset, pricingAsset, strconv.FormatUint(block, 10))
}

func HistoricalLiquidityID(poolID, pricingAsset string, block uint64) string {
	return model.JoinID(poolID, pricingAsset, strconv.FormatUint(block, 10))
}

// TradePairID is order independent.
func TradePairID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return model.JoinID(pair[0], pair[1])
}
