package model

import "github.com/shopspring/decimal"

// VaultSnapshot is the daily copy of the vault counters.
type VaultSnapshot struct {
	ID              string          `json:"id"`
	Vault           string          `json:"vault"`
	Timestamp       uint64          `json:"timestamp"`
	PoolCount       uint64          `json:"pool_count"`
	TotalSwapCount  uint64          `json:"total_swap_count"`
	TotalSwapVolume decimal.Decimal `json:"total_swap_volume"`
	TotalSwapFee    decimal.Decimal `json:"total_swap_fee"`
	TotalLiquidity  decimal.Decimal `json:"total_liquidity"`
}

func (s *VaultSnapshot) EntityKind() string { return KindVaultSnapshot }
func (s *VaultSnapshot) EntityID() string   { return s.ID }

// PoolSnapshot is the daily copy of a pool's aggregates.
type PoolSnapshot struct {
	ID           string            `json:"id"`
	PoolID       string            `json:"pool_id"`
	Timestamp    uint64            `json:"timestamp"`
	Amounts      []decimal.Decimal `json:"amounts"`
	TotalShares  decimal.Decimal   `json:"total_shares"`
	SwapVolume   decimal.Decimal   `json:"swap_volume"`
	SwapFees     decimal.Decimal   `json:"swap_fees"`
	Liquidity    decimal.Decimal   `json:"liquidity"`
	SwapsCount   uint64            `json:"swaps_count"`
	HoldersCount int64             `json:"holders_count"`
}

func (s *PoolSnapshot) EntityKind() string { return KindPoolSnapshot }
func (s *PoolSnapshot) EntityID() string   { return s.ID }

// TokenSnapshot is the daily copy of a token's aggregates.
type TokenSnapshot struct {
	ID                   string          `json:"id"`
	Token                string          `json:"token"`
	Timestamp            uint64          `json:"timestamp"`
	TotalBalanceNotional decimal.Decimal `json:"total_balance_notional"`
	TotalBalanceUSD      decimal.Decimal `json:"total_balance_usd"`
	TotalSwapCount       uint64          `json:"total_swap_count"`
	TotalVolumeNotional  decimal.Decimal `json:"total_volume_notional"`
	TotalVolumeUSD       decimal.Decimal `json:"total_volume_usd"`
}

func (s *TokenSnapshot) EntityKind() string { return KindTokenSnapshot }
func (s *TokenSnapshot) EntityID() string   { return s.ID }

// TradePairSnapshot is the daily copy of a trade pair's aggregates.
type TradePairSnapshot struct {
	ID              string          `json:"id"`
	Pair            string          `json:"pair"`
	Timestamp       uint64          `json:"timestamp"`
	TotalSwapVolume decimal.Decimal `json:"total_swap_volume"`
	TotalSwapFee    decimal.Decimal `json:"total_swap_fee"`
}

func (s *TradePairSnapshot) EntityKind() string { return KindTradePairSnapshot }
func (s *TradePairSnapshot) EntityID() string   { return s.ID }
