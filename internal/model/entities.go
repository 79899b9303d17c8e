package model

import (
	"math/big"

	"github.com/shopspring/decimal"

	"vaultScope/internal/pooltype"
)

// VaultID is the id of the singleton vault aggregate.
const VaultID = "2"

const (
	KindVault                   = "Vault"
	KindPool                    = "Pool"
	KindPoolAddress             = "PoolAddress"
	KindPoolToken               = "PoolToken"
	KindToken                   = "Token"
	KindUser                    = "User"
	KindPoolShare               = "PoolShare"
	KindUserInternalBalance     = "UserInternalBalance"
	KindSwap                    = "Swap"
	KindJoinExit                = "JoinExit"
	KindManagementOperation     = "ManagementOperation"
	KindSwapFeeUpdate           = "SwapFeeUpdate"
	KindAmpUpdate               = "AmpUpdate"
	KindTokenPrice              = "TokenPrice"
	KindLatestPrice             = "LatestPrice"
	KindPoolHistoricalLiquidity = "PoolHistoricalLiquidity"
	KindTradePair               = "TradePair"
	KindVaultSnapshot           = "VaultSnapshot"
	KindPoolSnapshot            = "PoolSnapshot"
	KindTokenSnapshot           = "TokenSnapshot"
	KindTradePairSnapshot       = "TradePairSnapshot"
	KindCursor                  = "Cursor"
)

// Vault aggregates protocol-wide counters.
type Vault struct {
	ID              string          `json:"id"`
	PoolCount       uint64          `json:"pool_count"`
	TotalSwapCount  uint64          `json:"total_swap_count"`
	TotalSwapVolume decimal.Decimal `json:"total_swap_volume"`
	TotalSwapFee    decimal.Decimal `json:"total_swap_fee"`
	TotalLiquidity  decimal.Decimal `json:"total_liquidity"`
}

func (v *Vault) EntityKind() string { return KindVault }
func (v *Vault) EntityID() string   { return v.ID }

// Pool is a liquidity pool registered with the vault.
type Pool struct {
	ID              string          `json:"id"`
	Address         string          `json:"address"`
	PoolType        pooltype.Kind   `json:"pool_type"`
	PoolTypeVersion int             `json:"pool_type_version"`
	Factory         string          `json:"factory"`
	Owner           string          `json:"owner,omitempty"`
	Name            string          `json:"name"`
	Symbol          string          `json:"symbol"`
	SwapFee         decimal.Decimal `json:"swap_fee"`
	TotalWeight     decimal.Decimal `json:"total_weight"`
	TotalShares     decimal.Decimal `json:"total_shares"`
	TotalLiquidity  decimal.Decimal `json:"total_liquidity"`
	TotalSwapVolume decimal.Decimal `json:"total_swap_volume"`
	TotalSwapFee    decimal.Decimal `json:"total_swap_fee"`
	SwapsCount      uint64          `json:"swaps_count"`
	HoldersCount    int64           `json:"holders_count"`
	TokensList      []string        `json:"tokens_list"`
	Amp             *big.Int        `json:"amp,omitempty"`
	SwapEnabled     bool            `json:"swap_enabled"`
	CreateTime      uint64          `json:"create_time"`
	Tx              string          `json:"tx"`
}

func (p *Pool) EntityKind() string { return KindPool }
func (p *Pool) EntityID() string   { return p.ID }

// TokenIndex returns the position of token in the pool's token list.
func (p *Pool) TokenIndex(token string) int {
	for i, t := range p.TokensList {
		if t == token {
			return i
		}
	}
	return -1
}

// PoolAddress maps a pool contract address to its pool id.
type PoolAddress struct {
	ID     string `json:"id"`
	PoolID string `json:"pool_id"`
}

func (p *PoolAddress) EntityKind() string { return KindPoolAddress }
func (p *PoolAddress) EntityID() string   { return p.ID }

// PoolToken is a token position inside a pool.
type PoolToken struct {
	ID             string              `json:"id"`
	PoolID         string              `json:"pool_id"`
	Address        string              `json:"address"`
	AssetManager   string              `json:"asset_manager"`
	Name           string              `json:"name"`
	Symbol         string              `json:"symbol"`
	Decimals       uint8               `json:"decimals"`
	Balance        decimal.Decimal     `json:"balance"`
	CashBalance    decimal.Decimal     `json:"cash_balance"`
	ManagedBalance decimal.Decimal     `json:"managed_balance"`
	Weight         decimal.NullDecimal `json:"weight"`
	PriceRate      decimal.Decimal     `json:"price_rate"`
}

func (p *PoolToken) EntityKind() string { return KindPoolToken }
func (p *PoolToken) EntityID() string   { return p.ID }

// Token is an ERC20 seen by the vault.
type Token struct {
	ID                   string              `json:"id"`
	Address              string              `json:"address"`
	Name                 string              `json:"name"`
	Symbol               string              `json:"symbol"`
	Decimals             uint8               `json:"decimals"`
	Pool                 string              `json:"pool,omitempty"`
	TotalBalanceNotional decimal.Decimal     `json:"total_balance_notional"`
	TotalBalanceUSD      decimal.Decimal     `json:"total_balance_usd"`
	TotalSwapCount       uint64              `json:"total_swap_count"`
	TotalVolumeNotional  decimal.Decimal     `json:"total_volume_notional"`
	TotalVolumeUSD       decimal.Decimal     `json:"total_volume_usd"`
	LatestPrice          string              `json:"latest_price,omitempty"`
	LatestUSDPrice       decimal.NullDecimal `json:"latest_usd_price"`
}

func (t *Token) EntityKind() string { return KindToken }
func (t *Token) EntityID() string   { return t.ID }

// User is any address that touched the vault.
type User struct {
	ID string `json:"id"`
}

func (u *User) EntityKind() string { return KindUser }
func (u *User) EntityID() string   { return u.ID }

// PoolShare is a holder's balance of a pool's share token.
type PoolShare struct {
	ID          string          `json:"id"`
	PoolID      string          `json:"pool_id"`
	UserAddress string          `json:"user_address"`
	Balance     decimal.Decimal `json:"balance"`
}

func (s *PoolShare) EntityKind() string { return KindPoolShare }
func (s *PoolShare) EntityID() string   { return s.ID }

// UserInternalBalance is a user's vault-internal token balance.
type UserInternalBalance struct {
	ID          string          `json:"id"`
	UserAddress string          `json:"user_address"`
	Token       string          `json:"token"`
	Balance     decimal.Decimal `json:"balance"`
}

func (b *UserInternalBalance) EntityKind() string { return KindUserInternalBalance }
func (b *UserInternalBalance) EntityID() string   { return b.ID }

// Swap is an immutable trade record.
type Swap struct {
	ID             string          `json:"id"`
	PoolID         string          `json:"pool_id"`
	TokenIn        string          `json:"token_in"`
	TokenInSym     string          `json:"token_in_sym"`
	TokenOut       string          `json:"token_out"`
	TokenOutSym    string          `json:"token_out_sym"`
	TokenAmountIn  decimal.Decimal `json:"token_amount_in"`
	TokenAmountOut decimal.Decimal `json:"token_amount_out"`
	ValueUSD       decimal.Decimal `json:"value_usd"`
	FeeUSD         decimal.Decimal `json:"fee_usd"`
	FeeUnsupported bool            `json:"fee_unsupported,omitempty"`
	BlockNumber    uint64          `json:"block_number"`
	Timestamp      uint64          `json:"timestamp"`
	Tx             string          `json:"tx"`
}

func (s *Swap) EntityKind() string { return KindSwap }
func (s *Swap) EntityID() string   { return s.ID }

// JoinExitType distinguishes liquidity additions from removals.
type JoinExitType string

const (
	Join JoinExitType = "Join"
	Exit JoinExitType = "Exit"
)

// JoinExit is an immutable liquidity change record.
type JoinExit struct {
	ID        string            `json:"id"`
	Type      JoinExitType      `json:"type"`
	Sender    string            `json:"sender"`
	PoolID    string            `json:"pool_id"`
	Amounts   []decimal.Decimal `json:"amounts"`
	ValueUSD  decimal.Decimal   `json:"value_usd"`
	Timestamp uint64            `json:"timestamp"`
	Tx        string            `json:"tx"`
}

func (j *JoinExit) EntityKind() string { return KindJoinExit }
func (j *JoinExit) EntityID() string   { return j.ID }

// OperationType classifies an asset-manager balance operation.
type OperationType string

const (
	Deposit  OperationType = "Deposit"
	Withdraw OperationType = "Withdraw"
	Update   OperationType = "Update"
)

// ManagementOperation is an immutable asset-manager record.
type ManagementOperation struct {
	ID           string          `json:"id"`
	Type         OperationType   `json:"type"`
	PoolTokenID  string          `json:"pool_token_id"`
	CashDelta    decimal.Decimal `json:"cash_delta"`
	ManagedDelta decimal.Decimal `json:"managed_delta"`
	Timestamp    uint64          `json:"timestamp"`
}

func (m *ManagementOperation) EntityKind() string { return KindManagementOperation }
func (m *ManagementOperation) EntityID() string   { return m.ID }

// SwapFeeUpdate records a change of a pool's fee percentage.
type SwapFeeUpdate struct {
	ID                 string          `json:"id"`
	PoolID             string          `json:"pool_id"`
	ScheduledTimestamp uint64          `json:"scheduled_timestamp"`
	StartTimestamp     uint64          `json:"start_timestamp"`
	EndTimestamp       uint64          `json:"end_timestamp"`
	StartSwapFee       decimal.Decimal `json:"start_swap_fee"`
	EndSwapFee         decimal.Decimal `json:"end_swap_fee"`
}

func (s *SwapFeeUpdate) EntityKind() string { return KindSwapFeeUpdate }
func (s *SwapFeeUpdate) EntityID() string   { return s.ID }

// AmpUpdate records an amplification ramp or stop.
type AmpUpdate struct {
	ID                 string   `json:"id"`
	PoolID             string   `json:"pool_id"`
	ScheduledTimestamp uint64   `json:"scheduled_timestamp"`
	StartTimestamp     uint64   `json:"start_timestamp"`
	EndTimestamp       uint64   `json:"end_timestamp"`
	StartAmp           *big.Int `json:"start_amp"`
	EndAmp             *big.Int `json:"end_amp"`
}

func (a *AmpUpdate) EntityKind() string { return KindAmpUpdate }
func (a *AmpUpdate) EntityID() string   { return a.ID }

// TokenPrice is an immutable price sample observed in a swap.
type TokenPrice struct {
	ID           string          `json:"id"`
	PoolID       string          `json:"pool_id"`
	Asset        string          `json:"asset"`
	PricingAsset string          `json:"pricing_asset"`
	Amount       decimal.Decimal `json:"amount"`
	Price        decimal.Decimal `json:"price"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
	BlockNumber  uint64          `json:"block_number"`
	Timestamp    uint64          `json:"timestamp"`
}

func (p *TokenPrice) EntityKind() string { return KindTokenPrice }
func (p *TokenPrice) EntityID() string   { return p.ID }

// LatestPrice is the most recent price of an asset in a pricing asset.
type LatestPrice struct {
	ID           string          `json:"id"`
	Asset        string          `json:"asset"`
	PricingAsset string          `json:"pricing_asset"`
	PoolID       string          `json:"pool_id"`
	Price        decimal.Decimal `json:"price"`
	BlockNumber  uint64          `json:"block_number"`
}

func (p *LatestPrice) EntityKind() string { return KindLatestPrice }
func (p *LatestPrice) EntityID() string   { return p.ID }

// PoolHistoricalLiquidity is a pool valuation in a pricing asset at a block.
type PoolHistoricalLiquidity struct {
	ID              string          `json:"id"`
	PoolID          string          `json:"pool_id"`
	PricingAsset    string          `json:"pricing_asset"`
	BlockNumber     uint64          `json:"block_number"`
	PoolTotalShares decimal.Decimal `json:"pool_total_shares"`
	PoolLiquidity   decimal.Decimal `json:"pool_liquidity"`
	PoolShareValue  decimal.Decimal `json:"pool_share_value"`
}

func (h *PoolHistoricalLiquidity) EntityKind() string { return KindPoolHistoricalLiquidity }
func (h *PoolHistoricalLiquidity) EntityID() string   { return h.ID }

// TradePair aggregates swaps between two tokens in either direction.
type TradePair struct {
	ID              string          `json:"id"`
	Token0          string          `json:"token0"`
	Token1          string          `json:"token1"`
	TotalSwapVolume decimal.Decimal `json:"total_swap_volume"`
	TotalSwapFee    decimal.Decimal `json:"total_swap_fee"`
}

func (t *TradePair) EntityKind() string { return KindTradePair }
func (t *TradePair) EntityID() string   { return t.ID }

// Cursor is the position of the last applied event.
type Cursor struct {
	ID          string `json:"id"`
	BlockNumber uint64 `json:"block_number"`
	LogIndex    uint64 `json:"log_index"`
}

func (c *Cursor) EntityKind() string { return KindCursor }
func (c *Cursor) EntityID() string   { return c.ID }

// Covers reports whether the event at (block, logIndex) was already applied.
func (c *Cursor) Covers(block, logIndex uint64) bool {
	if c == nil {
		return false
	}
	if block != c.BlockNumber {
		return block < c.BlockNumber
	}
	return logIndex <= c.LogIndex
}
