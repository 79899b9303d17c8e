package model

// Event names produced by the decoder.
const (
	EventPoolCreated              = "PoolCreated"
	EventTransfer                 = "Transfer"
	EventSwapFeePercentageChanged = "SwapFeePercentageChanged"
	EventAmpUpdateStarted         = "AmpUpdateStarted"
	EventAmpUpdateStopped         = "AmpUpdateStopped"
	EventSwap                     = "Swap"
	EventPoolBalanceChanged       = "PoolBalanceChanged"
	EventPoolBalanceManaged       = "PoolBalanceManaged"
	EventInternalBalanceChanged   = "InternalBalanceChanged"
)

// PoolCreatedEventData is emitted by a pool factory.
type PoolCreatedEventData struct {
	Pool            string `json:"pool"`
	Factory         string `json:"factory"`
	PoolType        string `json:"pool_type"`
	PoolTypeVersion int    `json:"pool_type_version"`
}

// TransferEventData is a pool share token transfer.
type TransferEventData struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// SwapFeePercentageChangedEventData carries the new raw fee percentage.
type SwapFeePercentageChangedEventData struct {
	SwapFeePercentage string `json:"swap_fee_percentage"`
}

// AmpUpdateStartedEventData describes an amplification ramp.
type AmpUpdateStartedEventData struct {
	StartValue string `json:"start_value"`
	EndValue   string `json:"end_value"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// AmpUpdateStoppedEventData carries the amplification value at stop.
type AmpUpdateStoppedEventData struct {
	CurrentValue string `json:"current_value"`
}

// SwapEventData is the vault Swap event payload.
type SwapEventData struct {
	PoolID    string `json:"pool_id"`
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

// PoolBalanceChangedEventData is a join or exit. Deltas and protocol fees are
// aligned with Tokens.
type PoolBalanceChangedEventData struct {
	PoolID             string   `json:"pool_id"`
	LiquidityProvider  string   `json:"liquidity_provider"`
	Tokens             []string `json:"tokens"`
	Deltas             []string `json:"deltas"`
	ProtocolFeeAmounts []string `json:"protocol_fee_amounts"`
}

// PoolBalanceManagedEventData is an asset-manager cash/managed move.
type PoolBalanceManagedEventData struct {
	PoolID       string `json:"pool_id"`
	AssetManager string `json:"asset_manager"`
	Token        string `json:"token"`
	CashDelta    string `json:"cash_delta"`
	ManagedDelta string `json:"managed_delta"`
}

// InternalBalanceChangedEventData is a change of a user's vault balance.
type InternalBalanceChangedEventData struct {
	User  string `json:"user"`
	Token string `json:"token"`
	Delta string `json:"delta"`
}
