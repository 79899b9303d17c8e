package handler

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/ledger"
	"vaultScope/internal/model"
	"vaultScope/internal/numeric"
	"vaultScope/internal/swap"
)

func parseInt(field, value string) (*big.Int, error) {
	v, err := numeric.ParseBigInt(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, field, err)
	}
	return v, nil
}

func parseTimestamp(field, value string) (uint64, error) {
	v, err := parseInt(field, value)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: %s: %s out of range", ErrMalformedEvent, field, value)
	}
	return v.Uint64(), nil
}

func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%w: %s: invalid address %q", ErrMalformedEvent, field, value)
	}
	return common.HexToAddress(value), nil
}

func parsePoolID(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if len(v) != 66 || !strings.HasPrefix(v, "0x") {
		return "", fmt.Errorf("%w: invalid pool id %q", ErrMalformedEvent, value)
	}
	return v, nil
}

func transferFromPayload(meta model.EventMeta, emitter string, data model.TransferEventData) (ledger.Transfer, error) {
	pool, err := parseAddress("address", emitter)
	if err != nil {
		return ledger.Transfer{}, err
	}
	from, err := parseAddress("from", data.From)
	if err != nil {
		return ledger.Transfer{}, err
	}
	to, err := parseAddress("to", data.To)
	if err != nil {
		return ledger.Transfer{}, err
	}
	value, err := parseInt("value", data.Value)
	if err != nil {
		return ledger.Transfer{}, err
	}
	return ledger.Transfer{Meta: meta, Pool: pool, From: from, To: to, Value: value}, nil
}

func swapFromPayload(meta model.EventMeta, data model.SwapEventData) (swap.Swap, error) {
	poolID, err := parsePoolID(data.PoolID)
	if err != nil {
		return swap.Swap{}, err
	}
	in, err := parseAddress("token_in", data.TokenIn)
	if err != nil {
		return swap.Swap{}, err
	}
	out, err := parseAddress("token_out", data.TokenOut)
	if err != nil {
		return swap.Swap{}, err
	}
	amountIn, err := parseInt("amount_in", data.AmountIn)
	if err != nil {
		return swap.Swap{}, err
	}
	amountOut, err := parseInt("amount_out", data.AmountOut)
	if err != nil {
		return swap.Swap{}, err
	}
	return swap.Swap{Meta: meta, PoolID: poolID, TokenIn: in, TokenOut: out, AmountIn: amountIn, AmountOut: amountOut}, nil
}

func balanceChangeFromPayload(meta model.EventMeta, data model.PoolBalanceChangedEventData) (ledger.BalanceChange, error) {
	poolID, err := parsePoolID(data.PoolID)
	if err != nil {
		return ledger.BalanceChange{}, err
	}
	provider, err := parseAddress("liquidity_provider", data.LiquidityProvider)
	if err != nil {
		return ledger.BalanceChange{}, err
	}
	deltas, err := numeric.ParseBigInts(data.Deltas)
	if err != nil {
		return ledger.BalanceChange{}, fmt.Errorf("%w: deltas: %v", ErrMalformedEvent, err)
	}
	fees, err := numeric.ParseBigInts(data.ProtocolFeeAmounts)
	if err != nil {
		return ledger.BalanceChange{}, fmt.Errorf("%w: protocol fees: %v", ErrMalformedEvent, err)
	}
	return ledger.BalanceChange{Meta: meta, PoolID: poolID, Provider: provider, Deltas: deltas, ProtocolFees: fees}, nil
}

func balanceManageFromPayload(meta model.EventMeta, data model.PoolBalanceManagedEventData) (ledger.BalanceManage, error) {
	poolID, err := parsePoolID(data.PoolID)
	if err != nil {
		return ledger.BalanceManage{}, err
	}
	token, err := parseAddress("token", data.Token)
	if err != nil {
		return ledger.BalanceManage{}, err
	}
	manager, err := parseAddress("asset_manager", data.AssetManager)
	if err != nil {
		return ledger.BalanceManage{}, err
	}
	cash, err := parseInt("cash_delta", data.CashDelta)
	if err != nil {
		return ledger.BalanceManage{}, err
	}
	managed, err := parseInt("managed_delta", data.ManagedDelta)
	if err != nil {
		return ledger.BalanceManage{}, err
	}
	return ledger.BalanceManage{
		Meta:         meta,
		PoolID:       poolID,
		Token:        token,
		AssetManager: manager,
		CashDelta:    cash,
		ManagedDelta: managed,
	}, nil
}

func internalBalanceFromPayload(data model.InternalBalanceChangedEventData) (ledger.InternalBalanceChange, error) {
	user, err := parseAddress("user", data.User)
	if err != nil {
		return ledger.InternalBalanceChange{}, err
	}
	token, err := parseAddress("token", data.Token)
	if err != nil {
		return ledger.InternalBalanceChange{}, err
	}
	delta, err := parseInt("delta", data.Delta)
	if err != nil {
		return ledger.InternalBalanceChange{}, err
	}
	return ledger.InternalBalanceChange{User: user, Token: token, Delta: delta}, nil
}
