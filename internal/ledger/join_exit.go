package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"vaultScope/internal/entity"
	"vaultScope/internal/model"
	"vaultScope/internal/numeric"
	"vaultScope/internal/snapshot"
)

// BalanceChange is a join or exit. Deltas and fees follow the pool's token
// list order.
type BalanceChange struct {
	Meta         model.EventMeta
	PoolID       string
	Provider     common.Address
	Deltas       []*big.Int
	ProtocolFees []*big.Int
}

// ClassifyBalanceChange treats a positive net delta as a join and anything
// else, including zero, as an exit.
func ClassifyBalanceChange(deltas []*big.Int) model.JoinExitType {
	if numeric.Sum(deltas).Sign() > 0 {
		return model.Join
	}
	return model.Exit
}

// ApplyBalanceChange updates pool token balances for a join or exit and
// records the liquidity change.
func (l *Ledger) ApplyBalanceChange(tx *entity.Tx, ev BalanceChange) error {
	pool, err := tx.Pool(ev.PoolID)
	if err != nil {
		return err
	}
	if len(ev.Deltas) != len(pool.TokensList) {
		return fmt.Errorf("pool %s has %d tokens, event carries %d deltas", pool.ID, len(pool.TokensList), len(ev.Deltas))
	}
	kind := ClassifyBalanceChange(ev.Deltas)
	ts := ev.Meta.Timestamp

	amounts := make([]decimal.Decimal, len(pool.TokensList))
	valueUSD := decimal.Zero
	for i, tokenKey := range pool.TokensList {
		pt, err := tx.PoolToken(pool.ID, tokenKey)
		if err != nil {
			return err
		}
		delta := numeric.ScaleDown(ev.Deltas[i], pt.Decimals)
		fee := decimal.Zero
		if i < len(ev.ProtocolFees) {
			fee = numeric.ScaleDown(ev.ProtocolFees[i], pt.Decimals)
		}
		amount := delta
		if kind == model.Exit {
			amount = delta.Neg()
		}
		amounts[i] = amount

		// Pre-minted supply handed out on a join moves totalShares only.
		if kind == model.Join && pool.PoolType.HasPreMintedShares() && tokenKey == pool.Address {
			pool.TotalShares = pool.TotalShares.Sub(numeric.ScaleShares(ev.Deltas[i]))
			continue
		}

		net := delta.Sub(fee)
		pt.Balance = pt.Balance.Add(net)
		pt.CashBalance = pt.CashBalance.Add(net)
		tx.Save(pt)

		usd, err := l.oracle.ValueInUSD(tx, amount, tokenKey)
		if err != nil {
			return err
		}
		if v, ok := usd.Get(); ok {
			valueUSD = valueUSD.Add(v)
		}

		token, err := tx.TokenByKey(tokenKey)
		if err != nil {
			return err
		}
		if err := l.AdjustTokenBalance(tx, token, net, ts); err != nil {
			return err
		}
	}

	if _, err := tx.User(ev.Provider); err != nil {
		return err
	}
	tx.Insert(&model.JoinExit{
		ID:        ev.Meta.ID(),
		Type:      kind,
		Sender:    model.AddressKey(ev.Provider),
		PoolID:    pool.ID,
		Amounts:   amounts,
		ValueUSD:  valueUSD,
		Timestamp: ts,
		Tx:        ev.Meta.TxHash,
	})

	tx.Save(pool)
	if err := snapshot.RefreshPool(tx, pool, ts); err != nil {
		return err
	}
	if err := l.oracle.CaptureHistoricalLiquidity(tx, pool, ev.Meta.BlockNumber); err != nil {
		return err
	}
	return l.oracle.UpdatePoolLiquidity(tx, pool, ts)
}
