package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"vaultScope/internal/entity"
	"vaultScope/internal/model"
	"vaultScope/internal/numeric"
	"vaultScope/internal/snapshot"
)

// Transfer is a movement of a pool's share token.
type Transfer struct {
	Meta  model.EventMeta
	Pool  common.Address
	From  common.Address
	To    common.Address
	Value *big.Int
}

// ApplyTransfer mints, burns or moves pool shares. Holder counts move only
// when a balance crosses zero.
func (l *Ledger) ApplyTransfer(tx *entity.Tx, ev Transfer) error {
	pool, err := tx.PoolByAddress(ev.Pool)
	if err != nil {
		return err
	}
	isMint := ev.From == (common.Address{})
	isBurn := ev.To == (common.Address{})
	value := numeric.ScaleShares(ev.Value)

	if _, err := tx.User(ev.From); err != nil {
		return err
	}
	if _, err := tx.User(ev.To); err != nil {
		return err
	}
	shareFrom, err := tx.PoolShare(pool, ev.From)
	if err != nil {
		return err
	}
	shareTo, err := tx.PoolShare(pool, ev.To)
	if err != nil {
		return err
	}
	fromBefore := shareFrom.Balance
	toBefore := shareTo.Balance

	switch {
	case isMint:
		shareTo.Balance = shareTo.Balance.Add(value)
		tx.Save(shareTo)
		pool.TotalShares = pool.TotalShares.Add(value)
	case isBurn:
		shareFrom.Balance = shareFrom.Balance.Sub(value)
		tx.Save(shareFrom)
		pool.TotalShares = pool.TotalShares.Sub(value)
	default:
		shareTo.Balance = shareTo.Balance.Add(value)
		shareFrom.Balance = shareFrom.Balance.Sub(value)
		tx.Save(shareTo)
		tx.Save(shareFrom)
	}

	if !isBurn && toBefore.IsZero() && !shareTo.Balance.IsZero() {
		pool.HoldersCount++
	}
	if !isMint && !fromBefore.IsZero() && shareFrom.Balance.IsZero() {
		if pool.HoldersCount > 0 {
			pool.HoldersCount--
		} else {
			l.logger.Warn("holders count would go negative", zap.String("pool", pool.ID))
		}
	}

	tx.Save(pool)
	return snapshot.RefreshPool(tx, pool, ev.Meta.Timestamp)
}
