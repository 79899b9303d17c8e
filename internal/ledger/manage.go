package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/entity"
	"vaultScope/internal/model"
	"vaultScope/internal/numeric"
	"vaultScope/internal/snapshot"
)

// BalanceManage is an asset manager moving a token between cash and managed.
type BalanceManage struct {
	Meta         model.EventMeta
	PoolID       string
	Token        common.Address
	AssetManager common.Address
	CashDelta    *big.Int
	ManagedDelta *big.Int
}

// OperationTypeFor classifies a management operation by its cash delta.
func OperationTypeFor(cashDelta *big.Int) model.OperationType {
	switch cashDelta.Sign() {
	case 1:
		return model.Deposit
	case -1:
		return model.Withdraw
	default:
		return model.Update
	}
}

// ApplyBalanceManage moves cash and managed balances independently; the
// total balance moves by their sum.
func (l *Ledger) ApplyBalanceManage(tx *entity.Tx, ev BalanceManage) error {
	pool, err := tx.Pool(ev.PoolID)
	if err != nil {
		return err
	}
	pt, err := tx.PoolToken(pool.ID, model.AddressKey(ev.Token))
	if err != nil {
		return err
	}
	cash := numeric.ScaleDown(ev.CashDelta, pt.Decimals)
	managed := numeric.ScaleDown(ev.ManagedDelta, pt.Decimals)

	pt.CashBalance = pt.CashBalance.Add(cash)
	pt.ManagedBalance = pt.ManagedBalance.Add(managed)
	pt.Balance = pt.Balance.Add(cash.Add(managed))
	tx.Save(pt)

	tx.Insert(&model.ManagementOperation{
		ID:           ev.Meta.ID(),
		Type:         OperationTypeFor(ev.CashDelta),
		PoolTokenID:  pt.ID,
		CashDelta:    cash,
		ManagedDelta: managed,
		Timestamp:    ev.Meta.Timestamp,
	})
	return snapshot.RefreshPool(tx, pool, ev.Meta.Timestamp)
}
