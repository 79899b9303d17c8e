package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/entity"
	"vaultScope/internal/numeric"
)

// InternalBalanceChange is a change of a user's balance held by the vault.
type InternalBalanceChange struct {
	User  common.Address
	Token common.Address
	Delta *big.Int
}

func (l *Ledger) ApplyInternalBalanceChange(tx *entity.Tx, ev InternalBalanceChange) error {
	user, err := tx.User(ev.User)
	if err != nil {
		return err
	}
	token, err := tx.Token(ev.Token)
	if err != nil {
		return err
	}
	b, err := tx.InternalBalance(user.ID, token.ID)
	if err != nil {
		return err
	}
	b.Balance = b.Balance.Add(numeric.ScaleDown(ev.Delta, token.Decimals))
	tx.Save(b)
	return nil
}
