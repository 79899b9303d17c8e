// Package ledger applies balance and share movements to pools, tokens and
// holders.
package ledger

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vaultScope/internal/entity"
	"vaultScope/internal/model"
	"vaultScope/internal/pricing"
	"vaultScope/internal/snapshot"
)

// Ledger mutates balances inside an entity.Tx. It is not safe for concurrent
// use.
type Ledger struct {
	oracle *pricing.Oracle
	logger *zap.Logger
}

func New(oracle *pricing.Oracle, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{oracle: oracle, logger: logger}
}

// AdjustTokenBalance moves the vault-wide notional balance of token and
// re-values it.
func (l *Ledger) AdjustTokenBalance(tx *entity.Tx, token *model.Token, delta decimal.Decimal, ts uint64) error {
	token.TotalBalanceNotional = token.TotalBalanceNotional.Add(delta)
	usd, err := l.oracle.ValueInUSD(tx, token.TotalBalanceNotional, token.ID)
	if err != nil {
		return err
	}
	if v, ok := usd.Get(); ok {
		token.TotalBalanceUSD = v
	}
	tx.Save(token)
	return snapshot.RefreshToken(tx, token, ts)
}
