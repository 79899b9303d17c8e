// Package snapshot maintains daily copies of the live aggregates.
package snapshot

import (
	"github.com/shopspring/decimal"

	"vaultScope/internal/entity"
	"vaultScope/internal/model"
)

// SecondsPerDay is the bucket width.
const SecondsPerDay = 86400

// DayID returns the bucket index of ts.
func DayID(ts uint64) uint64 {
	return ts / SecondsPerDay
}

// DayStart returns the first second of the bucket containing ts.
func DayStart(ts uint64) uint64 {
	return DayID(ts) * SecondsPerDay
}

// Vault returns today's vault snapshot, creating it from the live vault.
func Vault(tx *entity.Tx, vault *model.Vault, ts uint64) (*model.VaultSnapshot, error) {
	id := entity.SnapshotID(vault.ID, DayID(ts))
	s, err := entity.Load[model.VaultSnapshot](tx, id)
	if err != nil || s != nil {
		return s, err
	}
	s = &model.VaultSnapshot{ID: id, Vault: vault.ID, Timestamp: DayStart(ts)}
	copyVault(s, vault)
	tx.Save(s)
	return s, nil
}

// RefreshVault overwrites today's vault snapshot with the live values.
func RefreshVault(tx *entity.Tx, vault *model.Vault, ts uint64) error {
	s, err := Vault(tx, vault, ts)
	if err != nil {
		return err
	}
	copyVault(s, vault)
	tx.Save(s)
	return nil
}

func copyVault(s *model.VaultSnapshot, v *model.Vault) {
	s.PoolCount = v.PoolCount
	s.TotalSwapCount = v.TotalSwapCount
	s.TotalSwapVolume = v.TotalSwapVolume
	s.TotalSwapFee = v.TotalSwapFee
	s.TotalLiquidity = v.TotalLiquidity
}

// Pool returns today's pool snapshot, creating it from the live pool.
func Pool(tx *entity.Tx, pool *model.Pool, ts uint64) (*model.PoolSnapshot, error) {
	id := entity.SnapshotID(pool.ID, DayID(ts))
	s, err := entity.Load[model.PoolSnapshot](tx, id)
	if err != nil || s != nil {
		return s, err
	}
	s = &model.PoolSnapshot{ID: id, PoolID: pool.ID, Timestamp: DayStart(ts)}
	if err := copyPool(tx, s, pool); err != nil {
		return nil, err
	}
	tx.Save(s)
	return s, nil
}

// RefreshPool overwrites today's pool snapshot with the live values.
func RefreshPool(tx *entity.Tx, pool *model.Pool, ts uint64) error {
	s, err := Pool(tx, pool, ts)
	if err != nil {
		return err
	}
	if err := copyPool(tx, s, pool); err != nil {
		return err
	}
	tx.Save(s)
	return nil
}

func copyPool(tx *entity.Tx, s *model.PoolSnapshot, p *model.Pool) error {
	amounts := make([]decimal.Decimal, 0, len(p.TokensList))
	for _, token := range p.TokensList {
		pt, err := entity.Load[model.PoolToken](tx, entity.PoolTokenID(p.ID, token))
		if err != nil {
			return err
		}
		if pt == nil {
			amounts = append(amounts, decimal.Zero)
			continue
		}
		amounts = append(amounts, pt.Balance)
	}
	s.Amounts = amounts
	s.TotalShares = p.TotalShares
	s.SwapVolume = p.TotalSwapVolume
	s.SwapFees = p.TotalSwapFee
	s.Liquidity = p.TotalLiquidity
	s.SwapsCount = p.SwapsCount
	s.HoldersCount = p.HoldersCount
	return nil
}

// Token returns today's token snapshot, creating it from the live token.
func Token(tx *entity.Tx, token *model.Token, ts uint64) (*model.TokenSnapshot, error) {
	id := entity.SnapshotID(token.ID, DayID(ts))
	s, err := entity.Load[model.TokenSnapshot](tx, id)
	if err != nil || s != nil {
		return s, err
	}
	s = &model.TokenSnapshot{ID: id, Token: token.ID, Timestamp: DayStart(ts)}
	copyToken(s, token)
	tx.Save(s)
	return s, nil
}

// RefreshToken overwrites today's token snapshot with the live values.
func RefreshToken(tx *entity.Tx, token *model.Token, ts uint64) error {
	s, err := Token(tx, token, ts)
	if err != nil {
		return err
	}
	copyToken(s, token)
	tx.Save(s)
	return nil
}

func copyToken(s *model.TokenSnapshot, t *model.Token) {
	s.TotalBalanceNotional = t.TotalBalanceNotional
	s.TotalBalanceUSD = t.TotalBalanceUSD
	s.TotalSwapCount = t.TotalSwapCount
	s.TotalVolumeNotional = t.TotalVolumeNotional
	s.TotalVolumeUSD = t.TotalVolumeUSD
}

// TradePair returns today's pair snapshot, creating it from the live pair.
func TradePair(tx *entity.Tx, pair *model.TradePair, ts uint64) (*model.TradePairSnapshot, error) {
	id := entity.SnapshotID(pair.ID, DayID(ts))
	s, err := entity.Load[model.TradePairSnapshot](tx, id)
	if err != nil || s != nil {
		return s, err
	}
	s = &model.TradePairSnapshot{ID: id, Pair: pair.ID, Timestamp: DayStart(ts)}
	copyTradePair(s, pair)
	tx.Save(s)
	return s, nil
}

// RefreshTradePair overwrites today's pair snapshot with the live values.
func RefreshTradePair(tx *entity.Tx, pair *model.TradePair, ts uint64) error {
	s, err := TradePair(tx, pair, ts)
	if err != nil {
		return err
	}
	copyTradePair(s, pair)
	tx.Save(s)
	return nil
}

func copyTradePair(s *model.TradePairSnapshot, p *model.TradePair) {
	s.TotalSwapVolume = p.TotalSwapVolume
	s.TotalSwapFee = p.TotalSwapFee
}
