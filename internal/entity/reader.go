package entity

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultScope/internal/opt"
)

// ContractReader is the read-only view of vault, pool and token contracts.
// Every call either yields a value or reports it unavailable; failures never
// surface as errors.
type ContractReader interface {
	PoolID(ctx context.Context, pool common.Address) opt.Value[common.Hash]
	SwapFeePercentage(ctx context.Context, pool common.Address) opt.Value[*big.Int]
	Owner(ctx context.Context, pool common.Address) opt.Value[common.Address]
	NormalizedWeights(ctx context.Context, pool common.Address) opt.Value[[]*big.Int]
	// Amplification returns the amplification value divided by its precision.
	Amplification(ctx context.Context, pool common.Address) opt.Value[*big.Int]
	PoolTokens(ctx context.Context, poolID common.Hash) opt.Value[[]common.Address]
	AssetManager(ctx context.Context, poolID common.Hash, token common.Address) opt.Value[common.Address]
	TokenName(ctx context.Context, token common.Address) opt.Value[string]
	TokenSymbol(ctx context.Context, token common.Address) opt.Value[string]
	TokenDecimals(ctx context.Context, token common.Address) opt.Value[uint8]
}
