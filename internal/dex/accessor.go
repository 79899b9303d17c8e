package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"vaultScope/internal/entity"
	"vaultScope/internal/opt"
)

// DefaultCallTimeout bounds a single eth_call.
const DefaultCallTimeout = 10 * time.Second

// ContractCaller performs eth_call. *chain.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// tokenInfo is the ERC20 metadata of one token. Name and symbol are empty
// when unreadable.
type tokenInfo struct {
	name     string
	symbol   string
	decimals opt.Value[uint8]
}

// tokenCache remembers token metadata, including failed reads, for the life
// of the process.
type tokenCache struct {
	mu   sync.RWMutex
	data map[common.Address]tokenInfo
}

func newTokenCache() *tokenCache {
	return &tokenCache{data: make(map[common.Address]tokenInfo)}
}

func (c *tokenCache) get(token common.Address) (tokenInfo, bool) {
	c.mu.RLock()
	info, ok := c.data[token]
	c.mu.RUnlock()
	return info, ok
}

func (c *tokenCache) set(token common.Address, info tokenInfo) {
	c.mu.Lock()
	c.data[token] = info
	c.mu.Unlock()
}

// Accessor reads vault, pool and token state over eth_call. Every failure
// is logged at debug level and reported as an unavailable value.
type Accessor struct {
	caller  ContractCaller
	vault   common.Address
	timeout time.Duration
	tokens  *tokenCache
	logger  *zap.Logger
}

var _ entity.ContractReader = (*Accessor)(nil)

// NewAccessor builds an Accessor for the vault at vault.
func NewAccessor(caller ContractCaller, vault common.Address, timeout time.Duration, logger *zap.Logger) *Accessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Accessor{
		caller:  caller,
		vault:   vault,
		timeout: timeout,
		tokens:  newTokenCache(),
		logger:  logger,
	}
}

func (a *Accessor) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	resp, err := a.caller.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return values, nil
}

func (a *Accessor) poolCall(ctx context.Context, pool common.Address, method string) ([]interface{}, bool) {
	parsed, err := PoolABI()
	if err != nil {
		a.logger.Debug("pool abi unavailable", zap.Error(err))
		return nil, false
	}
	values, err := a.call(ctx, pool, parsed, method)
	if err != nil {
		a.logger.Debug("pool call failed", zap.String("pool", pool.Hex()), zap.String("method", method), zap.Error(err))
		return nil, false
	}
	return values, true
}

func (a *Accessor) vaultCall(ctx context.Context, method string, args ...interface{}) ([]interface{}, bool) {
	parsed, err := VaultABI()
	if err != nil {
		a.logger.Debug("vault abi unavailable", zap.Error(err))
		return nil, false
	}
	values, err := a.call(ctx, a.vault, parsed, method, args...)
	if err != nil {
		a.logger.Debug("vault call failed", zap.String("method", method), zap.Error(err))
		return nil, false
	}
	return values, true
}

func (a *Accessor) PoolID(ctx context.Context, pool common.Address) opt.Value[common.Hash] {
	values, ok := a.poolCall(ctx, pool, "getPoolId")
	if !ok {
		return opt.None[common.Hash]()
	}
	id, ok := values[0].([32]byte)
	if !ok {
		return opt.None[common.Hash]()
	}
	return opt.Some(common.Hash(id))
}

func (a *Accessor) SwapFeePercentage(ctx context.Context, pool common.Address) opt.Value[*big.Int] {
	values, ok := a.poolCall(ctx, pool, "getSwapFeePercentage")
	if !ok {
		return opt.None[*big.Int]()
	}
	fee, err := asBigInt(values[0])
	if err != nil {
		return opt.None[*big.Int]()
	}
	return opt.Some(fee)
}

func (a *Accessor) Owner(ctx context.Context, pool common.Address) opt.Value[common.Address] {
	values, ok := a.poolCall(ctx, pool, "getOwner")
	if !ok {
		return opt.None[common.Address]()
	}
	owner, err := asAddress(values[0])
	if err != nil {
		return opt.None[common.Address]()
	}
	return opt.Some(owner)
}

func (a *Accessor) NormalizedWeights(ctx context.Context, pool common.Address) opt.Value[[]*big.Int] {
	values, ok := a.poolCall(ctx, pool, "getNormalizedWeights")
	if !ok {
		return opt.None[[]*big.Int]()
	}
	weights, ok := values[0].([]*big.Int)
	if !ok {
		return opt.None[[]*big.Int]()
	}
	return opt.Some(weights)
}

func (a *Accessor) Amplification(ctx context.Context, pool common.Address) opt.Value[*big.Int] {
	values, ok := a.poolCall(ctx, pool, "getAmplificationParameter")
	if !ok || len(values) != 3 {
		return opt.None[*big.Int]()
	}
	value, err := asBigInt(values[0])
	if err != nil {
		return opt.None[*big.Int]()
	}
	precision, err := asBigInt(values[2])
	if err != nil || precision.Sign() == 0 {
		return opt.None[*big.Int]()
	}
	return opt.Some(new(big.Int).Quo(value, precision))
}

func (a *Accessor) PoolTokens(ctx context.Context, poolID common.Hash) opt.Value[[]common.Address] {
	values, ok := a.vaultCall(ctx, "getPoolTokens", [32]byte(poolID))
	if !ok {
		return opt.None[[]common.Address]()
	}
	tokens, ok := values[0].([]common.Address)
	if !ok {
		return opt.None[[]common.Address]()
	}
	return opt.Some(tokens)
}

func (a *Accessor) AssetManager(ctx context.Context, poolID common.Hash, token common.Address) opt.Value[common.Address] {
	values, ok := a.vaultCall(ctx, "getPoolTokenInfo", [32]byte(poolID), token)
	if !ok || len(values) != 4 {
		return opt.None[common.Address]()
	}
	manager, err := asAddress(values[3])
	if err != nil {
		return opt.None[common.Address]()
	}
	return opt.Some(manager)
}

func (a *Accessor) TokenName(ctx context.Context, token common.Address) opt.Value[string] {
	return nonEmpty(a.token(ctx, token).name)
}

func (a *Accessor) TokenSymbol(ctx context.Context, token common.Address) opt.Value[string] {
	return nonEmpty(a.token(ctx, token).symbol)
}

func (a *Accessor) TokenDecimals(ctx context.Context, token common.Address) opt.Value[uint8] {
	return a.token(ctx, token).decimals
}

func nonEmpty(s string) opt.Value[string] {
	if s == "" {
		return opt.None[string]()
	}
	return opt.Some(s)
}

func (a *Accessor) token(ctx context.Context, token common.Address) tokenInfo {
	if info, ok := a.tokens.get(token); ok {
		return info
	}
	info, err := a.fetchToken(ctx, token)
	if err != nil {
		a.logger.Debug("token decimals unavailable", zap.String("token", token.Hex()), zap.Error(err))
	}
	a.tokens.set(token, info)
	return info
}

// fetchToken loads token metadata via ERC20 calls, falling back to the
// bytes32 variants for name and symbol. Decimals stay unavailable on error.
func (a *Accessor) fetchToken(ctx context.Context, token common.Address) (tokenInfo, error) {
	info := tokenInfo{decimals: opt.None[uint8]()}
	stringABI, err := erc20StringABI.get()
	if err != nil {
		return info, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20Bytes32ABI.get()
	if err != nil {
		return info, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	info.symbol = a.erc20Text(ctx, token, "symbol", stringABI, bytes32ABI)
	info.name = a.erc20Text(ctx, token, "name", stringABI, bytes32ABI)

	values, err := a.call(ctx, token, stringABI, "decimals")
	if err != nil {
		return info, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return info, err
	}
	info.decimals = opt.Some(decimals)
	return info, nil
}

func (a *Accessor) erc20Text(ctx context.Context, token common.Address, method string, stringABI, bytes32ABI abi.ABI) string {
	if values, err := a.call(ctx, token, stringABI, method); err == nil {
		if s, ok := values[0].(string); ok {
			return s
		}
	}
	values, err := a.call(ctx, token, bytes32ABI, method)
	if err != nil {
		a.logger.Debug("erc20 call failed", zap.String("token", token.Hex()), zap.String("method", method), zap.Error(err))
		return ""
	}
	s, _ := bytes32ToString(values[0])
	return s
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case *big.Int:
		if !v.IsUint64() || v.Uint64() > 255 {
			return 0, fmt.Errorf("decimals out of range: %s", v)
		}
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
