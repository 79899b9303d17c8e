package dex

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

type fakeCaller struct {
	responses map[common.Address]map[string][]byte
	calls     int
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{responses: make(map[common.Address]map[string][]byte)}
}

func (f *fakeCaller) respond(t *testing.T, to common.Address, parsed abi.ABI, method string, outputs ...interface{}) {
	t.Helper()
	data, err := parsed.Methods[method].Outputs.Pack(outputs...)
	if err != nil {
		t.Fatalf("pack %s: %v", method, err)
	}
	if f.responses[to] == nil {
		f.responses[to] = make(map[string][]byte)
	}
	f.responses[to][string(parsed.Methods[method].ID)] = data
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls++
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, errors.New("bad call")
	}
	resp, ok := f.responses[*msg.To][string(msg.Data[:4])]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return resp, nil
}

func TestAccessorPoolState(t *testing.T) {
	poolABI, err := PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	vaultABI, err := VaultABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	caller := newFakeCaller()
	caller.respond(t, testPool, poolABI, "getPoolId", [32]byte(testPoolID))
	caller.respond(t, testPool, poolABI, "getSwapFeePercentage", big.NewInt(1e15))
	caller.respond(t, testPool, poolABI, "getOwner", lp)
	caller.respond(t, testPool, poolABI, "getNormalizedWeights", []*big.Int{big.NewInt(8e17), big.NewInt(2e17)})
	caller.respond(t, testPool, poolABI, "getAmplificationParameter", big.NewInt(200000), false, big.NewInt(1000))
	caller.respond(t, testVault, vaultABI, "getPoolTokens", []common.Address{tokenA, tokenB}, []*big.Int{big.NewInt(1), big.NewInt(2)}, big.NewInt(9))
	caller.respond(t, testVault, vaultABI, "getPoolTokenInfo", big.NewInt(1), big.NewInt(0), big.NewInt(9), lp)

	a := NewAccessor(caller, testVault, 0, nil)
	ctx := context.Background()

	if id, ok := a.PoolID(ctx, testPool).Get(); !ok || id != testPoolID {
		t.Fatalf("pool id mismatch: %s %v", id.Hex(), ok)
	}
	if fee, ok := a.SwapFeePercentage(ctx, testPool).Get(); !ok || fee.Int64() != 1e15 {
		t.Fatalf("fee mismatch: %v", fee)
	}
	if owner := a.Owner(ctx, testPool).Or(common.Address{}); owner != lp {
		t.Fatalf("owner mismatch: %s", owner.Hex())
	}
	if weights, ok := a.NormalizedWeights(ctx, testPool).Get(); !ok || len(weights) != 2 {
		t.Fatalf("weights mismatch: %v", weights)
	}
	if amp, ok := a.Amplification(ctx, testPool).Get(); !ok || amp.Int64() != 200 {
		t.Fatalf("amp mismatch: %v", amp)
	}
	if tokens, ok := a.PoolTokens(ctx, testPoolID).Get(); !ok || len(tokens) != 2 || tokens[1] != tokenB {
		t.Fatalf("tokens mismatch: %v", tokens)
	}
	if manager, ok := a.AssetManager(ctx, testPoolID, tokenA).Get(); !ok || manager != lp {
		t.Fatalf("asset manager mismatch: %s", manager.Hex())
	}

	other := common.HexToAddress("0x7777777777777777777777777777777777777777")
	if a.PoolID(ctx, other).Ok() {
		t.Fatalf("expected unavailable pool id")
	}
}

func TestAccessorTokenMetadata(t *testing.T) {
	stringABI, err := erc20StringABI.get()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	bytes32ABI, err := erc20Bytes32ABI.get()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	caller := newFakeCaller()
	caller.respond(t, tokenA, stringABI, "decimals", uint8(6))
	caller.respond(t, tokenA, stringABI, "symbol", "USDC")
	caller.respond(t, tokenA, stringABI, "name", "USD Coin")

	var sym [32]byte
	copy(sym[:], "MKR")
	caller.respond(t, tokenB, stringABI, "decimals", uint8(18))
	caller.respond(t, tokenB, bytes32ABI, "symbol", sym)

	a := NewAccessor(caller, testVault, 0, nil)
	ctx := context.Background()

	if got := a.TokenSymbol(ctx, tokenA).Or(""); got != "USDC" {
		t.Fatalf("symbol mismatch: %q", got)
	}
	if got := a.TokenName(ctx, tokenA).Or(""); got != "USD Coin" {
		t.Fatalf("name mismatch: %q", got)
	}
	if got := a.TokenDecimals(ctx, tokenA).Or(0); got != 6 {
		t.Fatalf("decimals mismatch: %d", got)
	}
	calls := caller.calls
	a.TokenDecimals(ctx, tokenA)
	if caller.calls != calls {
		t.Fatalf("metadata not cached")
	}

	if got := a.TokenSymbol(ctx, tokenB).Or(""); got != "MKR" {
		t.Fatalf("bytes32 symbol mismatch: %q", got)
	}
	if a.TokenName(ctx, tokenB).Ok() {
		t.Fatalf("expected unavailable name")
	}

	missing := common.HexToAddress("0x8888888888888888888888888888888888888888")
	if a.TokenDecimals(ctx, missing).Ok() {
		t.Fatalf("expected unavailable decimals")
	}
}
