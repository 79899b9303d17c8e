package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrNoCode is returned when a call yields no data, typically because the
// target has no contract code or does not implement the method.
var ErrNoCode = errors.New("empty call result")

const (
	// maxCachedTimestamps bounds the block timestamp cache.
	maxCachedTimestamps = 100_000
	// maxHeaderBatch bounds one JSON-RPC batch of header requests.
	maxHeaderBatch = 100
)

// blockTimes caches block timestamps. It is reset when full; timestamps of
// old blocks are rarely needed twice.
type blockTimes struct {
	mu sync.RWMutex
	ts map[uint64]uint64
}

func (b *blockTimes) get(number uint64) (uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ts, ok := b.ts[number]
	return ts, ok
}

func (b *blockTimes) put(number, ts uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ts == nil || len(b.ts) >= maxCachedTimestamps {
		b.ts = make(map[uint64]uint64)
	}
	b.ts[number] = ts
}

// Client wraps go-ethereum RPC for log streaming and contract reads.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	times     blockTimes
}

// NewClient dials rpcURL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// BlockTimestamps returns the timestamp of every block in numbers. Blocks
// not cached are fetched with batched eth_getBlockByNumber calls.
func (c *Client) BlockTimestamps(ctx context.Context, numbers []uint64) (map[uint64]uint64, error) {
	out := make(map[uint64]uint64, len(numbers))
	var missing []uint64
	for _, n := range numbers {
		if _, dup := out[n]; dup {
			continue
		}
		if ts, ok := c.times.get(n); ok {
			out[n] = ts
			continue
		}
		out[n] = 0
		missing = append(missing, n)
	}

	for start := 0; start < len(missing); start += maxHeaderBatch {
		end := start + maxHeaderBatch
		if end > len(missing) {
			end = len(missing)
		}
		chunk := missing[start:end]
		headers := make([]*types.Header, len(chunk))
		batch := make([]rpc.BatchElem, len(chunk))
		for i, n := range chunk {
			headers[i] = new(types.Header)
			batch[i] = rpc.BatchElem{
				Method: "eth_getBlockByNumber",
				Args:   []interface{}{hexutil.EncodeUint64(n), false},
				Result: headers[i],
			}
		}
		if err := c.rpcClient.BatchCallContext(ctx, batch); err != nil {
			return nil, fmt.Errorf("batch headers: %w", err)
		}
		for i, n := range chunk {
			if batch[i].Error != nil {
				return nil, fmt.Errorf("header %d: %w", n, batch[i].Error)
			}
			if headers[i].Number == nil {
				return nil, fmt.Errorf("header %d: %w", n, ethereum.NotFound)
			}
			c.times.put(n, headers[i].Time)
			out[n] = headers[i].Time
		}
	}
	return out, nil
}

// FilterLogs returns logs in [fromBlock, toBlock] emitted by addresses,
// optionally restricted to the given topic0 set.
func (c *Client) FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: addresses,
	}
	if len(topic0) > 0 {
		query.Topics = [][]common.Hash{topic0}
	}
	return c.ethClient.FilterLogs(ctx, query)
}

// CallContract performs an eth_call against the given block, or the latest
// block when blockNumber is nil.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	out, err := c.ethClient.CallContract(ctx, msg, blockNumber)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoCode
	}
	return out, nil
}
