package indexer

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"vaultScope/internal/model"
	"vaultScope/internal/storage"
)

// ChainReader is the subset of the chain client the runner needs.
type ChainReader interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamps(ctx context.Context, numbers []uint64) (map[uint64]uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock         uint64
	ToBlock           uint64
	Addresses         []common.Address
	Topic0            []common.Hash
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner streams vault, pool and factory logs from the chain and writes
// them to storage in (block, log index) order.
type Runner struct {
	cfg        RunConfig
	chain      ChainReader
	storage    storage.Storage
	logger     *zap.Logger
	seen       map[string]struct{}
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, chainClient ChainReader, storageSink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainClient,
		storage:    storageSink,
		logger:     logger,
		seen:       make(map[string]struct{}),
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run executes the indexing loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if len(r.cfg.Addresses) == 0 {
		return fmt.Errorf("at least one address is required")
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	from, resumed, err := r.checkpoint.Resume(chainIDValue, r.cfg.FromBlock)
	if err != nil {
		return err
	}
	if resumed {
		r.logger.Info("resume from checkpoint", zap.Uint64("from", from))
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		logs, err := r.filterLogsWithRetry(ctx, blockRange.From, blockRange.To)
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}
		sortLogs(logs)

		live := make([]types.Log, 0, len(logs))
		blocks := make([]uint64, 0, len(logs))
		var removed int
		for _, log := range logs {
			if log.Removed {
				removed++
				continue
			}
			if r.isDuplicate(log) {
				continue
			}
			live = append(live, log)
			if n := len(blocks); n == 0 || blocks[n-1] != log.BlockNumber {
				blocks = append(blocks, log.BlockNumber)
			}
		}

		times, err := r.blockTimestampsWithRetry(ctx, blocks)
		if err != nil {
			return fmt.Errorf("block timestamps %d-%d: %w", blockRange.From, blockRange.To, err)
		}

		ingestedAt := time.Now().UTC()
		records := make([]model.LogRecord, 0, len(live))
		for _, log := range live {
			records = append(records, model.NewLogRecord(chainIDValue, log, times[log.BlockNumber], ingestedAt))
		}

		if err := r.storage.PutLogBatch(records); err != nil {
			return fmt.Errorf("store logs: %w", err)
		}

		if err := r.checkpoint.Save(chainIDValue, blockRange.To); err != nil {
			return err
		}

		r.logger.Info("batch complete",
			zap.Int("logs", len(records)),
			zap.Int("removed", removed),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
		)
	}

	return nil
}

// sortLogs orders logs by block then log index. Events must be applied in
// chain order.
func sortLogs(logs []types.Log) {
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	var logs []types.Log
	err := newBackoff(r.cfg.MaxRetries, r.cfg.RetryBackoff).do(ctx, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, fromBlock, toBlock, r.cfg.Addresses, r.cfg.Topic0)
		if err != nil {
			r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestampsWithRetry(ctx context.Context, blocks []uint64) (map[uint64]uint64, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	var times map[uint64]uint64
	err := newBackoff(r.cfg.MaxRetries, r.cfg.RetryBackoff).do(ctx, func(ctx context.Context) error {
		var err error
		times, err = r.chain.BlockTimestamps(ctx, blocks)
		if err != nil {
			r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Int("blocks", len(blocks)))
		}
		return err
	})
	return times, err
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := model.EventID(log.TxHash.Hex(), uint64(log.Index))
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
