package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vaultScope/internal/chain"
	"vaultScope/internal/config"
	"vaultScope/internal/dex"
	"vaultScope/internal/indexer"
	"vaultScope/internal/storage"
)

func main() {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Vault log indexer and accounting engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch vault, pool and factory logs",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("rpc", "", "RPC URL")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().String("vault", config.DefaultVault, "vault address")
	runCmd.Flags().StringToString("factories", nil, "factory address to pool kind (addr=Kind[@version], comma-separated)")
	runCmd.Flags().StringSlice("address", nil, "extra contract addresses, e.g. pools (comma-separated)")
	runCmd.Flags().StringSlice("topic0", nil, "topic0 filter (comma-separated), empty means every decoded event")
	runCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	runCmd.Flags().String("out", "./data/logs.jsonl", "output JSONL path")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode raw logs into typed events",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "", "input raw logs JSONL")
	decodeCmd.Flags().String("out", "./data/typed_events.jsonl", "output typed events JSONL")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().String("vault", config.DefaultVault, "vault address, empty accepts vault events from any emitter")
	decodeCmd.Flags().StringToString("factories", nil, "factory address to pool kind (addr=Kind[@version], comma-separated)")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	processCmd := &cobra.Command{
		Use:   "process",
		Short: "Apply typed events to the vault entity store",
		RunE:  runProcess,
	}

	processCmd.Flags().String("in", "", "input typed events JSONL")
	processCmd.Flags().String("rpc", "", "RPC URL for contract reads")
	processCmd.Flags().String("vault", config.DefaultVault, "vault address")
	processCmd.Flags().Duration("call-timeout", dex.DefaultCallTimeout, "timeout per contract call")
	processCmd.Flags().String("store", config.StoreMemory, "entity store (memory, postgres, redis)")
	processCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	processCmd.Flags().String("redis-addr", "", "Redis address")
	processCmd.Flags().String("redis-password", "", "Redis password")
	processCmd.Flags().Int("redis-db", 0, "Redis database")
	processCmd.Flags().String("redis-prefix", "vault", "Redis key prefix")
	processCmd.Flags().String("assets", "", "asset registry YAML, empty uses the built-in list")
	processCmd.Flags().String("network", config.DefaultNetwork, "network whose assets anchor prices")
	processCmd.Flags().String("min-pool-liquidity", "2000", "minimum pool liquidity in USD for price samples")
	processCmd.Flags().String("min-swap-value-usd", "1", "minimum swap value in USD for price samples")
	processCmd.Flags().String("nats-url", "", "NATS URL, empty disables publishing")
	processCmd.Flags().String("nats-prefix", "vaultscope", "NATS subject prefix")
	processCmd.Flags().String("clickhouse-dsn", "", "ClickHouse DSN, empty disables export")
	processCmd.Flags().String("metrics-addr", "", "Prometheus listen address, empty disables the endpoint")
	processCmd.Flags().String("cursor", "process", "cursor name")
	processCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(processCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	addresses, err := indexer.ParseAddresses(cfg.WatchedAddresses())
	if err != nil {
		return err
	}
	if len(addresses) == 0 {
		return fmt.Errorf("address list is required")
	}

	topic0, err := indexer.ParseTopic0(cfg.Topic0)
	if err != nil {
		return err
	}
	if len(topic0) == 0 {
		if topic0, err = dex.DefaultTopic0s(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	storageSink := storage.NewJsonlStorage(cfg.Out)

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:         cfg.FromBlock,
		ToBlock:           cfg.ToBlock,
		Addresses:         addresses,
		Topic0:            topic0,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, chainClient, storageSink, logger)

	logger.Info("indexer start",
		zap.String("vault", cfg.Vault),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("addresses", len(addresses)),
		zap.Int("topic0", len(topic0)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
