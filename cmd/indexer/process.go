package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultScope/internal/chain"
	"vaultScope/internal/config"
	"vaultScope/internal/dex"
	"vaultScope/internal/entity"
	"vaultScope/internal/handler"
	"vaultScope/internal/metrics"
	"vaultScope/internal/pricing"
	"vaultScope/internal/process"
	"vaultScope/internal/pubsub"
	"vaultScope/internal/pubsub/nats"
	"vaultScope/internal/storage"
	"vaultScope/internal/storage/clickhouse"
	"vaultScope/internal/storage/postgres"
	"vaultScope/internal/storage/redis"
)

func runProcess(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadProcess(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.Vault) {
		return fmt.Errorf("invalid vault address: %s", cfg.Vault)
	}

	assets, err := config.LoadAssets(cfg.AssetsFile, cfg.Network)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openEntityStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	accessor := dex.NewAccessor(chainClient, common.HexToAddress(cfg.Vault), cfg.CallTimeout, logger.Named("contracts"))
	oracle := pricing.New(pricing.Config{
		StableAssets:     assets.Stable,
		PricingAssets:    assets.Pricing,
		MinPoolLiquidity: cfg.MinPoolLiquidity,
		MinSwapValueUSD:  cfg.MinSwapValueUSD,
	}, logger.Named("pricing"))
	resolver := entity.NewResolver(store, accessor, logger.Named("entity"))

	var sinks []pubsub.Broadcaster
	if cfg.NATSURL != "" {
		client, err := nats.New(cfg.NATSURL, cfg.NATSPrefix, logger.Named("nats"))
		if err != nil {
			return err
		}
		defer client.Close()
		sinks = append(sinks, client)
	}
	if cfg.ClickHouseDSN != "" {
		conn, err := clickhouse.Open(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return err
		}
		defer conn.Close()
		writer := clickhouse.NewWriter(conn, 3, 200*time.Millisecond, logger.Named("clickhouse"))
		if err := writer.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, writer)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	dispatcher := handler.NewDispatcher(resolver, oracle, handler.Options{
		CursorName: cfg.CursorName,
		Sinks:      sinks,
		Metrics:    m,
		Logger:     logger.Named("handler"),
	})

	logger.Info("process start",
		zap.String("in", cfg.In),
		zap.String("store", cfg.Store),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("network", cfg.Network),
		zap.Int("stable_assets", len(assets.Stable)),
		zap.Int("pricing_assets", len(assets.Pricing)),
		zap.Int("sinks", len(sinks)),
		zap.String("cursor", cfg.CursorName),
	)

	stats, err := process.NewRunner(dispatcher, logger).Run(ctx, cfg.In)
	logger.Info("process complete",
		zap.Int("total", stats.Total),
		zap.Int("applied", stats.Applied),
		zap.Int("skipped", stats.Skipped),
		zap.Int("dropped", stats.Dropped),
		zap.Int("failed", stats.Failed),
	)
	return err
}

// openEntityStore returns the configured store and a func that releases it.
func openEntityStore(ctx context.Context, cfg config.ProcessConfig) (storage.EntityStore, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		if cfg.PGDSN == "" {
			return nil, nil, fmt.Errorf("pg-dsn is required for the postgres store")
		}
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.StoreRedis:
		if cfg.RedisAddr == "" {
			return nil, nil, fmt.Errorf("redis-addr is required for the redis store")
		}
		store, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return storage.NewMemoryStore(), func() {}, nil
	}
}

func serveMetrics(addr string, g prometheus.Gatherer, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("metrics listening", zap.String("addr", addr))
	return srv
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
