package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// ProcessConfig holds configuration for the process command.
type ProcessConfig struct {
	In               string
	RPCURL           string
	Vault            string
	CallTimeout      time.Duration
	Store            string
	PGDSN            string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisPrefix      string
	AssetsFile       string
	Network          string
	MinPoolLiquidity decimal.Decimal
	MinSwapValueUSD  decimal.Decimal
	NATSURL          string
	NATSPrefix       string
	ClickHouseDSN    string
	MetricsAddr      string
	CursorName       string
	LogLevel         string
}

// LoadProcess merges config file, environment variables, and flags into ProcessConfig.
func LoadProcess(cfgFile string, flags *pflag.FlagSet) (ProcessConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"vault":              DefaultVault,
		"call-timeout":       10 * time.Second,
		"store":              StoreMemory,
		"redis-prefix":       "vault",
		"network":            DefaultNetwork,
		"min-pool-liquidity": "2000",
		"min-swap-value-usd": "1",
		"nats-prefix":        "vaultscope",
		"cursor":             "process",
	})
	if err != nil {
		return ProcessConfig{}, err
	}

	minPool, err := decimal.NewFromString(v.GetString("min-pool-liquidity"))
	if err != nil {
		return ProcessConfig{}, fmt.Errorf("min-pool-liquidity: %w", err)
	}
	minSwap, err := decimal.NewFromString(v.GetString("min-swap-value-usd"))
	if err != nil {
		return ProcessConfig{}, fmt.Errorf("min-swap-value-usd: %w", err)
	}

	cfg := ProcessConfig{
		In:               v.GetString("in"),
		RPCURL:           v.GetString("rpc"),
		Vault:            v.GetString("vault"),
		CallTimeout:      v.GetDuration("call-timeout"),
		Store:            v.GetString("store"),
		PGDSN:            v.GetString("pg-dsn"),
		RedisAddr:        v.GetString("redis-addr"),
		RedisPassword:    v.GetString("redis-password"),
		RedisDB:          v.GetInt("redis-db"),
		RedisPrefix:      v.GetString("redis-prefix"),
		AssetsFile:       v.GetString("assets"),
		Network:          v.GetString("network"),
		MinPoolLiquidity: minPool,
		MinSwapValueUSD:  minSwap,
		NATSURL:          v.GetString("nats-url"),
		NATSPrefix:       v.GetString("nats-prefix"),
		ClickHouseDSN:    v.GetString("clickhouse-dsn"),
		MetricsAddr:      v.GetString("metrics-addr"),
		CursorName:       v.GetString("cursor"),
		LogLevel:         v.GetString("log-level"),
	}

	switch cfg.Store {
	case StoreMemory, StorePostgres, StoreRedis:
	default:
		return ProcessConfig{}, fmt.Errorf("unknown store %q", cfg.Store)
	}
	return cfg, nil
}
