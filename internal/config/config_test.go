package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadProcessDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("process", pflag.ContinueOnError)
	flags.String("in", "", "")
	flags.String("store", "memory", "")
	if err := flags.Parse([]string{"--in", "events.jsonl"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadProcess(filepath.Join(t.TempDir(), "missing-but-explicit.yaml"), flags)
	if err == nil {
		t.Fatalf("expected error for missing explicit config file, got %+v", cfg)
	}

	cfg, err = LoadProcess("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.In != "events.jsonl" || cfg.Store != StoreMemory {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.MinPoolLiquidity.String() != "2000" || cfg.MinSwapValueUSD.String() != "1" {
		t.Fatalf("threshold defaults mismatch: %s %s", cfg.MinPoolLiquidity, cfg.MinSwapValueUSD)
	}
	if cfg.Vault != DefaultVault || cfg.CursorName != "process" {
		t.Fatalf("defaults mismatch: %+v", cfg)
	}
}

func TestLoadProcessRejectsUnknownStore(t *testing.T) {
	t.Setenv("VAULTSCOPE_STORE", "sqlite")
	if _, err := LoadProcess("", nil); err == nil {
		t.Fatalf("expected unknown store error")
	}
}

func TestLoadDecodeFactories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("factories:\n  \"0x4444444444444444444444444444444444444444\": Weighted@2\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadDecode(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Factories["0x4444444444444444444444444444444444444444"]; got != "Weighted@2" {
		t.Fatalf("factories mismatch: %v", cfg.Factories)
	}
}

func TestWatchedAddressesDeduplicates(t *testing.T) {
	cfg := Config{
		Vault:     DefaultVault,
		Factories: map[string]string{"0x4444444444444444444444444444444444444444": "Stable"},
		Addresses: []string{"0xba12222222228d8ba445958a75a0704d566bf2c8", "0x1111111111111111111111111111111111111111"},
	}
	got := cfg.WatchedAddresses()
	if len(got) != 3 {
		t.Fatalf("expected 3 addresses, got %v", got)
	}
}

func TestLoadAssets(t *testing.T) {
	assets, err := LoadAssets("", "")
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	if len(assets.Stable) != 4 || assets.Stable[0] != "0xe9e7cea3dedca5984780bafc599bd69add087d56" {
		t.Fatalf("builtin stable mismatch: %v", assets.Stable)
	}

	path := filepath.Join(t.TempDir(), "assets.yaml")
	body := []byte("local:\n  stable: [\"0x0000000000000000000000000000000000000001\"]\n  pricing: []\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write assets: %v", err)
	}
	assets, err = LoadAssets(path, "local")
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if len(assets.Stable) != 1 || len(assets.Pricing) != 0 {
		t.Fatalf("file assets mismatch: %+v", assets)
	}
	if _, err := LoadAssets(path, "bsc"); err == nil {
		t.Fatalf("expected missing network error")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("bsc:\n  stable: [\"nope\"]\n"), 0o644); err != nil {
		t.Fatalf("write assets: %v", err)
	}
	if _, err := LoadAssets(bad, "bsc"); err == nil {
		t.Fatalf("expected invalid address error")
	}
}
