package config

import (
	"github.com/spf13/pflag"
)

// DefaultVault is the canonical vault deployment address.
const DefaultVault = "0xBA12222222228d8Ba445958a75a0704d566BF2C8"

// DecodeConfig holds configuration for the decode command.
type DecodeConfig struct {
	In       string
	Out      string
	Errors   string
	LogLevel string
	Vault    string
	// Factories maps a factory address to "Kind" or "Kind@version".
	Factories map[string]string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":    "./data/typed_events.jsonl",
		"errors": "./data/decode_errors.jsonl",
		"vault":  DefaultVault,
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	cfg := DecodeConfig{
		In:        v.GetString("in"),
		Out:       v.GetString("out"),
		Errors:    v.GetString("errors"),
		LogLevel:  v.GetString("log-level"),
		Vault:     v.GetString("vault"),
		Factories: getStringMap(v, "factories"),
	}

	return cfg, nil
}
