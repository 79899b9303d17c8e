package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// DefaultNetwork selects the built-in asset list.
const DefaultNetwork = "bsc"

// Assets lists the tokens that anchor USD pricing. Order is priority.
type Assets struct {
	Stable  []string `yaml:"stable"`
	Pricing []string `yaml:"pricing"`
}

// AssetRegistry maps a network name to its assets.
type AssetRegistry map[string]Assets

var builtinAssets = AssetRegistry{
	"bsc": {
		Stable: []string{
			"0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", // BUSD
			"0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", // USDC
			"0x1AF3F329e8BE154074D8769D1FFa4eE058B1DBc3", // DAI
			"0x55d398326f99059fF775485246999027B3197955", // USDT
		},
		Pricing: []string{
			"0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", // WBNB
			"0x7130d2A12B9BCbFAe4f2634d864A1Ee1Ce3Ead9c", // BTCB
			"0x0dDef12012eD645f12AEb1B845Cb5ad61C7423F5", // BAL
			"0x5c6ee304399dbdb9c8ef030ab642b10820db8f56", // B-80BAL-20WETH
		},
	},
}

// LoadAssets returns the assets for network, read from path when set and
// from the built-in registry otherwise. Addresses are normalized to lower
// case.
func LoadAssets(path, network string) (Assets, error) {
	if network == "" {
		network = DefaultNetwork
	}
	registry := builtinAssets
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Assets{}, fmt.Errorf("read assets: %w", err)
		}
		registry = AssetRegistry{}
		if err := yaml.Unmarshal(data, &registry); err != nil {
			return Assets{}, fmt.Errorf("parse assets: %w", err)
		}
	}
	assets, ok := registry[strings.ToLower(network)]
	if !ok {
		return Assets{}, fmt.Errorf("no assets for network %q", network)
	}

	var err error
	if assets.Stable, err = normalizeAddresses(assets.Stable); err != nil {
		return Assets{}, fmt.Errorf("stable assets: %w", err)
	}
	if assets.Pricing, err = normalizeAddresses(assets.Pricing); err != nil {
		return Assets{}, fmt.Errorf("pricing assets: %w", err)
	}
	return assets, nil
}

func normalizeAddresses(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, addr := range in {
		addr = strings.TrimSpace(addr)
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid address %q", addr)
		}
		out = append(out, strings.ToLower(common.HexToAddress(addr).Hex()))
	}
	return out, nil
}
