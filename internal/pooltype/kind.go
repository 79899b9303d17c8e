// Package pooltype classifies pools and answers capability questions about them.
package pooltype

import (
	"fmt"
	"strings"
)

// Kind is a pool variant.
type Kind string

const (
	Unknown                 Kind = ""
	Weighted                Kind = "Weighted"
	LiquidityBootstrapping  Kind = "LiquidityBootstrapping"
	Investment              Kind = "Investment"
	Managed                 Kind = "Managed"
	Stable                  Kind = "Stable"
	MetaStable              Kind = "MetaStable"
	StablePhantom           Kind = "StablePhantom"
	ComposableStable        Kind = "ComposableStable"
	HighAmpComposableStable Kind = "HighAmpComposableStable"
	AaveLinear              Kind = "AaveLinear"
	ERC4626Linear           Kind = "ERC4626Linear"
	EulerLinear             Kind = "EulerLinear"
	GearboxLinear           Kind = "GearboxLinear"
	YearnLinear             Kind = "YearnLinear"
	Element                 Kind = "Element"
	FX                      Kind = "FX"
	Gyro2                   Kind = "Gyro2"
	Gyro3                   Kind = "Gyro3"
	GyroE                   Kind = "GyroE"
)

// All lists every known kind.
func All() []Kind {
	return []Kind{
		Weighted, LiquidityBootstrapping, Investment, Managed,
		Stable, MetaStable, StablePhantom, ComposableStable, HighAmpComposableStable,
		AaveLinear, ERC4626Linear, EulerLinear, GearboxLinear, YearnLinear,
		Element, FX, Gyro2, Gyro3, GyroE,
	}
}

// Parse resolves a kind name case-insensitively.
func Parse(value string) (Kind, error) {
	v := strings.TrimSpace(value)
	for _, k := range All() {
		if strings.EqualFold(string(k), v) {
			return k, nil
		}
	}
	return Unknown, fmt.Errorf("unknown pool type %q", value)
}

func (k Kind) String() string {
	if k == Unknown {
		return "Unknown"
	}
	return string(k)
}

// Known reports whether k is a member of the closed set.
func (k Kind) Known() bool {
	_, err := Parse(string(k))
	return k != Unknown && err == nil
}

// IsWeighted reports whether the pool carries normalized token weights.
func (k Kind) IsWeighted() bool {
	switch k {
	case Weighted, LiquidityBootstrapping, Investment, Managed:
		return true
	default:
		return false
	}
}

// IsVariableWeight reports whether weights can change after creation.
func (k Kind) IsVariableWeight() bool {
	switch k {
	case LiquidityBootstrapping, Investment, Managed:
		return true
	default:
		return false
	}
}

// IsStableLike reports whether the pool exposes an amplification parameter
// that is refreshed on swaps.
func (k Kind) IsStableLike() bool {
	switch k {
	case Stable, MetaStable, StablePhantom, ComposableStable:
		return true
	default:
		return false
	}
}

// HasAmp reports whether the pool has an amplification parameter at all.
func (k Kind) HasAmp() bool {
	return k.IsStableLike() || k == HighAmpComposableStable
}

// IsLinear reports whether the pool is a linear wrapper pool.
func (k Kind) IsLinear() bool {
	switch k {
	case AaveLinear, ERC4626Linear, EulerLinear, GearboxLinear, YearnLinear:
		return true
	default:
		return false
	}
}

// HasVirtualSupply reports whether the pool holds its own share token and
// tracks supply through swaps against it.
func (k Kind) HasVirtualSupply() bool {
	return k.IsLinear() || k.HasPreMintedShares()
}

// HasPreMintedShares reports whether the full share supply is minted at
// creation and handed out through joins.
func (k Kind) HasPreMintedShares() bool {
	switch k {
	case StablePhantom, ComposableStable, HighAmpComposableStable:
		return true
	default:
		return false
	}
}

// ChargesSwapFee reports whether swap fees are derived from the pool's fee
// percentage.
func (k Kind) ChargesSwapFee() bool {
	return !k.IsLinear() && k != FX
}

// HasUnsupportedFeeModel reports pools whose fee accounting is not modelled.
func (k Kind) HasUnsupportedFeeModel() bool {
	return k == FX
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*k = Unknown
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
