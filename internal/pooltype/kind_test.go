package pooltype

import (
	"encoding/json"
	"testing"
)

// Every kind must land in exactly one family so new variants cannot slip
// through the capability switches unclassified.
func TestEveryKindIsClassified(t *testing.T) {
	for _, k := range All() {
		families := 0
		if k.IsWeighted() {
			families++
		}
		if k.HasAmp() {
			families++
		}
		if k.IsLinear() {
			families++
		}
		switch k {
		case Element, FX, Gyro2, Gyro3, GyroE:
			families++
		}
		if families != 1 {
			t.Fatalf("%s belongs to %d families", k, families)
		}
		if !k.Known() {
			t.Fatalf("%s should be known", k)
		}
	}
	if Unknown.Known() {
		t.Fatalf("unknown kind reported as known")
	}
}

func TestCapabilities(t *testing.T) {
	cases := []struct {
		kind           Kind
		variableWeight bool
		stableLike     bool
		virtualSupply  bool
		fee            bool
	}{
		{Weighted, false, false, false, true},
		{LiquidityBootstrapping, true, false, false, true},
		{Managed, true, false, false, true},
		{Stable, false, true, false, true},
		{MetaStable, false, true, false, true},
		{StablePhantom, false, true, true, true},
		{ComposableStable, false, true, true, true},
		{HighAmpComposableStable, false, false, true, true},
		{AaveLinear, false, false, true, false},
		{ERC4626Linear, false, false, true, false},
		{FX, false, false, false, false},
		{Gyro2, false, false, false, true},
	}
	for _, tc := range cases {
		if got := tc.kind.IsVariableWeight(); got != tc.variableWeight {
			t.Fatalf("%s IsVariableWeight = %v", tc.kind, got)
		}
		if got := tc.kind.IsStableLike(); got != tc.stableLike {
			t.Fatalf("%s IsStableLike = %v", tc.kind, got)
		}
		if got := tc.kind.HasVirtualSupply(); got != tc.virtualSupply {
			t.Fatalf("%s HasVirtualSupply = %v", tc.kind, got)
		}
		if got := tc.kind.ChargesSwapFee(); got != tc.fee {
			t.Fatalf("%s ChargesSwapFee = %v", tc.kind, got)
		}
	}
}

func TestParse(t *testing.T) {
	k, err := Parse(" composablestable ")
	if err != nil || k != ComposableStable {
		t.Fatalf("expected ComposableStable, got %v %v", k, err)
	}
	if _, err := Parse("Uniswap"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestKindJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Kind Kind `json:"kind"`
	}{Kind: MetaStable})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"kind":"MetaStable"}` {
		t.Fatalf("unexpected json %s", data)
	}
	var decoded struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal([]byte(`{"kind":"fx"}`), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Kind != FX {
		t.Fatalf("expected FX, got %s", decoded.Kind)
	}
}
