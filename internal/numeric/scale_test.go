package numeric

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestScaleDownExact(t *testing.T) {
	cases := []struct {
		raw      string
		decimals uint8
		want     string
	}{
		{"1000000000000000000", 18, "1"},
		{"1", 18, "0.000000000000000001"},
		{"123456789", 6, "123.456789"},
		{"-2500000", 6, "-2.5"},
		{"42", 0, "42"},
		{"0", 8, "0"},
	}
	for _, tc := range cases {
		raw, err := ParseBigInt(tc.raw)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.raw, err)
		}
		got := ScaleDown(raw, tc.decimals)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("ScaleDown(%s, %d) = %s, want %s", tc.raw, tc.decimals, got, tc.want)
		}
	}
}

func TestScaleDownRoundTrips(t *testing.T) {
	raw, _ := new(big.Int).SetString("987654321987654321987654321", 10)
	for _, decimals := range []uint8{0, 6, 8, 18, 24} {
		scaled := ScaleDown(raw, decimals)
		back := scaled.Shift(int32(decimals)).BigInt()
		if back.Cmp(raw) != 0 {
			t.Fatalf("decimals %d: %s scaled back to %s", decimals, raw, back)
		}
	}
}

func TestScaleSharesUsesEighteenDecimals(t *testing.T) {
	raw, _ := new(big.Int).SetString("2500000000000000000", 10)
	if got := ScaleShares(raw); !got.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("expected 2.5, got %s", got)
	}
	if got := ScaleShares(nil); !got.IsZero() {
		t.Fatalf("expected zero for nil, got %s", got)
	}
}

func TestParseBigIntRejectsGarbage(t *testing.T) {
	if _, err := ParseBigInt("12x"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := ParseBigInts([]string{"1", "oops"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSum(t *testing.T) {
	got := Sum([]*big.Int{big.NewInt(5), big.NewInt(-7), nil, big.NewInt(2)})
	if got.Sign() != 0 {
		t.Fatalf("expected zero sum, got %s", got)
	}
}
