package indexer

import (
	"math"
	"reflect"
	"testing"
)

func TestSplitRange(t *testing.T) {
	cases := []struct {
		name      string
		from, to  uint64
		batchSize uint64
		want      []BlockRange
	}{
		{
			name: "even", from: 100, to: 105, batchSize: 2,
			want: []BlockRange{{100, 101}, {102, 103}, {104, 105}},
		},
		{
			name: "short tail", from: 100, to: 104, batchSize: 2,
			want: []BlockRange{{100, 101}, {102, 103}, {104, 104}},
		},
		{
			name: "single block", from: 5, to: 5, batchSize: 10,
			want: []BlockRange{{5, 5}},
		},
		{
			name: "top of range", from: math.MaxUint64 - 2, to: math.MaxUint64, batchSize: 2,
			want: []BlockRange{{math.MaxUint64 - 2, math.MaxUint64 - 1}, {math.MaxUint64, math.MaxUint64}},
		},
	}
	for _, tc := range cases {
		got, err := SplitRange(tc.from, tc.to, tc.batchSize)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: ranges mismatch: %+v != %+v", tc.name, got, tc.want)
		}
		var total uint64
		for _, r := range got {
			if r.Len() > tc.batchSize {
				t.Fatalf("%s: range %+v exceeds batch size", tc.name, r)
			}
			total += r.Len()
		}
		if total != tc.to-tc.from+1 {
			t.Fatalf("%s: ranges cover %d blocks", tc.name, total)
		}
	}
}

func TestSplitRangeInvalid(t *testing.T) {
	if _, err := SplitRange(10, 9, 1); err == nil {
		t.Fatalf("expected error for invalid range")
	}
	if _, err := SplitRange(1, 10, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}
