package model

import (
	"encoding/json"
	"testing"
)

func TestSwapEventDataJSONStringFields(t *testing.T) {
	payload := SwapEventData{
		PoolID:    "0x5c6ee304399dbdb9c8ef030ab642b10820db8f56000200000000000000000014",
		TokenIn:   "0x1111111111111111111111111111111111111111",
		TokenOut:  "0x2222222222222222222222222222222222222222",
		AmountIn:  "12345678901234567890",
		AmountOut: "42",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if _, ok := decoded["amount_in"].(string); !ok {
		t.Fatalf("amount_in should be string")
	}
	if _, ok := decoded["amount_out"].(string); !ok {
		t.Fatalf("amount_out should be string")
	}
}

func TestTypedEventRecordKeepsDecodedPayload(t *testing.T) {
	event := TypedEvent{
		BlockNumber: 10,
		TxHash:      "0xABC",
		LogIndex:    3,
		EventName:   EventPoolBalanceChanged,
		Decoded: PoolBalanceChangedEventData{
			PoolID: "0x01",
			Tokens: []string{"0xa", "0xb"},
			Deltas: []string{"5", "-1"},
		},
	}
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var rec TypedEventRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	var payload PoolBalanceChangedEventData
	if err := json.Unmarshal(rec.Decoded, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Deltas) != 2 || payload.Deltas[1] != "-1" {
		t.Fatalf("unexpected deltas %v", payload.Deltas)
	}
	if got := rec.Meta().ID(); got != "0xabc3" {
		t.Fatalf("unexpected event id %s", got)
	}
}

func TestCursorCovers(t *testing.T) {
	c := &Cursor{ID: "process", BlockNumber: 100, LogIndex: 5}
	cases := []struct {
		block, index uint64
		want         bool
	}{
		{99, 50, true},
		{100, 5, true},
		{100, 4, true},
		{100, 6, false},
		{101, 0, false},
	}
	for _, tc := range cases {
		if got := c.Covers(tc.block, tc.index); got != tc.want {
			t.Fatalf("Covers(%d, %d) = %v, want %v", tc.block, tc.index, got, tc.want)
		}
	}
	var empty *Cursor
	if empty.Covers(0, 0) {
		t.Fatalf("nil cursor covers nothing")
	}
}

func TestJoinID(t *testing.T) {
	if got := JoinID("0xpool", "0xtoken"); got != "0xpool-0xtoken" {
		t.Fatalf("unexpected id %s", got)
	}
}
