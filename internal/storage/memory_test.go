package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreApplyAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, err := s.Get(ctx, "Pool", "0x01"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	err := s.Apply(ctx, []EntityWrite{
		{Kind: "Pool", ID: "0x01", Data: []byte(`{"id":"0x01"}`)},
		{Kind: "Pool", ID: "0x00", Data: []byte(`{"id":"0x00"}`)},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	data, ok, err := s.Get(ctx, "Pool", "0x01")
	if err != nil || !ok || string(data) != `{"id":"0x01"}` {
		t.Fatalf("unexpected get result %s %v %v", data, ok, err)
	}
	ids := s.IDs("Pool")
	if len(ids) != 2 || ids[0] != "0x00" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestMemoryStoreRejectsEmptyKeysAtomically(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	err := s.Apply(ctx, []EntityWrite{
		{Kind: "Pool", ID: "0x01", Data: []byte(`{}`)},
		{Kind: "", ID: "x"},
	})
	if !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
	if _, ok, _ := s.Get(ctx, "Pool", "0x01"); ok {
		t.Fatalf("partial write applied")
	}
}
