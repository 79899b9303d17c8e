package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"vaultScope/internal/model"
)

func readLines(t *testing.T, path string) []model.LogRecord {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	var out []model.LogRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec model.LogRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		out = append(out, rec)
	}
	return out
}

func TestJsonlStorageAppendsBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "logs.jsonl")
	s := NewJsonlStorage(path)

	if err := s.PutLogBatch(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch created the file")
	}

	if err := s.PutLogBatch([]model.LogRecord{{BlockNumber: 1, TxHash: "0xa"}, {BlockNumber: 2, TxHash: "0xb"}}); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := s.PutLogBatch([]model.LogRecord{{BlockNumber: 3, TxHash: "0xc"}}); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	got := readLines(t, path)
	if len(got) != 3 || got[0].BlockNumber != 1 || got[2].TxHash != "0xc" {
		t.Fatalf("unexpected lines %+v", got)
	}
}

func TestOpenJSONLTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	for i := 0; i < 2; i++ {
		w, err := OpenJSONL(path, false)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if err := w.Write(model.LogRecord{BlockNumber: uint64(i)}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	got := readLines(t, path)
	if len(got) != 1 || got[0].BlockNumber != 1 {
		t.Fatalf("expected only the second write, got %+v", got)
	}
}
