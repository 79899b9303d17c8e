package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vaultScope/internal/model"
)

// JSONLWriter writes one JSON document per line. It is safe for concurrent
// use.
type JSONLWriter struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
}

// OpenJSONL opens path for writing, creating parent directories. With
// appendMode false an existing file is truncated.
func OpenJSONL(path string, appendMode bool) (*JSONLWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &JSONLWriter{file: file, buf: bufio.NewWriter(file)}, nil
}

// Write encodes v as a single line.
func (w *JSONLWriter) Write(v interface{}) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.buf.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Flush pushes buffered lines to the file.
func (w *JSONLWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (w *JSONLWriter) Close() error {
	if w == nil {
		return nil
	}
	if err := w.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// JsonlStorage appends log batches to a JSONL file, reopening it per batch
// so a crash loses at most the batch in flight.
type JsonlStorage struct {
	path string
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutLogBatch appends logs in order.
func (s *JsonlStorage) PutLogBatch(logs []model.LogRecord) error {
	if len(logs) == 0 {
		return nil
	}
	w, err := OpenJSONL(s.path, true)
	if err != nil {
		return err
	}
	for _, record := range logs {
		if err := w.Write(record); err != nil {
			_ = w.Close()
			return fmt.Errorf("log %s: %w", record.ID(), err)
		}
	}
	return w.Close()
}
