package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Checkpoint records the last block whose logs were fully written.
type Checkpoint struct {
	ChainID            uint64 `json:"chain_id,omitempty"`
	LastProcessedBlock uint64 `json:"last_processed_block"`
	UpdatedAt          string `json:"updated_at"`
}

// CheckpointStore keeps a Checkpoint in a JSON file. A disabled store
// never reads or writes.
type CheckpointStore struct {
	path    string
	enabled bool
}

func NewCheckpointStore(path string, enabled bool) *CheckpointStore {
	return &CheckpointStore{path: path, enabled: enabled && path != ""}
}

// Load reads the checkpoint. It reports false when none was saved.
func (c *CheckpointStore) Load() (Checkpoint, bool, error) {
	if !c.enabled {
		return Checkpoint{}, false, nil
	}
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("parse checkpoint %s: %w", c.path, err)
	}
	return cp, true, nil
}

// Resume returns the block to start from given the configured start. A
// checkpoint saved for another chain is an error.
func (c *CheckpointStore) Resume(chainID, from uint64) (uint64, bool, error) {
	cp, ok, err := c.Load()
	if err != nil || !ok {
		return from, false, err
	}
	if cp.ChainID != 0 && cp.ChainID != chainID {
		return 0, false, fmt.Errorf("checkpoint belongs to chain %d, rpc serves chain %d", cp.ChainID, chainID)
	}
	if cp.LastProcessedBlock < from {
		return from, false, nil
	}
	return cp.LastProcessedBlock + 1, true, nil
}

// Save replaces the checkpoint through a temp file and rename.
func (c *CheckpointStore) Save(chainID, lastProcessed uint64) error {
	if !c.enabled {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	data, err := json.Marshal(Checkpoint{
		ChainID:            chainID,
		LastProcessedBlock: lastProcessed,
		UpdatedAt:          time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}
