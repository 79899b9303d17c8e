package storage

import (
	"context"
	"errors"

	"vaultScope/internal/model"
)

// Storage defines a sink for log records.
type Storage interface {
	PutLogBatch(logs []model.LogRecord) error
}

// ErrEmptyKey is returned for writes without a kind or id.
var ErrEmptyKey = errors.New("entity kind and id are required")

// EntityWrite is one encoded entity to persist.
type EntityWrite struct {
	Kind string
	ID   string
	Data []byte
}

// EntityStore persists encoded entities keyed by (kind, id). Apply must
// persist all writes or none.
type EntityStore interface {
	Get(ctx context.Context, kind, id string) ([]byte, bool, error)
	Apply(ctx context.Context, writes []EntityWrite) error
}

// Validate checks that every write is addressable.
func Validate(writes []EntityWrite) error {
	for _, w := range writes {
		if w.Kind == "" || w.ID == "" {
			return ErrEmptyKey
		}
	}
	return nil
}
