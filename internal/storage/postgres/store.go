package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaultScope/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	kind       TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, id)
)`

// Store provides Postgres persistence for entities.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the entities table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create entities table: %w", err)
	}
	return nil
}

// Get returns the encoded entity for (kind, id).
func (s *Store) Get(ctx context.Context, kind, id string) ([]byte, bool, error) {
	var data []byte
	row := s.pool.QueryRow(ctx, `SELECT data FROM entities WHERE kind=$1 AND id=$2`, kind, id)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Apply upserts all writes inside one transaction.
func (s *Store) Apply(ctx context.Context, writes []storage.EntityWrite) error {
	if len(writes) == 0 {
		return nil
	}
	if err := storage.Validate(writes); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, w := range writes {
		batch.Queue(`
			INSERT INTO entities (kind, id, data, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (kind, id)
			DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		`, w.Kind, w.ID, string(w.Data))
	}

	br := tx.SendBatch(ctx, batch)
	for _, w := range writes {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("upsert %s %s: %w", w.Kind, w.ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
