package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"vaultScope/internal/storage"
)

// Store keeps entities as string values under prefix:kind:id.
type Store struct {
	client *goredis.Client
	prefix string
}

// New connects and pings the server.
func New(ctx context.Context, addr, password string, db int, prefix string) (*Store, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if prefix == "" {
		prefix = "vault"
	}
	return &Store{client: client, prefix: prefix}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(kind, id string) string {
	return s.prefix + ":" + kind + ":" + id
}

func (s *Store) Get(ctx context.Context, kind, id string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(kind, id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Apply writes every entity in a single MULTI/EXEC.
func (s *Store) Apply(ctx context.Context, writes []storage.EntityWrite) error {
	if len(writes) == 0 {
		return nil
	}
	if err := storage.Validate(writes); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, w := range writes {
			pipe.Set(ctx, s.key(w.Kind, w.ID), w.Data, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis apply: %w", err)
	}
	return nil
}
