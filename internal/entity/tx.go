package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vaultScope/internal/model"
	"vaultScope/internal/storage"
)

var errCommitted = errors.New("transaction already committed")

type entryKey struct {
	kind string
	id   string
}

// Tx is the unit of work for one event. Loaded entities are cached so every
// component touching the same id shares one instance; nothing reaches the
// store until Commit. A Tx is not safe for concurrent use.
type Tx struct {
	ctx       context.Context
	r         *Resolver
	entries   map[entryKey]model.Entity
	dirty     []entryKey
	dirtySet  map[entryKey]struct{}
	created   []model.Entity
	committed bool
}

// Context returns the context the Tx was opened with.
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// Reader returns the contract reader backing the resolver.
func (tx *Tx) Reader() ContractReader {
	return tx.r.reader
}

// Load returns the entity of type T with id, or nil when it does not exist.
func Load[T any, PT interface {
	*T
	model.Entity
}](tx *Tx, id string) (PT, error) {
	kind := PT(new(T)).EntityKind()
	key := entryKey{kind: kind, id: id}
	if cached, ok := tx.entries[key]; ok {
		v, ok := cached.(PT)
		if !ok {
			return nil, fmt.Errorf("cached %s %s has type %T", kind, id, cached)
		}
		return v, nil
	}
	data, found, err := tx.r.store.Get(tx.ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", kind, id, err)
	}
	if !found {
		return nil, nil
	}
	v := PT(new(T))
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", kind, id, err)
	}
	tx.entries[key] = v
	return v, nil
}

// stage caches a new entity without marking it for persistence. Callers save
// it once they have mutated it.
func (tx *Tx) stage(e model.Entity) {
	tx.entries[entryKey{kind: e.EntityKind(), id: e.EntityID()}] = e
}

// Save marks e for persistence at commit.
func (tx *Tx) Save(e model.Entity) {
	key := entryKey{kind: e.EntityKind(), id: e.EntityID()}
	tx.entries[key] = e
	if _, ok := tx.dirtySet[key]; ok {
		return
	}
	tx.dirtySet[key] = struct{}{}
	tx.dirty = append(tx.dirty, key)
}

// Insert saves a newly created immutable record.
func (tx *Tx) Insert(e model.Entity) {
	tx.Save(e)
	tx.created = append(tx.created, e)
}

// Created returns the records inserted in this Tx, in order.
func (tx *Tx) Created() []model.Entity {
	return tx.created
}

// Commit encodes every saved entity and applies them atomically.
func (tx *Tx) Commit() error {
	if tx.committed {
		return errCommitted
	}
	writes := make([]storage.EntityWrite, 0, len(tx.dirty))
	for _, key := range tx.dirty {
		data, err := json.Marshal(tx.entries[key])
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", key.kind, key.id, err)
		}
		writes = append(writes, storage.EntityWrite{Kind: key.kind, ID: key.id, Data: data})
	}
	if err := tx.r.store.Apply(tx.ctx, writes); err != nil {
		return fmt.Errorf("apply %d entities: %w", len(writes), err)
	}
	tx.committed = true
	return nil
}
