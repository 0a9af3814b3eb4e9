// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"
	"slices"

	"github.com/ava-labs/avalanchego/database"
	"golang.org/x/exp/maps"

	"github.com/ava-labs/fundvm/state"
)

var _ state.Scoped = (*InMemoryStore)(nil)

// InMemoryStore is a map backed [state.Scoped]. Every write is journaled,
// so a test can discard a failed operation the way the block processor
// discards a failed transaction.
type InMemoryStore struct {
	values  map[string][]byte
	journal []overwrite
}

// overwrite records the value a write replaced.
type overwrite struct {
	key     string
	value   []byte
	existed bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		values: make(map[string][]byte),
	}
}

func (i *InMemoryStore) GetValue(_ context.Context, key []byte) ([]byte, error) {
	val, ok := i.values[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return slices.Clone(val), nil
}

func (i *InMemoryStore) Insert(_ context.Context, key []byte, value []byte) error {
	k := string(key)
	prev, existed := i.values[k]
	i.journal = append(i.journal, overwrite{key: k, value: prev, existed: existed})
	i.values[k] = slices.Clone(value)
	return nil
}

func (i *InMemoryStore) Remove(_ context.Context, key []byte) error {
	k := string(key)
	prev, existed := i.values[k]
	if !existed {
		return nil
	}
	i.journal = append(i.journal, overwrite{key: k, value: prev, existed: true})
	delete(i.values, k)
	return nil
}

// OpIndex returns a restore point covering every write so far.
func (i *InMemoryStore) OpIndex() int {
	return len(i.journal)
}

// Rollback undoes every write made after [restorePoint].
func (i *InMemoryStore) Rollback(_ context.Context, restorePoint int) {
	for j := len(i.journal) - 1; j >= restorePoint; j-- {
		w := i.journal[j]
		if w.existed {
			i.values[w.key] = w.value
		} else {
			delete(i.values, w.key)
		}
	}
	i.journal = i.journal[:restorePoint]
}

// Len returns the number of keys currently stored.
func (i *InMemoryStore) Len() int {
	return len(i.values)
}

// Keys returns the stored keys in byte order.
func (i *InMemoryStore) Keys() []string {
	keys := maps.Keys(i.values)
	slices.Sort(keys)
	return keys
}
