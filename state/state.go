// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"
)

var ErrNotScoped = errors.New("state does not support rollback")

var _ Immutable = (*ReadOnlyDatabase)(nil)

type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

// Scoped is a [Mutable] whose writes after a restore point can be
// discarded.
type Scoped interface {
	Mutable

	OpIndex() int
	Rollback(ctx context.Context, restorePoint int)
}

// ReadOnlyDatabase exposes a persisted key/value store as [Immutable].
// Missing keys surface as [database.ErrNotFound].
type ReadOnlyDatabase struct {
	db database.KeyValueReader
}

func NewReadOnlyDatabase(db database.KeyValueReader) *ReadOnlyDatabase {
	return &ReadOnlyDatabase{db: db}
}

func (r *ReadOnlyDatabase) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return r.db.Get(key)
}
