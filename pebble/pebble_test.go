// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"
)

func TestGetPutDelete(t *testing.T) {
	require := require.New(t)

	db, registry, err := New(t.TempDir(), NewDefaultConfig())
	require.NoError(err)
	require.NotNil(registry)

	_, err = db.Get([]byte("a"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Put([]byte("a"), []byte("1")))
	v, err := db.Get([]byte("a"))
	require.NoError(err)
	require.Equal([]byte("1"), v)

	has, err := db.Has([]byte("a"))
	require.NoError(err)
	require.True(has)

	require.NoError(db.Delete([]byte("a")))
	has, err = db.Has([]byte("a"))
	require.NoError(err)
	require.False(has)

	require.NoError(db.Close())
	_, err = db.Get([]byte("a"))
	require.ErrorIs(err, ErrClosed)
	require.ErrorIs(db.Close(), ErrClosed)
}

func TestBatch(t *testing.T) {
	require := require.New(t)

	db, _, err := New(t.TempDir(), NewDefaultConfig())
	require.NoError(err)
	defer db.Close()

	require.NoError(db.Put([]byte("old"), []byte("x")))

	b := db.NewBatch()
	require.NoError(b.Put([]byte("k1"), []byte("v1")))
	require.NoError(b.Delete([]byte("old")))
	require.Equal(len("k1")+len("v1")+len("old"), b.Size())

	mirror := memdb.New()
	require.NoError(mirror.Put([]byte("old"), []byte("x")))
	require.NoError(b.Replay(mirror))

	require.NoError(b.Write())
	for _, d := range []database.KeyValueReader{db, mirror} {
		v, err := d.Get([]byte("k1"))
		require.NoError(err)
		require.Equal([]byte("v1"), v)
		has, err := d.Has([]byte("old"))
		require.NoError(err)
		require.False(has)
	}

	b.Reset()
	require.Zero(b.Size())
}
