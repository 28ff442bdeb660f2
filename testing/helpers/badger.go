// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package helpers

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/xcm/storage"
)

// InMemoryDB opens a throwaway badger database closed at the end of the test.
func InMemoryDB(t *testing.T) *storage.BadgerDB {
	t.Helper()

	opts := badger.DefaultOptions("")
	opts.InMemory = true
	opts.Logger = nil

	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return storage.NewBadgerDB(db)
}

// Backends returns one instance of every storage backend, keyed by name.
func Backends(t *testing.T) map[string]storage.DB {
	return map[string]storage.DB{
		"badger": InMemoryDB(t),
		"memory": storage.NewMemoryDB(),
	}
}
