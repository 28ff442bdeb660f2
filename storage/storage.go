// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

// Txn is a read-write view of the store inside one transaction. Get returns
// an error matching xcm.ErrNotFound for absent keys.
type Txn interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

// DB runs units of work atomically. Update commits every write made by fn,
// or none of them when fn fails.
type DB interface {
	View(fn func(Txn) error) error
	Update(fn func(Txn) error) error
	Close() error
}
