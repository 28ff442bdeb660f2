// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
)

var _ DB = (*BadgerDB)(nil)

// BadgerDB is the durable backend. Badger runs optimistic serializable
// transactions, so two updates that read and write the same key cannot both
// commit; the loser fails with xcm.ErrConflict.
type BadgerDB struct {
	db *badger.DB
}

// OpenBadger opens the database at path. An in-memory database ignores path.
func OpenBadger(path string, inMemory bool, logger *zap.Logger) (*BadgerDB, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("")
		opts.InMemory = true
	}
	opts.Logger = nil
	if logger != nil {
		opts.Logger = &badgerLogger{logger.Named("badger").Sugar()}
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger database: %w", err)
	}
	return NewBadgerDB(db), nil
}

// NewBadgerDB wraps an already open badger database
func NewBadgerDB(db *badger.DB) *BadgerDB {
	return &BadgerDB{db: db}
}

func (b *BadgerDB) View(fn func(Txn) error) error {
	return b.db.View(func(tx *badger.Txn) error {
		return fn(badgerTxn{tx: tx})
	})
}

func (b *BadgerDB) Update(fn func(Txn) error) error {
	err := b.db.Update(func(tx *badger.Txn) error {
		return fn(badgerTxn{tx: tx})
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %v", xcm.ErrConflict, err)
	}
	return err
}

func (b *BadgerDB) Close() error {
	return b.db.Close()
}

type badgerTxn struct {
	tx *badger.Txn
}

func (t badgerTxn) Get(key []byte) ([]byte, error) {
	item, err := t.tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w (key: %x)", xcm.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get value (key: %x): %w", key, err)
	}
	return item.ValueCopy(nil)
}

func (t badgerTxn) Set(key, value []byte) error {
	return t.tx.Set(key, value)
}

func (t badgerTxn) Delete(key []byte) error {
	return t.tx.Delete(key)
}

// badgerLogger adapts zap to badger's logger interface
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
