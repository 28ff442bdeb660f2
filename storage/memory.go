// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/xcm"
)

var (
	_ DB = (*MemoryDB)(nil)

	errReadOnly = errors.New("write in read-only transaction")
	errClosed   = errors.New("database closed")
)

// MemoryDB is an in-memory backend. Updates are serialized and staged in an
// overlay that is only applied once the unit of work succeeds.
type MemoryDB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryDB creates a new memory database
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		data: make(map[string][]byte),
	}
}

func (m *MemoryDB) View(fn func(Txn) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return errClosed
	}
	return fn(&memoryTxn{base: m.data, readOnly: true})
}

func (m *MemoryDB) Update(fn func(Txn) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errClosed
	}
	tx := &memoryTxn{
		base:   m.data,
		writes: make(map[string][]byte),
	}
	if err := fn(tx); err != nil {
		return err
	}
	for k, v := range tx.writes {
		if v == nil {
			delete(m.data, k)
			continue
		}
		m.data[k] = v
	}
	return nil
}

func (m *MemoryDB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// Len returns the number of stored keys
func (m *MemoryDB) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// memoryTxn records deletes as nil values in writes
type memoryTxn struct {
	base     map[string][]byte
	writes   map[string][]byte
	readOnly bool
}

func (t *memoryTxn) Get(key []byte) ([]byte, error) {
	v, staged := t.writes[string(key)]
	if !staged {
		v = t.base[string(key)]
	}
	if v == nil {
		return nil, fmt.Errorf("%w (key: %x)", xcm.ErrNotFound, key)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (t *memoryTxn) Set(key, value []byte) error {
	if t.readOnly {
		return errReadOnly
	}
	v := make([]byte, len(value))
	copy(v, value)
	t.writes[string(key)] = v
	return nil
}

func (t *memoryTxn) Delete(key []byte) error {
	if t.readOnly {
		return errReadOnly
	}
	t.writes[string(key)] = nil
	return nil
}
