// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type ttlEntry[V any] struct {
	value   V
	expires time.Time
}

// TTLCache serves read-only views of mutable state, such as trusted source
// records that an owner may rotate. Entries expire after ttl. It must never be
// consulted on the transfer path, which reads the store directly.
type TTLCache[K comparable, V any] struct {
	lock    sync.RWMutex
	entries map[K]ttlEntry[V]
	ttl     time.Duration
	now     func() time.Time
	sfGroup singleflight.Group
}

func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		entries: make(map[K]ttlEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a fresh cached value or fetches it. Concurrent fetches for the
// same key are deduplicated. If [invalidate] is true the entry is dropped first
// so that no other caller reads the stale value while the fetch is in flight.
func (c *TTLCache[K, V]) Get(key K, fetchFunc FetchFunc[K, V], invalidate bool) (V, error) {
	if invalidate {
		c.Invalidate(key)
	} else if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.sfGroup.Do(keyToString(key), func() (interface{}, error) {
		fetched, err := fetchFunc(key)
		if err != nil {
			return fetched, err
		}
		c.store(key, fetched)
		return fetched, nil
	})
	if err != nil {
		return *new(V), err
	}
	return v.(V), nil
}

func (c *TTLCache[K, V]) lookup(key K) (V, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		return *new(V), false
	}
	return e.value, true
}

// store inserts value and sweeps expired entries so that keys that are never
// read again do not accumulate.
func (c *TTLCache[K, V]) store(key K, value V) {
	now := c.now()
	c.lock.Lock()
	defer c.lock.Unlock()
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = ttlEntry[V]{
		value:   value,
		expires: now.Add(c.ttl),
	}
}

// Invalidate drops the entry for key
func (c *TTLCache[K, V]) Invalidate(key K) {
	c.lock.Lock()
	delete(c.entries, key)
	c.lock.Unlock()
}

// Len returns the number of stored entries, expired or not
func (c *TTLCache[K, V]) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.entries)
}

// keyToString allows for both fmt.Stringer and primitive key types.
func keyToString[K comparable](key K) string {
	if s, ok := any(key).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", key)
}
