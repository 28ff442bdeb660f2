// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the value for a key on a cache miss
type FetchFunc[K comparable, V any] func(key K) (V, error)

// FIFOCache is a bounded cache for append-only facts, such as "message hash h
// was executed". Only successful fetches are stored, so a negative answer is
// always asked again. Concurrent misses on one key share a single fetch.
type FIFOCache[K comparable, V any] struct {
	lock    sync.RWMutex
	entries map[K]V
	// ring of insertion order; next is the slot overwritten on eviction
	ring    []K
	next    int
	sfGroup singleflight.Group
}

// NewFIFOCache creates a FIFO cache with the given capacity
func NewFIFOCache[K comparable, V any](capacity int) *FIFOCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &FIFOCache[K, V]{
		entries: make(map[K]V, capacity),
		ring:    make([]K, 0, capacity),
	}
}

// Get returns the cached value or fetches it
func (c *FIFOCache[K, V]) Get(key K, fetchFunc FetchFunc[K, V]) (V, error) {
	c.lock.RLock()
	val, ok := c.entries[key]
	c.lock.RUnlock()
	if ok {
		return val, nil
	}

	v, err, _ := c.sfGroup.Do(keyToString(key), func() (interface{}, error) {
		fetched, err := fetchFunc(key)
		if err != nil {
			return fetched, err
		}
		c.lock.Lock()
		c.insert(key, fetched)
		c.lock.Unlock()
		return fetched, nil
	})
	if err != nil {
		return *new(V), err
	}
	return v.(V), nil
}

// insert stores val, evicting the oldest key when full. Caller holds the lock.
func (c *FIFOCache[K, V]) insert(key K, val V) {
	if _, exists := c.entries[key]; exists {
		c.entries[key] = val
		return
	}
	if len(c.ring) < cap(c.ring) {
		c.ring = append(c.ring, key)
	} else {
		delete(c.entries, c.ring[c.next])
		c.ring[c.next] = key
		c.next = (c.next + 1) % len(c.ring)
	}
	c.entries[key] = val
}

// Len returns the current number of items in the cache
func (c *FIFOCache[K, V]) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.entries)
}
