// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// LRUCache memoizes the results of pure lookups, such as address derivation,
// where an entry can never become stale and only memory bounds the size.
type LRUCache[K comparable, V any] struct {
	cache   *lru.Cache[K, V]
	sfGroup singleflight.Group
}

// NewLRUCache returns a cache holding at most size entries. Sizes below one
// are raised to one.
func NewLRUCache[K comparable, V any](size int) *LRUCache[K, V] {
	if size < 1 {
		size = 1
	}
	// lru.New only fails for non-positive sizes.
	c, _ := lru.New[K, V](size)
	return &LRUCache[K, V]{cache: c}
}

// Get returns the cached value for key or computes it with fetchFunc. Errors
// are never cached. If [invalidate] is true the entry is dropped before the fetch.
func (c *LRUCache[K, V]) Get(key K, fetchFunc FetchFunc[K, V], invalidate bool) (V, error) {
	if invalidate {
		c.cache.Remove(key)
	} else if value, ok := c.cache.Get(key); ok {
		return value, nil
	}

	v, err, _ := c.sfGroup.Do(keyToString(key), func() (interface{}, error) {
		value, err := fetchFunc(key)
		if err != nil {
			return value, err
		}
		c.cache.Add(key, value)
		return value, nil
	})
	if err != nil {
		return *new(V), err
	}
	return v.(V), nil
}

// Len returns the number of cached entries
func (c *LRUCache[K, V]) Len() int {
	return c.cache.Len()
}
