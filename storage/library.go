// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

// Library builds storage operations. Each operation is a closure run inside
// a transaction, so callers compose several of them into one atomic unit.
type Library struct {
	codec Codec
}

// New returns a new storage library using the given codec.
func New(codec Codec) *Library {
	return &Library{
		codec: codec,
	}
}
