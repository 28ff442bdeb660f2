// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"github.com/luxfi/geth/rlp"
)

// Codec serializes stored values
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(b []byte, v interface{}) error
}

// RLPCodec stores values as RLP
type RLPCodec struct{}

func (RLPCodec) Marshal(v interface{}) ([]byte, error) {
	return rlp.EncodeToBytes(v)
}

func (RLPCodec) Unmarshal(b []byte, v interface{}) error {
	return rlp.DecodeBytes(b, v)
}
