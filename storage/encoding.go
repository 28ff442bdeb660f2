// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/xcm"
)

// EncodeKey builds a key from a one byte prefix and fixed width segments.
// Byte slices are length-prefixed so that adjacent segments cannot run into
// each other.
func EncodeKey(prefix uint8, segments ...interface{}) []byte {
	key := []byte{prefix}
	for _, segment := range segments {
		switch s := segment.(type) {
		case uint64:
			key = binary.BigEndian.AppendUint64(key, s)
		case xcm.Address:
			key = append(key, s[:]...)
		case ids.ID:
			key = append(key, s[:]...)
		case []byte:
			key = binary.BigEndian.AppendUint32(key, uint32(len(s)))
			key = append(key, s...)
		default:
			panic(fmt.Sprintf("unknown type (%T)", segment))
		}
	}
	return key
}
