// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package xcm

import (
	"crypto/sha256"
	"encoding/binary"
)

// Constants
const (
	// KiB is 1024 bytes
	KiB = 1024
)

// ComputeHash256Array computes the SHA256 hash of data
func ComputeHash256Array(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ChainIDSeed encodes a chain id the way it appears in derivation seeds:
// 8 bytes, little-endian.
func ChainIDSeed(chainID uint64) []byte {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, Uint64Len), chainID)
}
