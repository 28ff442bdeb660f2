// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/luxfi/ids"
)

// SanitizeHexString removes an optional 0x prefix.
func SanitizeHexString(hex string) string {
	return strings.TrimPrefix(strings.TrimPrefix(hex, "0x"), "0X")
}

// DecodeHex decodes a hex string with or without the 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	return hex.DecodeString(SanitizeHexString(s))
}

// HexOrCB58ToID parses a 32 byte identifier given as hex or cb58.
func HexOrCB58ToID(s string) (ids.ID, error) {
	if b, err := DecodeHex(s); err == nil {
		if len(b) != len(ids.Empty) {
			return ids.Empty, fmt.Errorf("id must be %d bytes, got %d", len(ids.Empty), len(b))
		}
		return ids.ID(b), nil
	}
	return ids.FromString(s)
}
