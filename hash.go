// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package xcm

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/luxfi/crypto"
	"github.com/luxfi/ids"
)

const (
	HashSHA256    = "sha256"
	HashKeccak256 = "keccak256"
)

// Hasher maps an encoded envelope to its 32 byte digest. Both sides of a
// channel must agree on the same Hasher.
type Hasher interface {
	Name() string
	Hash(b []byte) ids.ID
}

var (
	// SHA256 is the canonical message hash
	SHA256 Hasher = sha256Hasher{}
	// Keccak256 is available for counterparts that settle on it out of band
	Keccak256 Hasher = keccak256Hasher{}
)

type sha256Hasher struct{}

func (sha256Hasher) Name() string { return HashSHA256 }

func (sha256Hasher) Hash(b []byte) ids.ID {
	return ids.ID(ComputeHash256Array(b))
}

type keccak256Hasher struct{}

func (keccak256Hasher) Name() string { return HashKeccak256 }

func (keccak256Hasher) Hash(b []byte) ids.ID {
	return ids.ID(crypto.Keccak256Hash(b))
}

// HasherByName resolves a configured hash algorithm. The empty name selects SHA256.
func HasherByName(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", HashSHA256:
		return SHA256, nil
	case HashKeccak256:
		return Keccak256, nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", name)
	}
}

// EqualHash compares two digests in constant time.
func EqualHash(a, b ids.ID) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
