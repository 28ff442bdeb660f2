// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package xcm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const (
	// MaxSeedLen is the maximum length of a single derivation seed.
	MaxSeedLen = 32
	// MaxSeeds is the maximum number of seeds, including the bump seed.
	MaxSeeds = 16

	derivationMarker = "ProgramDerivedAddress"
)

// Address is a 32 byte account identifier: either a public key or an address
// derived from seeds under a program identity.
type Address [AddressLen]byte

// EmptyAddress is the all-zero address
var EmptyAddress = Address{}

// String returns the base58 form of the address
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Hex returns the 0x-prefixed hex form of the address
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsEmpty reports whether the address is all zeroes
func (a Address) IsEmpty() bool {
	return a == EmptyAddress
}

// Bytes returns a copy of the address bytes
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLen)
	copy(b, a[:])
	return b
}

// MarshalText implements encoding.TextMarshaler
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ToAddress converts a 32 byte slice into an Address
func ToAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, fmt.Errorf("address must be %d bytes, got %d", AddressLen, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// ParseAddress accepts base58 or 0x-prefixed hex.
func ParseAddress(s string) (Address, error) {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return EmptyAddress, fmt.Errorf("invalid hex address %q: %w", s, err)
		}
		return ToAddress(b)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyAddress, fmt.Errorf("invalid base58 address %q: %w", s, err)
	}
	return ToAddress(b)
}

// IsOnCurve reports whether the address is a valid ed25519 point, i.e. could
// have a private key.
func IsOnCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

// CreateProgramAddress derives an address from seeds under program. The
// result is rejected with ErrInvalidSeeds when it lands on the curve.
func CreateProgramAddress(seeds [][]byte, program Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return EmptyAddress, fmt.Errorf("%w: %d seeds, maximum %d", ErrSeedTooLong, len(seeds), MaxSeeds)
	}
	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return EmptyAddress, fmt.Errorf("%w: seed %d is %d bytes, maximum %d", ErrSeedTooLong, i, len(seed), MaxSeedLen)
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write([]byte(derivationMarker))

	var a Address
	copy(a[:], h.Sum(nil))
	if IsOnCurve(a) {
		return EmptyAddress, ErrInvalidSeeds
	}
	return a, nil
}

// FindProgramAddress searches bump seeds from 255 down and returns the first
// off-curve address together with its bump.
func FindProgramAddress(seeds [][]byte, program Address) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return EmptyAddress, 0, fmt.Errorf("%w: %d seeds leave no room for the bump seed", ErrSeedTooLong, len(seeds))
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		a, err := CreateProgramAddress(withBump, program)
		switch {
		case err == nil:
			return a, uint8(bump), nil
		case err == ErrInvalidSeeds:
			continue
		default:
			return EmptyAddress, 0, err
		}
	}
	return EmptyAddress, 0, fmt.Errorf("%w: no viable bump seed", ErrInvalidSeeds)
}

// VerifyProgramAddress checks that a was derived from seeds under program.
func VerifyProgramAddress(a Address, seeds [][]byte, program Address) (uint8, error) {
	derived, bump, err := FindProgramAddress(seeds, program)
	if err != nil {
		return 0, err
	}
	if derived != a {
		return 0, fmt.Errorf("%w: address %s does not match the given seeds", ErrInvalidAccount, a)
	}
	return bump, nil
}
