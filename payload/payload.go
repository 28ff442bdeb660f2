// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package payload

import (
	"fmt"
	"strings"

	"github.com/luxfi/xcm"
)

// Kind is the payload discriminant. It travels out of band, on the client
// account of the destination application, never inside the payload bytes.
type Kind uint8

const (
	// KindGeneric is opaque application bytes
	KindGeneric Kind = iota
	// KindOwnership transfers ownership of a uniquely identified asset
	KindOwnership
	// KindToken credits an amount to a destination account
	KindToken
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindOwnership:
		return "ownership"
	case KindToken:
		return "token"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k names a known payload variant
func (k Kind) Valid() bool {
	return k <= KindToken
}

// ParseKind accepts the name or decimal value of a kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "generic", "0":
		return KindGeneric, nil
	case "ownership", "nft", "1":
		return KindOwnership, nil
	case "token", "2":
		return KindToken, nil
	default:
		return 0, fmt.Errorf("%w: unknown payload kind %q", xcm.ErrInvalidPayload, s)
	}
}

// Payload is the typed content of an envelope
type Payload interface {
	// Kind returns the variant tag
	Kind() Kind

	// Bytes returns the canonical encoding of the payload
	Bytes() []byte

	// Verify verifies the payload
	Verify() error
}

// Parse decodes b as the variant named by kind.
func Parse(kind Kind, b []byte) (Payload, error) {
	var (
		p   Payload
		err error
	)
	switch kind {
	case KindGeneric:
		p = NewGeneric(b)
	case KindOwnership:
		p, err = ParseOwnership(b)
	case KindToken:
		p, err = ParseToken(b)
	default:
		return nil, fmt.Errorf("%w: unknown payload kind %d", xcm.ErrInvalidPayload, kind)
	}
	if err != nil {
		return nil, err
	}
	if err := p.Verify(); err != nil {
		return nil, err
	}
	return p, nil
}
