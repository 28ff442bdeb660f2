// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package payload

import (
	"fmt"

	"github.com/luxfi/xcm"
)

// Generic carries application bytes the core does not interpret
type Generic struct {
	Data []byte
}

func NewGeneric(data []byte) *Generic {
	return &Generic{Data: data}
}

func (*Generic) Kind() Kind { return KindGeneric }

// Bytes returns the data itself, without framing
func (g *Generic) Bytes() []byte {
	return g.Data
}

func (g *Generic) Verify() error {
	if len(g.Data) > xcm.MaxFieldSize {
		return fmt.Errorf("%w: generic payload size %d exceeds maximum %d", xcm.ErrInvalidPayload, len(g.Data), xcm.MaxFieldSize)
	}
	return nil
}
