// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package apps

import (
	"github.com/luxfi/xcm/storage"
)

// Passthrough stores generic payloads in the destination's inbox, keyed by
// message hash, for the destination program to consume.
type Passthrough struct {
	lib *storage.Library
}

func NewPassthrough(lib *storage.Library) *Passthrough {
	return &Passthrough{lib: lib}
}

func (*Passthrough) Name() string { return "passthrough" }

func (p *Passthrough) Execute(tx storage.Txn, d *Delivery) error {
	return p.lib.SaveInboxMessage(d.Envelope.DestinationAddress, d.Hash, d.Payload.Bytes())(tx)
}
