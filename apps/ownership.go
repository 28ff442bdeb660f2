// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package apps

import (
	"fmt"

	"github.com/luxfi/xcm/payload"
	"github.com/luxfi/xcm/storage"
)

// Ownership assigns the asset named in an ownership payload to its
// recipient. The source side has already released the asset, so any
// previous owner on this chain is replaced.
type Ownership struct {
	lib *storage.Library
}

func NewOwnership(lib *storage.Library) *Ownership {
	return &Ownership{lib: lib}
}

func (*Ownership) Name() string { return "ownership" }

func (o *Ownership) Execute(tx storage.Txn, d *Delivery) error {
	p, ok := d.Payload.(*payload.Ownership)
	if !ok {
		return fmt.Errorf("unexpected payload %s", d.Payload.Kind())
	}
	return o.lib.SaveAssetOwner(p.AssetID, p.Recipient)(tx)
}
