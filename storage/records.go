// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/xcm"
)

// TrustedSource is the one counterpart address a client accepts messages
// from on a given chain.
type TrustedSource struct {
	ChainID uint64
	Address xcm.Address
}

// ClientAccount is the per-application account a destination program keeps.
// Owner administers its trusted sources and initiates outbound messages.
// RelayOwner alone may submit inbound transfers and dispatch outbound ones.
// PayloadKind tells how to read payloads. NextTransactionID numbers the
// client's outbound messages.
type ClientAccount struct {
	Owner             xcm.Address
	RelayOwner        xcm.Address
	PayloadKind       uint8
	Bump              uint8
	NextTransactionID uint32
}

// OutgoingTransfer tracks one outbound message from initiation until the
// relay reports its delivery result.
type OutgoingTransfer struct {
	DestinationChainID uint64
	DestinationAddress xcm.Address
	TransactionID      uint32
	Hash               ids.ID
	Sent               bool
	Reported           bool
	StatusCode         uint8
}
