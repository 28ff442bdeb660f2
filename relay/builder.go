// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package relay

import (
	"fmt"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/ledger"
)

// Observed is a message emitted on a source chain, as reported by the relay
// network.
type Observed struct {
	SourceChainID      uint64
	SourceAddress      xcm.Address
	DestinationChainID uint64
	DestinationAddress xcm.Address
	TransactionID      uint32
	Payload            []byte
}

// Envelope returns the canonical envelope of the observed message
func (o *Observed) Envelope() (*xcm.Envelope, error) {
	return xcm.NewEnvelope(
		o.DestinationAddress,
		o.DestinationChainID,
		o.Payload,
		o.SourceAddress,
		o.SourceChainID,
		o.TransactionID,
	)
}

// Builder turns observed messages into transfer requests: it encodes and
// hashes the envelope and derives the account addresses the ledger expects.
type Builder struct {
	deriver *xcm.Deriver
	hasher  xcm.Hasher
}

func NewBuilder(deriver *xcm.Deriver, hasher xcm.Hasher) *Builder {
	if hasher == nil {
		hasher = xcm.SHA256
	}
	return &Builder{
		deriver: deriver,
		hasher:  hasher,
	}
}

// Request builds the transfer request a relay owner submits for o.
func (b *Builder) Request(o *Observed, payer, relayOwner xcm.Address) (ledger.TransferRequest, error) {
	envelope, err := o.Envelope()
	if err != nil {
		return ledger.TransferRequest{}, err
	}
	hash, err := envelope.Hash(b.hasher)
	if err != nil {
		return ledger.TransferRequest{}, err
	}
	client, err := b.deriver.ClientAccount(o.DestinationAddress)
	if err != nil {
		return ledger.TransferRequest{}, fmt.Errorf("failed to derive client account: %w", err)
	}
	record, err := b.deriver.TrustedRecord(client.Address, o.SourceChainID)
	if err != nil {
		return ledger.TransferRequest{}, fmt.Errorf("failed to derive trusted record: %w", err)
	}

	return ledger.TransferRequest{
		Payer:              payer,
		DestinationOwner:   relayOwner,
		SourceChainID:      o.SourceChainID,
		SourceAddress:      o.SourceAddress,
		DestinationChainID: o.DestinationChainID,
		DestinationAddress: o.DestinationAddress,
		TransactionID:      o.TransactionID,
		Payload:            o.Payload,
		IncomingHash:       hash,
		ClientAccount:      client.Address,
		TrustedRecord:      record.Address,
	}, nil
}
