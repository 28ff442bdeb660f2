// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package xcm

import (
	"fmt"

	"github.com/luxfi/ids"
)

// envelopeOverhead is the encoded size of everything but the payload bytes.
const envelopeOverhead = 2*AddressLen + 2*Uint64Len + 2*Uint32Len

// Envelope is the message a source program emits for a destination program.
// Only its hash is ever persisted.
type Envelope struct {
	DestinationAddress Address
	DestinationChainID uint64
	Payload            []byte
	SourceAddress      Address
	SourceChainID      uint64
	TransactionID      uint32
}

// NewEnvelope creates a new envelope
func NewEnvelope(
	destination Address,
	destinationChainID uint64,
	payload []byte,
	source Address,
	sourceChainID uint64,
	txID uint32,
) (*Envelope, error) {
	e := &Envelope{
		DestinationAddress: destination,
		DestinationChainID: destinationChainID,
		Payload:            payload,
		SourceAddress:      source,
		SourceChainID:      sourceChainID,
		TransactionID:      txID,
	}
	if err := e.Verify(); err != nil {
		return nil, err
	}
	return e, nil
}

// Verify checks the envelope is encodable and crosses a chain boundary.
func (e *Envelope) Verify() error {
	if e.DestinationChainID == e.SourceChainID {
		return fmt.Errorf("%w: source and destination are both chain %d", ErrInvalidEnvelope, e.SourceChainID)
	}
	if len(e.Payload) > MaxFieldSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d", ErrInvalidEnvelope, len(e.Payload), MaxFieldSize)
	}
	return nil
}

// Encode returns the canonical encoding of the envelope.
func (e *Envelope) Encode() ([]byte, error) {
	w := NewWriter(envelopeOverhead + len(e.Payload))
	w.Address(e.DestinationAddress)
	w.Uint64(e.DestinationChainID)
	w.Bytes(e.Payload)
	w.Address(e.SourceAddress)
	w.Uint64(e.SourceChainID)
	w.Uint32(e.TransactionID)
	return w.Finish()
}

// Bytes returns the canonical encoding, or nil if the payload is oversized.
func (e *Envelope) Bytes() []byte {
	b, _ := e.Encode()
	return b
}

// Hash returns the digest of the canonical encoding under h.
func (e *Envelope) Hash(h Hasher) (ids.ID, error) {
	b, err := e.Encode()
	if err != nil {
		return ids.Empty, err
	}
	return h.Hash(b), nil
}

// ID returns the SHA256 hash of the envelope
func (e *Envelope) ID() ids.ID {
	return SHA256.Hash(e.Bytes())
}

// ParseEnvelope decodes and verifies an envelope
func ParseEnvelope(b []byte) (*Envelope, error) {
	r := NewReader(b)
	e := &Envelope{
		DestinationAddress: r.Address("destination address"),
		DestinationChainID: r.Uint64("destination chain id"),
		Payload:            r.Bytes("payload"),
		SourceAddress:      r.Address("source address"),
		SourceChainID:      r.Uint64("source chain id"),
		TransactionID:      r.Uint32("transaction id"),
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}
	if err := e.Verify(); err != nil {
		return nil, err
	}
	return e, nil
}
