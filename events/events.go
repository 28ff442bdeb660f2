// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"sync"

	"github.com/luxfi/geth/common"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
)

type Type string

const (
	TypePayloadReceived       Type = "payload_received"
	TypeInitiateTransfer      Type = "initiate_transfer"
	TypeTransferSendingResult Type = "transfer_sending_result"
)

// PayloadReceived is emitted once per executed inbound transfer
type PayloadReceived struct {
	SourceChainID      uint64      `json:"sourceChainID"`
	SourceAddress      xcm.Address `json:"sourceAddress"`
	DestinationAddress xcm.Address `json:"destinationAddress"`
	TransactionID      uint32      `json:"transactionID"`
	TransferHash       common.Hash `json:"transferHash"`
	Kind               string      `json:"kind"`
}

// InitiateTransfer is emitted once per initiated outbound message. Relays
// pick it up and carry the envelope to the destination chain.
type InitiateTransfer struct {
	DestinationChainID uint64      `json:"destinationChainID"`
	TrustedAddress     xcm.Address `json:"trustedAddress"`
	SourceAddress      xcm.Address `json:"sourceAddress"`
	TransactionID      uint32      `json:"transactionID"`
	TransferHash       common.Hash `json:"transferHash"`
	Payload            []byte      `json:"payload"`
}

// TransferSendingResult reports the delivery result of an outbound message
type TransferSendingResult struct {
	DestinationAddress xcm.Address `json:"destinationAddress"`
	TransferHash       common.Hash `json:"transferHash"`
	StatusCode         uint8       `json:"statusCode"`
}

// Event is one notification on the hub. The field matching Type is set.
type Event struct {
	Type                  Type                   `json:"type"`
	PayloadReceived       *PayloadReceived       `json:"payloadReceived,omitempty"`
	InitiateTransfer      *InitiateTransfer      `json:"initiateTransfer,omitempty"`
	TransferSendingResult *TransferSendingResult `json:"transferSendingResult,omitempty"`
}

func (e PayloadReceived) Event() Event {
	return Event{Type: TypePayloadReceived, PayloadReceived: &e}
}

func (e InitiateTransfer) Event() Event {
	return Event{Type: TypeInitiateTransfer, InitiateTransfer: &e}
}

func (e TransferSendingResult) Event() Event {
	return Event{Type: TypeTransferSendingResult, TransferSendingResult: &e}
}

func (e Event) hash() common.Hash {
	switch {
	case e.PayloadReceived != nil:
		return e.PayloadReceived.TransferHash
	case e.InitiateTransfer != nil:
		return e.InitiateTransfer.TransferHash
	case e.TransferSendingResult != nil:
		return e.TransferSendingResult.TransferHash
	default:
		return common.Hash{}
	}
}

// Hub fans events out to subscribers. A subscriber that falls behind loses
// events rather than stalling the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
	log    *zap.Logger
}

type subscription struct {
	name string
	ch   chan Event
}

// NewHub creates a new hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs: make(map[uint64]*subscription),
		log:  logger.Named("events"),
	}
}

// Subscribe registers a named subscriber with the given buffer. The returned
// function unsubscribes and closes the channel.
func (h *Hub) Subscribe(name string, buffer int) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	sub := &subscription{
		name: name,
		ch:   make(chan Event, buffer),
	}
	h.subs[id] = sub

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(sub.ch)
		})
	}
}

// Publish delivers e to every subscriber without blocking
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		select {
		case sub.ch <- e:
		default:
			h.log.Warn("Dropping event for slow subscriber",
				zap.String("subscriber", sub.name),
				zap.String("type", string(e.Type)),
				zap.Stringer("transferHash", e.hash()),
			)
		}
	}
}

// Len returns the number of subscribers
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
