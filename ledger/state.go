// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

// State tracks how far an inbound transfer progressed
type State uint8

const (
	StateReceived State = iota
	StateSourceVerified
	StateHashVerified
	StateExecuted
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateSourceVerified:
		return "source_verified"
	case StateHashVerified:
		return "hash_verified"
	case StateExecuted:
		return "executed"
	default:
		return "unknown"
	}
}

// OutboundState tracks how far an outbound message progressed
type OutboundState uint8

const (
	OutboundPending OutboundState = iota
	OutboundInitiated
	OutboundSent
	OutboundReported
)

func (s OutboundState) String() string {
	switch s {
	case OutboundPending:
		return "pending"
	case OutboundInitiated:
		return "initiated"
	case OutboundSent:
		return "sent"
	case OutboundReported:
		return "reported"
	default:
		return "unknown"
	}
}
