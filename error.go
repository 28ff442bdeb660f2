// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package xcm

import (
	"errors"
	"fmt"
)

var (
	ErrUntrustedSource  = errors.New("untrusted source")
	ErrHashMismatch     = errors.New("hash mismatch")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrNotFound         = errors.New("not found")
	ErrTruncatedInput   = errors.New("truncated input")
	ErrTrailingBytes    = errors.New("trailing bytes")
	ErrSeedTooLong      = errors.New("seed too long")
	ErrInvalidSeeds     = errors.New("invalid seeds, address must fall off the curve")
	ErrInvalidEnvelope  = errors.New("invalid envelope")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrInvalidAccount   = errors.New("account not derived from its seeds")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrExecutionFailed  = errors.New("execution failed")
	ErrConflict         = errors.New("transaction conflict")
)

// Reason classifies why a transfer was rejected.
type Reason uint8

const (
	ReasonUnknown Reason = iota
	ReasonUntrustedSource
	ReasonHashMismatch
	ReasonAlreadyProcessed
	ReasonNotFound
	ReasonInvalidEnvelope
	ReasonUnauthorized
	ReasonExecutionFailed
	ReasonConflict
	ReasonInvalidPayload
	ReasonInvalidAccount
)

func (r Reason) String() string {
	switch r {
	case ReasonUntrustedSource:
		return "untrusted_source"
	case ReasonHashMismatch:
		return "hash_mismatch"
	case ReasonAlreadyProcessed:
		return "already_processed"
	case ReasonNotFound:
		return "not_found"
	case ReasonInvalidEnvelope:
		return "invalid_envelope"
	case ReasonUnauthorized:
		return "unauthorized"
	case ReasonExecutionFailed:
		return "execution_failed"
	case ReasonConflict:
		return "conflict"
	case ReasonInvalidPayload:
		return "invalid_payload"
	case ReasonInvalidAccount:
		return "invalid_account"
	default:
		return "unknown"
	}
}

// Sentinel returns the error value matched by errors.Is for this reason.
func (r Reason) Sentinel() error {
	switch r {
	case ReasonUntrustedSource:
		return ErrUntrustedSource
	case ReasonHashMismatch:
		return ErrHashMismatch
	case ReasonAlreadyProcessed:
		return ErrAlreadyProcessed
	case ReasonNotFound:
		return ErrNotFound
	case ReasonInvalidEnvelope:
		return ErrInvalidEnvelope
	case ReasonUnauthorized:
		return ErrUnauthorized
	case ReasonExecutionFailed:
		return ErrExecutionFailed
	case ReasonConflict:
		return ErrConflict
	case ReasonInvalidPayload:
		return ErrInvalidPayload
	case ReasonInvalidAccount:
		return ErrInvalidAccount
	default:
		return nil
	}
}

// Permanent reports whether resubmitting the same message can never succeed.
func (r Reason) Permanent() bool {
	switch r {
	case ReasonNotFound, ReasonConflict, ReasonUnknown:
		return false
	default:
		return true
	}
}

// RejectedError is returned when a transfer aborts. State is the last state
// the transfer reached before the failing gate.
type RejectedError struct {
	State  fmt.Stringer
	Reason Reason
	Err    error
}

// Reject builds a RejectedError. A nil cause is replaced by the reason's sentinel.
func Reject(state fmt.Stringer, reason Reason, cause error) *RejectedError {
	if cause == nil {
		cause = reason.Sentinel()
	}
	return &RejectedError{
		State:  state,
		Reason: reason,
		Err:    cause,
	}
}

// Error implements the error interface
func (e *RejectedError) Error() string {
	if e.State == nil {
		return fmt.Sprintf("rejected (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("rejected at %s (%s): %v", e.State, e.Reason, e.Err)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the rejection reason in addition to the wrapped chain.
func (e *RejectedError) Is(target error) bool {
	sentinel := e.Reason.Sentinel()
	return sentinel != nil && target == sentinel
}

// ReasonOf extracts the rejection reason from err, falling back to sentinel
// matching for errors that were never wrapped in a RejectedError.
func ReasonOf(err error) Reason {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason
	}
	for _, r := range []Reason{
		ReasonAlreadyProcessed,
		ReasonHashMismatch,
		ReasonUntrustedSource,
		ReasonInvalidEnvelope,
		ReasonInvalidPayload,
		ReasonInvalidAccount,
		ReasonUnauthorized,
		ReasonExecutionFailed,
		ReasonConflict,
		ReasonNotFound,
	} {
		if errors.Is(err, r.Sentinel()) {
			return r
		}
	}
	return ReasonUnknown
}

// IsPermanent reports whether a failed transfer should be discarded rather than retried.
// An untrusted source caused by a missing registry entry is retryable, since the
// administrative registration may simply not have landed yet. An address that
// does not match its derivation never becomes valid.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidAccount) {
		return true
	}
	reason := ReasonOf(err)
	if reason == ReasonUntrustedSource && errors.Is(err, ErrNotFound) {
		return false
	}
	return reason.Permanent()
}
