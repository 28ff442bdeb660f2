// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/events"
	"github.com/luxfi/xcm/payload"
	"github.com/luxfi/xcm/storage"
)

// OutboundRequest asks to send Payload from User to the address User's
// client trusts on DestinationChainID. Authority must be User.
type OutboundRequest struct {
	Authority          xcm.Address
	User               xcm.Address
	DestinationChainID uint64
	Payload            []byte
}

// Outbound describes an initiated outbound message
type Outbound struct {
	Envelope        *xcm.Envelope
	Hash            ids.ID
	State           OutboundState
	ClientAccount   xcm.Address
	TransferAccount xcm.Address
}

// SendRequest confirms that the relay owner dispatched an initiated message.
type SendRequest struct {
	Sender             xcm.Address
	User               xcm.Address
	DestinationChainID uint64
	TransactionID      uint32
	Hash               ids.ID
}

// ResultRequest reports the delivery result of a dispatched message.
type ResultRequest struct {
	Sender     xcm.Address
	User       xcm.Address
	Hash       ids.ID
	StatusCode uint8
}

// Initiate numbers, encodes and hashes an outbound message and records it
// under its outgoing transfer account. The client's transaction counter and
// the record commit together.
func (l *Ledger) Initiate(ctx context.Context, req OutboundRequest) (*Outbound, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out *Outbound
	err := l.db.Update(func(tx storage.Txn) error {
		var err error
		out, err = l.initiate(tx, &req)
		return err
	})
	if err != nil {
		rejected := asRejected(OutboundPending, err)
		l.logger.Debug("Rejected outbound transfer",
			zap.Stringer("user", req.User),
			zap.Uint64("destinationChainID", req.DestinationChainID),
			zap.Stringer("reason", rejected.Reason),
			zap.Error(rejected.Err),
		)
		return nil, rejected
	}

	if l.metrics != nil {
		l.metrics.Initiated(req.DestinationChainID)
	}
	if l.events != nil {
		l.events.Publish(events.InitiateTransfer{
			DestinationChainID: out.Envelope.DestinationChainID,
			TrustedAddress:     out.Envelope.DestinationAddress,
			SourceAddress:      out.Envelope.SourceAddress,
			TransactionID:      out.Envelope.TransactionID,
			TransferHash:       common.Hash(out.Hash),
			Payload:            out.Envelope.Payload,
		}.Event())
	}
	l.logger.Debug("Initiated outbound transfer",
		zap.Stringer("hash", out.Hash),
		zap.Uint64("destinationChainID", req.DestinationChainID),
		zap.Uint32("transactionID", out.Envelope.TransactionID),
	)
	return out, nil
}

func (l *Ledger) initiate(tx storage.Txn, req *OutboundRequest) (*Outbound, error) {
	if req.Authority != req.User {
		return nil, xcm.Reject(OutboundPending, xcm.ReasonUnauthorized,
			fmt.Errorf("%w: %s cannot send for %s", xcm.ErrUnauthorized, req.Authority, req.User))
	}
	if req.DestinationChainID == l.localChainID {
		return nil, xcm.Reject(OutboundPending, xcm.ReasonInvalidEnvelope,
			fmt.Errorf("%w: destination chain %d is the local chain", xcm.ErrInvalidEnvelope, req.DestinationChainID))
	}

	clientAccount, client, err := l.clientOf(tx, req.User)
	if err != nil {
		return nil, err
	}
	trusted, err := l.trustedOn(tx, clientAccount, req.DestinationChainID)
	if err != nil {
		return nil, err
	}

	kind := payload.Kind(client.PayloadKind)
	if _, err := payload.Parse(kind, req.Payload); err != nil {
		return nil, xcm.Reject(OutboundPending, xcm.ReasonInvalidPayload, err)
	}

	txID := client.NextTransactionID
	if txID == math.MaxUint32 {
		return nil, xcm.Reject(OutboundPending, xcm.ReasonInvalidEnvelope,
			fmt.Errorf("%w: client %s exhausted its transaction ids", xcm.ErrInvalidEnvelope, clientAccount))
	}
	client.NextTransactionID++

	envelope, err := xcm.NewEnvelope(trusted.Address, req.DestinationChainID, req.Payload, req.User, l.localChainID, txID)
	if err != nil {
		return nil, xcm.Reject(OutboundPending, xcm.ReasonInvalidEnvelope, err)
	}
	hash, err := envelope.Hash(l.hasher)
	if err != nil {
		return nil, xcm.Reject(OutboundPending, xcm.ReasonInvalidEnvelope, err)
	}

	account, err := l.deriver.OutgoingTransfer(req.User, hash)
	if err != nil {
		return nil, xcm.Reject(OutboundPending, xcm.ReasonInvalidAccount, fmt.Errorf("%w: %w", xcm.ErrInvalidAccount, err))
	}
	err = storage.Combine(
		l.lib.CreateOutgoingTransfer(account.Address, &storage.OutgoingTransfer{
			DestinationChainID: req.DestinationChainID,
			DestinationAddress: trusted.Address,
			TransactionID:      txID,
			Hash:               hash,
		}),
		l.lib.SaveClient(clientAccount, client),
	)(tx)
	if err != nil {
		return nil, xcm.Reject(OutboundPending, xcm.ReasonOf(err), err)
	}

	return &Outbound{
		Envelope:        envelope,
		Hash:            hash,
		State:           OutboundInitiated,
		ClientAccount:   clientAccount,
		TransferAccount: account.Address,
	}, nil
}

// Send marks an initiated message as dispatched. Only the client's relay
// owner may send, and only while the destination chain is still trusted.
func (l *Ledger) Send(ctx context.Context, req SendRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := l.db.Update(func(tx storage.Txn) error {
		clientAccount, client, err := l.clientOf(tx, req.User)
		if err != nil {
			return err
		}
		if req.Sender != client.RelayOwner {
			return xcm.Reject(OutboundInitiated, xcm.ReasonUnauthorized,
				fmt.Errorf("%w: %s is not the relay owner of %s", xcm.ErrUnauthorized, req.Sender, clientAccount))
		}
		if _, err := l.trustedOn(tx, clientAccount, req.DestinationChainID); err != nil {
			return err
		}

		account, transfer, err := l.outgoing(tx, req.User, req.Hash)
		if err != nil {
			return err
		}
		if transfer.DestinationChainID != req.DestinationChainID || transfer.TransactionID != req.TransactionID {
			return xcm.Reject(OutboundInitiated, xcm.ReasonInvalidEnvelope,
				fmt.Errorf("%w: transfer %s is transaction %d to chain %d", xcm.ErrInvalidEnvelope, req.Hash, transfer.TransactionID, transfer.DestinationChainID))
		}
		if transfer.Sent {
			return xcm.Reject(OutboundSent, xcm.ReasonAlreadyProcessed,
				fmt.Errorf("%w: transfer %s was already sent", xcm.ErrAlreadyProcessed, req.Hash))
		}
		transfer.Sent = true
		return l.lib.SaveOutgoingTransfer(account, transfer)(tx)
	})
	if err != nil {
		return asRejected(OutboundInitiated, err)
	}
	l.logger.Debug("Sent outbound transfer",
		zap.Stringer("hash", req.Hash),
		zap.Uint64("destinationChainID", req.DestinationChainID),
	)
	return nil
}

// ReportResult records the delivery result of a sent message. A message
// carries exactly one result.
func (l *Ledger) ReportResult(ctx context.Context, req ResultRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var transfer *storage.OutgoingTransfer
	err := l.db.Update(func(tx storage.Txn) error {
		clientAccount, client, err := l.clientOf(tx, req.User)
		if err != nil {
			return err
		}
		if req.Sender != client.RelayOwner {
			return xcm.Reject(OutboundSent, xcm.ReasonUnauthorized,
				fmt.Errorf("%w: %s is not the relay owner of %s", xcm.ErrUnauthorized, req.Sender, clientAccount))
		}

		var account xcm.Address
		account, transfer, err = l.outgoing(tx, req.User, req.Hash)
		if err != nil {
			return err
		}
		switch {
		case !transfer.Sent:
			return xcm.Reject(OutboundInitiated, xcm.ReasonInvalidEnvelope,
				fmt.Errorf("%w: transfer %s was not sent", xcm.ErrInvalidEnvelope, req.Hash))
		case transfer.Reported:
			return xcm.Reject(OutboundReported, xcm.ReasonAlreadyProcessed,
				fmt.Errorf("%w: transfer %s already reported status %d", xcm.ErrAlreadyProcessed, req.Hash, transfer.StatusCode))
		}
		transfer.Reported = true
		transfer.StatusCode = req.StatusCode
		return l.lib.SaveOutgoingTransfer(account, transfer)(tx)
	})
	if err != nil {
		return asRejected(OutboundSent, err)
	}

	if l.metrics != nil {
		l.metrics.SendingResult(transfer.DestinationChainID, req.StatusCode)
	}
	if l.events != nil {
		l.events.Publish(events.TransferSendingResult{
			DestinationAddress: transfer.DestinationAddress,
			TransferHash:       common.Hash(req.Hash),
			StatusCode:         req.StatusCode,
		}.Event())
	}
	l.logger.Debug("Reported outbound transfer result",
		zap.Stringer("hash", req.Hash),
		zap.Uint8("statusCode", req.StatusCode),
	)
	return nil
}

// Outgoing returns the outbound record of the message user sent with hash.
func (l *Ledger) Outgoing(ctx context.Context, user xcm.Address, hash ids.ID) (*storage.OutgoingTransfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var transfer *storage.OutgoingTransfer
	err := l.db.View(func(tx storage.Txn) error {
		var err error
		_, transfer, err = l.outgoing(tx, user, hash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// OutboundStateOf reports the progress recorded in transfer
func OutboundStateOf(transfer *storage.OutgoingTransfer) OutboundState {
	switch {
	case transfer.Reported:
		return OutboundReported
	case transfer.Sent:
		return OutboundSent
	default:
		return OutboundInitiated
	}
}

func (l *Ledger) clientOf(tx storage.Txn, user xcm.Address) (xcm.Address, *storage.ClientAccount, error) {
	derived, err := l.deriver.ClientAccount(user)
	if err != nil {
		return xcm.EmptyAddress, nil, xcm.Reject(OutboundPending, xcm.ReasonInvalidAccount, fmt.Errorf("%w: %w", xcm.ErrInvalidAccount, err))
	}
	var client storage.ClientAccount
	if err := l.lib.RetrieveClient(derived.Address, &client)(tx); err != nil {
		return xcm.EmptyAddress, nil, xcm.Reject(OutboundPending, xcm.ReasonOf(err), fmt.Errorf("failed to read client account of %s: %w", user, err))
	}
	return derived.Address, &client, nil
}

func (l *Ledger) trustedOn(tx storage.Txn, client xcm.Address, chainID uint64) (*storage.TrustedSource, error) {
	record, err := l.deriver.TrustedRecord(client, chainID)
	if err != nil {
		return nil, xcm.Reject(OutboundPending, xcm.ReasonUntrustedSource, fmt.Errorf("%w: %w", xcm.ErrInvalidAccount, err))
	}
	var trusted storage.TrustedSource
	if err := l.lib.RetrieveTrustedSource(record.Address, &trusted)(tx); err != nil {
		if !errors.Is(err, xcm.ErrNotFound) {
			return nil, xcm.Reject(OutboundPending, xcm.ReasonOf(err), err)
		}
		return nil, xcm.Reject(OutboundPending, xcm.ReasonUntrustedSource,
			fmt.Errorf("no trusted address for chain %d: %w", chainID, err))
	}
	return &trusted, nil
}

func (l *Ledger) outgoing(tx storage.Txn, user xcm.Address, hash ids.ID) (xcm.Address, *storage.OutgoingTransfer, error) {
	account, err := l.deriver.OutgoingTransfer(user, hash)
	if err != nil {
		return xcm.EmptyAddress, nil, xcm.Reject(OutboundPending, xcm.ReasonInvalidAccount, fmt.Errorf("%w: %w", xcm.ErrInvalidAccount, err))
	}
	var transfer storage.OutgoingTransfer
	if err := l.lib.RetrieveOutgoingTransfer(account.Address, &transfer)(tx); err != nil {
		return xcm.EmptyAddress, nil, xcm.Reject(OutboundPending, xcm.ReasonOf(err), fmt.Errorf("failed to read outgoing transfer %s: %w", hash, err))
	}
	return account.Address, &transfer, nil
}

func asRejected(state OutboundState, err error) *xcm.RejectedError {
	var rejected *xcm.RejectedError
	if errors.As(err, &rejected) {
		return rejected
	}
	return xcm.Reject(state, xcm.ReasonOf(err), err)
}
