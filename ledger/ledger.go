// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/apps"
	"github.com/luxfi/xcm/cache"
	"github.com/luxfi/xcm/events"
	"github.com/luxfi/xcm/metrics"
	"github.com/luxfi/xcm/payload"
	"github.com/luxfi/xcm/storage"
)

const defaultStatusCacheSize = 4096

var errNotProcessed = errors.New("not processed")

// TransferRequest carries the arguments of one inbound transfer. Payload is
// needed to re-encode the envelope; ClientAccount and TrustedRecord are the
// derived addresses the caller used as lookup keys.
type TransferRequest struct {
	Payer              xcm.Address
	DestinationOwner   xcm.Address
	SourceChainID      uint64
	SourceAddress      xcm.Address
	DestinationChainID uint64
	DestinationAddress xcm.Address
	TransactionID      uint32
	Payload            []byte
	IncomingHash       ids.ID
	ClientAccount      xcm.Address
	TrustedRecord      xcm.Address
}

// Envelope rebuilds the envelope from the request fields
func (r *TransferRequest) Envelope() *xcm.Envelope {
	return &xcm.Envelope{
		DestinationAddress: r.DestinationAddress,
		DestinationChainID: r.DestinationChainID,
		Payload:            r.Payload,
		SourceAddress:      r.SourceAddress,
		SourceChainID:      r.SourceChainID,
		TransactionID:      r.TransactionID,
	}
}

// Receipt describes an executed transfer
type Receipt struct {
	Hash            ids.ID
	State           State
	Payer           xcm.Address
	Kind            payload.Kind
	ClientAccount   xcm.Address
	TransferAccount xcm.Address
}

// Config configures a Ledger
type Config struct {
	LocalChainID    uint64
	DB              storage.DB
	Library         *storage.Library
	Deriver         *xcm.Deriver
	Application     apps.Application
	Hasher          xcm.Hasher
	Metrics         *metrics.TransferMetrics
	Events          *events.Hub
	StatusCacheSize int
}

// Ledger executes inbound transfers for one local chain. Every transfer is
// one storage transaction: it either passes all gates and commits the
// processed marker together with the application's writes, or leaves no trace.
type Ledger struct {
	localChainID uint64
	db           storage.DB
	lib          *storage.Library
	deriver      *xcm.Deriver
	app          apps.Application
	hasher       xcm.Hasher
	metrics      *metrics.TransferMetrics
	events       *events.Hub
	status       *cache.FIFOCache[ids.ID, bool]
	logger       *zap.Logger
}

// New creates a new ledger
func New(cfg *Config, logger *zap.Logger) *Ledger {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = xcm.SHA256
	}
	size := cfg.StatusCacheSize
	if size <= 0 {
		size = defaultStatusCacheSize
	}
	return &Ledger{
		localChainID: cfg.LocalChainID,
		db:           cfg.DB,
		lib:          cfg.Library,
		deriver:      cfg.Deriver,
		app:          cfg.Application,
		hasher:       hasher,
		metrics:      cfg.Metrics,
		events:       cfg.Events,
		status:       cache.NewFIFOCache[ids.ID, bool](size),
		logger:       logger.Named("ledger"),
	}
}

// LocalChainID returns the chain this ledger executes transfers for
func (l *Ledger) LocalChainID() uint64 {
	return l.localChainID
}

// Hasher returns the message hasher in use
func (l *Ledger) Hasher() xcm.Hasher {
	return l.hasher
}

// Deriver returns the address deriver in use
func (l *Ledger) Deriver() *xcm.Deriver {
	return l.deriver
}

// Transfer runs req through every gate and executes it. Failures are
// returned as *xcm.RejectedError.
func (l *Ledger) Transfer(ctx context.Context, req TransferRequest) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()

	var (
		receipt *Receipt
		reached = StateReceived
	)
	err := l.db.Update(func(tx storage.Txn) error {
		var err error
		receipt, err = l.transfer(tx, &req, &reached)
		return err
	})
	if err != nil {
		var rejected *xcm.RejectedError
		if !errors.As(err, &rejected) {
			// commit failures, such as a lost write conflict
			rejected = xcm.Reject(reached, xcm.ReasonOf(err), err)
		}
		if l.metrics != nil {
			l.metrics.Rejected(req.SourceChainID, rejected.Reason.String(), started)
		}
		l.logger.Debug("Rejected transfer",
			zap.Stringer("hash", req.IncomingHash),
			zap.Uint64("sourceChainID", req.SourceChainID),
			zap.Stringer("state", rejected.State),
			zap.Stringer("reason", rejected.Reason),
			zap.Error(rejected.Err),
		)
		return nil, rejected
	}

	if l.metrics != nil {
		l.metrics.Executed(req.SourceChainID, receipt.Kind.String(), started)
	}
	if l.events != nil {
		l.events.Publish(events.PayloadReceived{
			SourceChainID:      req.SourceChainID,
			SourceAddress:      req.SourceAddress,
			DestinationAddress: req.DestinationAddress,
			TransactionID:      req.TransactionID,
			TransferHash:       common.Hash(receipt.Hash),
			Kind:               receipt.Kind.String(),
		}.Event())
	}
	l.logger.Debug("Executed transfer",
		zap.Stringer("hash", receipt.Hash),
		zap.Uint64("sourceChainID", req.SourceChainID),
		zap.Uint32("transactionID", req.TransactionID),
		zap.Stringer("kind", receipt.Kind),
	)
	return receipt, nil
}

func (l *Ledger) transfer(tx storage.Txn, req *TransferRequest, reached *State) (*Receipt, error) {
	*reached = StateReceived
	client, err := l.checkReceived(tx, req)
	if err != nil {
		return nil, err
	}

	if err := l.checkSource(tx, req); err != nil {
		return nil, err
	}
	*reached = StateSourceVerified

	if err := l.checkHash(req); err != nil {
		return nil, err
	}
	*reached = StateHashVerified

	kind, err := l.execute(tx, req, client)
	if err != nil {
		return nil, err
	}

	transferAccount, err := l.deriver.IncomingTransfer(req.DestinationAddress, req.IncomingHash)
	if err != nil {
		return nil, xcm.Reject(StateHashVerified, xcm.ReasonOf(err), err)
	}
	*reached = StateExecuted
	return &Receipt{
		Hash:            req.IncomingHash,
		State:           StateExecuted,
		Payer:           req.Payer,
		Kind:            kind,
		ClientAccount:   req.ClientAccount,
		TransferAccount: transferAccount.Address,
	}, nil
}

// checkReceived admits the request: it must target this chain, name the
// client account derived from its destination, and come from the relay owner.
func (l *Ledger) checkReceived(tx storage.Txn, req *TransferRequest) (*storage.ClientAccount, error) {
	if req.DestinationChainID != l.localChainID {
		return nil, xcm.Reject(StateReceived, xcm.ReasonInvalidEnvelope,
			fmt.Errorf("%w: destination chain %d is not local chain %d", xcm.ErrInvalidEnvelope, req.DestinationChainID, l.localChainID))
	}
	if req.SourceChainID == l.localChainID {
		return nil, xcm.Reject(StateReceived, xcm.ReasonInvalidEnvelope,
			fmt.Errorf("%w: source chain %d is the local chain", xcm.ErrInvalidEnvelope, req.SourceChainID))
	}

	// a mismatched address is permanent, a missing account is not
	derived, err := l.deriver.ClientAccount(req.DestinationAddress)
	if err != nil {
		return nil, xcm.Reject(StateReceived, xcm.ReasonInvalidAccount, fmt.Errorf("%w: %w", xcm.ErrInvalidAccount, err))
	}
	if derived.Address != req.ClientAccount {
		return nil, xcm.Reject(StateReceived, xcm.ReasonInvalidAccount,
			fmt.Errorf("%w: client account %s for destination %s", xcm.ErrInvalidAccount, req.ClientAccount, req.DestinationAddress))
	}

	var client storage.ClientAccount
	if err := l.lib.RetrieveClient(req.ClientAccount, &client)(tx); err != nil {
		return nil, xcm.Reject(StateReceived, xcm.ReasonOf(err), fmt.Errorf("failed to read client account: %w", err))
	}
	if req.DestinationOwner != client.RelayOwner {
		return nil, xcm.Reject(StateReceived, xcm.ReasonUnauthorized,
			fmt.Errorf("%w: %s is not the relay owner of %s", xcm.ErrUnauthorized, req.DestinationOwner, req.ClientAccount))
	}
	return &client, nil
}

// checkSource is the Received -> SourceVerified gate
func (l *Ledger) checkSource(tx storage.Txn, req *TransferRequest) error {
	derived, err := l.deriver.TrustedRecord(req.ClientAccount, req.SourceChainID)
	if err != nil {
		return xcm.Reject(StateReceived, xcm.ReasonUntrustedSource, fmt.Errorf("%w: %w", xcm.ErrInvalidAccount, err))
	}
	if derived.Address != req.TrustedRecord {
		return xcm.Reject(StateReceived, xcm.ReasonUntrustedSource,
			fmt.Errorf("%w: trusted record %s for chain %d", xcm.ErrInvalidAccount, req.TrustedRecord, req.SourceChainID))
	}

	var source storage.TrustedSource
	if err := l.lib.RetrieveTrustedSource(req.TrustedRecord, &source)(tx); err != nil {
		if !errors.Is(err, xcm.ErrNotFound) {
			return xcm.Reject(StateReceived, xcm.ReasonOf(err), err)
		}
		return xcm.Reject(StateReceived, xcm.ReasonUntrustedSource,
			fmt.Errorf("no trusted source for chain %d: %w", req.SourceChainID, err))
	}
	if source.ChainID != req.SourceChainID || source.Address != req.SourceAddress {
		return xcm.Reject(StateReceived, xcm.ReasonUntrustedSource,
			fmt.Errorf("%w: %s on chain %d", xcm.ErrUntrustedSource, req.SourceAddress, req.SourceChainID))
	}
	return nil
}

// checkHash is the SourceVerified -> HashVerified gate
func (l *Ledger) checkHash(req *TransferRequest) error {
	computed, err := req.Envelope().Hash(l.hasher)
	if err != nil {
		return xcm.Reject(StateSourceVerified, xcm.ReasonInvalidEnvelope, err)
	}
	if !xcm.EqualHash(computed, req.IncomingHash) {
		return xcm.Reject(StateSourceVerified, xcm.ReasonHashMismatch,
			fmt.Errorf("%w: computed %s, claimed %s", xcm.ErrHashMismatch, computed, req.IncomingHash))
	}
	return nil
}

// execute is the HashVerified -> Executed gate
func (l *Ledger) execute(tx storage.Txn, req *TransferRequest, client *storage.ClientAccount) (payload.Kind, error) {
	kind := payload.Kind(client.PayloadKind)

	if err := l.lib.MarkProcessed(req.IncomingHash)(tx); err != nil {
		return kind, xcm.Reject(StateHashVerified, xcm.ReasonOf(err), err)
	}

	p, err := payload.Parse(kind, req.Payload)
	if err != nil {
		return kind, xcm.Reject(StateHashVerified, xcm.ReasonInvalidPayload, err)
	}

	delivery := &apps.Delivery{
		Hash:     req.IncomingHash,
		Envelope: req.Envelope(),
		Payload:  p,
		Client:   req.ClientAccount,
		Payer:    req.Payer,
	}
	if err := l.app.Execute(tx, delivery); err != nil {
		return kind, xcm.Reject(StateHashVerified, xcm.ReasonExecutionFailed, fmt.Errorf("%w: %w", xcm.ErrExecutionFailed, err))
	}
	return kind, nil
}

// Processed reports whether the message with hash has been executed. A
// processed marker is never removed, so positive answers are cached.
func (l *Ledger) Processed(ctx context.Context, hash ids.ID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	processed, err := l.status.Get(hash, func(hash ids.ID) (bool, error) {
		var processed bool
		if err := l.db.View(l.lib.LookupProcessed(hash, &processed)); err != nil {
			return false, err
		}
		if !processed {
			return false, errNotProcessed
		}
		return true, nil
	})
	if errors.Is(err, errNotProcessed) {
		return false, nil
	}
	return processed, err
}
