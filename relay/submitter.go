// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/ledger"
	"github.com/luxfi/xcm/utils"
)

const (
	defaultInitialInterval = 100 * time.Millisecond
	defaultTimeout         = 30 * time.Second
)

// Transferer executes transfer requests
type Transferer interface {
	Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.Receipt, error)
}

// Submitter delivers transfer requests, retrying transient rejections such
// as write conflicts or a trusted source that is not registered yet.
// Permanent rejections are returned immediately.
type Submitter struct {
	transferer      Transferer
	initialInterval time.Duration
	timeout         time.Duration
	logger          *zap.Logger

	lock    sync.Mutex
	settled set.Set[ids.ID]
}

// SubmitterConfig configures a Submitter. Zero durations select defaults.
type SubmitterConfig struct {
	InitialInterval time.Duration
	Timeout         time.Duration
}

func NewSubmitter(transferer Transferer, cfg SubmitterConfig, logger *zap.Logger) *Submitter {
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defaultInitialInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Submitter{
		transferer:      transferer,
		initialInterval: cfg.InitialInterval,
		timeout:         cfg.Timeout,
		logger:          logger.Named("relay"),
		settled:         set.NewSet[ids.ID](0),
	}
}

// Submit delivers req. A message this submitter already saw executed, or saw
// rejected as a replay, is not sent again.
func (s *Submitter) Submit(ctx context.Context, req ledger.TransferRequest) (*ledger.Receipt, error) {
	if s.isSettled(req.IncomingHash) {
		return nil, xcm.Reject(nil, xcm.ReasonAlreadyProcessed, nil)
	}

	var receipt *ledger.Receipt
	operation := func() error {
		var err error
		receipt, err = s.transferer.Transfer(ctx, req)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return backoff.Permanent(err)
		case xcm.IsPermanent(err):
			return backoff.Permanent(err)
		default:
			return err
		}
	}
	err := utils.WithRetriesTimeout(ctx, s.logger, operation, s.initialInterval, s.timeout)
	if err == nil || errors.Is(err, xcm.ErrAlreadyProcessed) {
		s.settle(req.IncomingHash)
	}
	if err != nil {
		s.logger.Info("Transfer not delivered",
			zap.Stringer("hash", req.IncomingHash),
			zap.Stringer("reason", xcm.ReasonOf(err)),
			zap.Error(err),
		)
		return nil, err
	}
	return receipt, nil
}

// Settled returns the number of messages known to be executed
func (s *Submitter) Settled() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.settled.Len()
}

func (s *Submitter) isSettled(hash ids.ID) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.settled.Contains(hash)
}

func (s *Submitter) settle(hash ids.ID) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.settled.Add(hash)
}
