// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/apps"
	"github.com/luxfi/xcm/config"
	"github.com/luxfi/xcm/events"
	"github.com/luxfi/xcm/ledger"
	"github.com/luxfi/xcm/metrics"
	"github.com/luxfi/xcm/registry"
	"github.com/luxfi/xcm/relay"
	"github.com/luxfi/xcm/storage"
)

// node wires the storage, registry and ledger of one local chain.
type node struct {
	cfg       config.Config
	logger    *zap.Logger
	db        storage.DB
	deriver   *xcm.Deriver
	registry  *registry.Registry
	ledger    *ledger.Ledger
	builder   *relay.Builder
	submitter *relay.Submitter
	events    *events.Hub
	gatherer  *prometheus.Registry
}

func openNode(cmd *cobra.Command) (*node, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := storage.OpenBadger(cfg.DBPath, cfg.InMemory, logger)
	if err != nil {
		return nil, err
	}

	lib := storage.New(storage.RLPCodec{})
	deriver := xcm.NewDeriver(cfg.Program(), cfg.DerivationCacheSize)
	gatherer := prometheus.NewRegistry()
	hub := events.NewHub(logger)
	l := ledger.New(&ledger.Config{
		LocalChainID:    cfg.LocalChainID,
		DB:              db,
		Library:         lib,
		Deriver:         deriver,
		Application:     apps.NewDefaultRouter(lib),
		Hasher:          cfg.Hasher(),
		Metrics:         metrics.NewTransferMetrics(gatherer),
		Events:          hub,
		StatusCacheSize: cfg.StatusCacheSize,
	}, logger)

	return &node{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		deriver:  deriver,
		registry: registry.New(db, lib, deriver, cfg.LocalChainID, logger),
		ledger:   l,
		builder:  relay.NewBuilder(deriver, cfg.Hasher()),
		submitter: relay.NewSubmitter(l, relay.SubmitterConfig{
			InitialInterval: cfg.RetryInterval,
			Timeout:         cfg.RetryTimeout,
		}, logger),
		events:   hub,
		gatherer: gatherer,
	}, nil
}

func (n *node) Close() error {
	var result *multierror.Error
	if err := n.db.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	// stderr sync fails on some platforms and is not worth reporting
	_ = n.logger.Sync()
	return result.ErrorOrNil()
}
