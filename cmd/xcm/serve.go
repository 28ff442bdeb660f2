// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/xcm/api"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the transfer API",
		Long:  `Serve the HTTP API: transfer submission and status, trusted source lookups, the event stream, health and metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			n.logger.Info("Initializing xcm",
				zap.Uint64("localChainID", n.cfg.LocalChainID),
				zap.Stringer("program", n.deriver.Program()),
				zap.String("hasher", n.cfg.Hasher().Name()),
			)

			server := api.New(api.Config{
				Submitter:       n.submitter,
				Outbox:          n.ledger,
				Status:          n.ledger,
				Trust:           n.registry,
				Builder:         n.builder,
				Events:          n.events,
				Gatherer:        n.gatherer,
				TrustedCacheTTL: n.cfg.TrustedCacheTTL,
			}, n.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errGroup, ctx := errgroup.WithContext(ctx)

			errGroup.Go(func() error {
				httpServer := &http.Server{
					Addr:              fmt.Sprintf(":%d", n.cfg.APIPort),
					Handler:           server.Handler(),
					ReadHeaderTimeout: 5 * time.Second,
				}
				// Handle graceful shutdown
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					_ = httpServer.Shutdown(shutdownCtx)
				}()

				n.logger.Info("Initialization complete", zap.Uint16("apiPort", n.cfg.APIPort))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("failed to start API server: %w", err)
				}
				return nil
			})

			return errGroup.Wait()
		},
	}
}
