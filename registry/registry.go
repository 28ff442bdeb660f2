// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/payload"
	"github.com/luxfi/xcm/storage"
)

var (
	ErrClientExists = errors.New("client account already exists")
	ErrLocalChain   = errors.New("cannot trust a source on the local chain")
)

type (
	TrustedSource = storage.TrustedSource
	ClientAccount = storage.ClientAccount
)

// Registry administers client accounts and the trusted source each of them
// accepts per counterpart chain.
type Registry struct {
	db           storage.DB
	lib          *storage.Library
	deriver      *xcm.Deriver
	localChainID uint64
	logger       *zap.Logger
}

// New creates a new registry
func New(db storage.DB, lib *storage.Library, deriver *xcm.Deriver, localChainID uint64, logger *zap.Logger) *Registry {
	return &Registry{
		db:           db,
		lib:          lib,
		deriver:      deriver,
		localChainID: localChainID,
		logger:       logger.Named("registry"),
	}
}

// CreateClient creates the client account of owner and returns its address.
func (r *Registry) CreateClient(ctx context.Context, owner, relayOwner xcm.Address, kind payload.Kind) (xcm.Address, error) {
	if err := ctx.Err(); err != nil {
		return xcm.EmptyAddress, err
	}
	if !kind.Valid() {
		return xcm.EmptyAddress, fmt.Errorf("%w: unknown payload kind %d", xcm.ErrInvalidPayload, kind)
	}
	derived, err := r.deriver.ClientAccount(owner)
	if err != nil {
		return xcm.EmptyAddress, fmt.Errorf("failed to derive client account: %w", err)
	}

	account := &ClientAccount{
		Owner:       owner,
		RelayOwner:  relayOwner,
		PayloadKind: uint8(kind),
		Bump:        derived.Bump,
	}
	err = r.db.Update(func(tx storage.Txn) error {
		var existing ClientAccount
		err := r.lib.RetrieveClient(derived.Address, &existing)(tx)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", ErrClientExists, derived.Address)
		case !errors.Is(err, xcm.ErrNotFound):
			return err
		}
		return r.lib.SaveClient(derived.Address, account)(tx)
	})
	if err != nil {
		return xcm.EmptyAddress, err
	}

	r.logger.Info("Created client account",
		zap.Stringer("client", derived.Address),
		zap.Stringer("owner", owner),
		zap.Stringer("kind", kind),
	)
	return derived.Address, nil
}

// Client returns the client account at address.
func (r *Registry) Client(ctx context.Context, client xcm.Address) (*ClientAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var account ClientAccount
	if err := r.db.View(r.lib.RetrieveClient(client, &account)); err != nil {
		return nil, fmt.Errorf("failed to read client %s: %w", client, err)
	}
	return &account, nil
}

// SetRelayOwner changes the principal allowed to submit transfers for client.
func (r *Registry) SetRelayOwner(ctx context.Context, authority, client, relayOwner xcm.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx storage.Txn) error {
		account, err := r.authorize(tx, authority, client)
		if err != nil {
			return err
		}
		account.RelayOwner = relayOwner
		return r.lib.SaveClient(client, account)(tx)
	})
	if err != nil {
		return err
	}
	r.logger.Info("Changed relay owner",
		zap.Stringer("client", client),
		zap.Stringer("relayOwner", relayOwner),
	)
	return nil
}

// SetTrustedSource registers, or rotates, the one address client accepts
// messages from on chainID. It returns the record address.
func (r *Registry) SetTrustedSource(ctx context.Context, authority, client xcm.Address, chainID uint64, source xcm.Address) (xcm.Address, error) {
	if err := ctx.Err(); err != nil {
		return xcm.EmptyAddress, err
	}
	if chainID == r.localChainID {
		return xcm.EmptyAddress, fmt.Errorf("%w: chain %d", ErrLocalChain, chainID)
	}
	record, err := r.deriver.TrustedRecord(client, chainID)
	if err != nil {
		return xcm.EmptyAddress, fmt.Errorf("failed to derive trusted record: %w", err)
	}

	err = r.db.Update(func(tx storage.Txn) error {
		if _, err := r.authorize(tx, authority, client); err != nil {
			return err
		}
		return r.lib.SaveTrustedSource(record.Address, TrustedSource{
			ChainID: chainID,
			Address: source,
		})(tx)
	})
	if err != nil {
		return xcm.EmptyAddress, err
	}

	r.logger.Info("Set trusted source",
		zap.Stringer("client", client),
		zap.Uint64("chainID", chainID),
		zap.Stringer("source", source),
	)
	return record.Address, nil
}

// RevokeTrustedSource removes the trusted source of client on chainID.
func (r *Registry) RevokeTrustedSource(ctx context.Context, authority, client xcm.Address, chainID uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record, err := r.deriver.TrustedRecord(client, chainID)
	if err != nil {
		return fmt.Errorf("failed to derive trusted record: %w", err)
	}

	err = r.db.Update(func(tx storage.Txn) error {
		if _, err := r.authorize(tx, authority, client); err != nil {
			return err
		}
		return r.lib.DeleteTrustedSource(record.Address)(tx)
	})
	if err != nil {
		return err
	}

	r.logger.Info("Revoked trusted source",
		zap.Stringer("client", client),
		zap.Uint64("chainID", chainID),
	)
	return nil
}

// Lookup returns the trusted address of client on chainID, or an error
// matching xcm.ErrNotFound.
func (r *Registry) Lookup(ctx context.Context, client xcm.Address, chainID uint64) (xcm.Address, error) {
	if err := ctx.Err(); err != nil {
		return xcm.EmptyAddress, err
	}
	record, err := r.deriver.TrustedRecord(client, chainID)
	if err != nil {
		return xcm.EmptyAddress, fmt.Errorf("failed to derive trusted record: %w", err)
	}

	var source TrustedSource
	if err := r.db.View(r.lib.RetrieveTrustedSource(record.Address, &source)); err != nil {
		return xcm.EmptyAddress, err
	}
	// a record stored for another chain is not a match
	if source.ChainID != chainID {
		return xcm.EmptyAddress, fmt.Errorf("%w: record %s holds chain %d", xcm.ErrNotFound, record.Address, source.ChainID)
	}
	return source.Address, nil
}

func (r *Registry) authorize(tx storage.Txn, authority, client xcm.Address) (*ClientAccount, error) {
	var account ClientAccount
	if err := r.lib.RetrieveClient(client, &account)(tx); err != nil {
		return nil, fmt.Errorf("failed to read client %s: %w", client, err)
	}
	if account.Owner != authority {
		return nil, fmt.Errorf("%w: %s does not own client %s", xcm.ErrUnauthorized, authority, client)
	}
	return &account, nil
}
