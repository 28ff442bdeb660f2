// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/payload"
	"github.com/luxfi/xcm/storage"
	"github.com/luxfi/xcm/testing/helpers"
)

const localChainID = 1000

func address(b byte) xcm.Address {
	var a xcm.Address
	a[0] = b
	a[31] = ^b
	return a
}

func newTestRegistry(db storage.DB) *Registry {
	return New(
		db,
		storage.New(storage.RLPCodec{}),
		xcm.NewDeriver(address(200), 64),
		localChainID,
		zap.NewNop(),
	)
}

func TestRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, db := range helpers.Backends(t) {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			r := newTestRegistry(db)

			owner := address(1)
			relay := address(2)
			client, err := r.CreateClient(ctx, owner, relay, payload.KindOwnership)
			require.NoError(err)

			expected, bump, err := xcm.FindProgramAddress(xcm.ClientAccountSeeds(owner), address(200))
			require.NoError(err)
			require.Equal(expected, client)

			account, err := r.Client(ctx, client)
			require.NoError(err)
			require.Equal(ClientAccount{
				Owner:       owner,
				RelayOwner:  relay,
				PayloadKind: uint8(payload.KindOwnership),
				Bump:        bump,
			}, *account)

			_, err = r.CreateClient(ctx, owner, relay, payload.KindOwnership)
			require.ErrorIs(err, ErrClientExists)

			// nothing trusted yet
			_, err = r.Lookup(ctx, client, 1)
			require.ErrorIs(err, xcm.ErrNotFound)

			source := address(50)
			record, err := r.SetTrustedSource(ctx, owner, client, 1, source)
			require.NoError(err)
			expected, _, err = xcm.FindProgramAddress(xcm.TrustedAddressSeeds(client, 1), address(200))
			require.NoError(err)
			require.Equal(expected, record)

			got, err := r.Lookup(ctx, client, 1)
			require.NoError(err)
			require.Equal(source, got)

			// other chains stay untrusted
			_, err = r.Lookup(ctx, client, 2)
			require.ErrorIs(err, xcm.ErrNotFound)

			// rotation
			_, err = r.SetTrustedSource(ctx, owner, client, 1, address(51))
			require.NoError(err)
			got, err = r.Lookup(ctx, client, 1)
			require.NoError(err)
			require.Equal(address(51), got)

			require.NoError(r.RevokeTrustedSource(ctx, owner, client, 1))
			_, err = r.Lookup(ctx, client, 1)
			require.ErrorIs(err, xcm.ErrNotFound)
		})
	}
}

func TestRegistryAuthorization(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	r := newTestRegistry(storage.NewMemoryDB())

	owner := address(1)
	client, err := r.CreateClient(ctx, owner, address(2), payload.KindGeneric)
	require.NoError(err)

	_, err = r.SetTrustedSource(ctx, address(3), client, 1, address(50))
	require.ErrorIs(err, xcm.ErrUnauthorized)

	err = r.RevokeTrustedSource(ctx, address(3), client, 1)
	require.ErrorIs(err, xcm.ErrUnauthorized)

	err = r.SetRelayOwner(ctx, address(3), client, address(4))
	require.ErrorIs(err, xcm.ErrUnauthorized)

	require.NoError(r.SetRelayOwner(ctx, owner, client, address(4)))
	account, err := r.Client(ctx, client)
	require.NoError(err)
	require.Equal(address(4), account.RelayOwner)

	// unknown client
	_, err = r.SetTrustedSource(ctx, owner, address(99), 1, address(50))
	require.ErrorIs(err, xcm.ErrNotFound)
}

func TestRegistryRejects(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	r := newTestRegistry(storage.NewMemoryDB())

	owner := address(1)
	client, err := r.CreateClient(ctx, owner, address(2), payload.KindToken)
	require.NoError(err)

	_, err = r.SetTrustedSource(ctx, owner, client, localChainID, address(50))
	require.ErrorIs(err, ErrLocalChain)

	_, err = r.CreateClient(ctx, address(5), address(2), payload.Kind(7))
	require.ErrorIs(err, xcm.ErrInvalidPayload)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.Lookup(canceled, client, 1)
	require.ErrorIs(err, context.Canceled)
}
