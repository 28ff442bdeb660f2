// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"strings"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/events"
	"github.com/luxfi/xcm/payload"
	"github.com/luxfi/xcm/storage"
	"github.com/luxfi/xcm/testing/helpers"
)

func (e *env) outbound(t *testing.T, p []byte) OutboundRequest {
	t.Helper()
	return OutboundRequest{
		Authority:          destination,
		User:               destination,
		DestinationChainID: sourceChainID,
		Payload:            p,
	}
}

func TestOutboundLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, db := range helpers.Backends(t) {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			e := newEnv(t, db, payload.KindOwnership, nil)
			feed, unsubscribe := e.hub.Subscribe("test", 8)
			defer unsubscribe()

			p := ownershipPayload(t)
			out, err := e.ledger.Initiate(ctx, e.outbound(t, p))
			require.NoError(err)
			require.Equal(OutboundInitiated, out.State)
			require.Equal(e.client, out.ClientAccount)
			require.Equal(uint32(0), out.Envelope.TransactionID)
			require.Equal(source, out.Envelope.DestinationAddress)
			require.Equal(uint64(sourceChainID), out.Envelope.DestinationChainID)
			require.Equal(destination, out.Envelope.SourceAddress)
			require.Equal(uint64(localChainID), out.Envelope.SourceChainID)
			require.Equal(out.Envelope.ID(), out.Hash)

			account, err := e.ledger.Deriver().OutgoingTransfer(destination, out.Hash)
			require.NoError(err)
			require.Equal(account.Address, out.TransferAccount)

			event := <-feed
			require.Equal(events.TypeInitiateTransfer, event.Type)
			require.Equal(&events.InitiateTransfer{
				DestinationChainID: sourceChainID,
				TrustedAddress:     source,
				SourceAddress:      destination,
				TransactionID:      0,
				TransferHash:       common.Hash(out.Hash),
				Payload:            p,
			}, event.InitiateTransfer)

			// the same payload again is a new message
			next, err := e.ledger.Initiate(ctx, e.outbound(t, p))
			require.NoError(err)
			require.Equal(uint32(1), next.Envelope.TransactionID)
			require.NotEqual(out.Hash, next.Hash)
			<-feed

			transfer, err := e.ledger.Outgoing(ctx, destination, out.Hash)
			require.NoError(err)
			require.Equal(OutboundInitiated, OutboundStateOf(transfer))
			require.Equal(out.Hash, transfer.Hash)

			result := ResultRequest{Sender: relayOwner, User: destination, Hash: out.Hash, StatusCode: 0}
			err = e.ledger.ReportResult(ctx, result)
			require.ErrorIs(err, xcm.ErrInvalidEnvelope)

			send := SendRequest{
				Sender:             relayOwner,
				User:               destination,
				DestinationChainID: sourceChainID,
				TransactionID:      0,
				Hash:               out.Hash,
			}
			require.NoError(e.ledger.Send(ctx, send))
			err = e.ledger.Send(ctx, send)
			require.ErrorIs(err, xcm.ErrAlreadyProcessed)

			require.NoError(e.ledger.ReportResult(ctx, result))
			err = e.ledger.ReportResult(ctx, result)
			require.ErrorIs(err, xcm.ErrAlreadyProcessed)

			event = <-feed
			require.Equal(events.TypeTransferSendingResult, event.Type)
			require.Equal(&events.TransferSendingResult{
				DestinationAddress: source,
				TransferHash:       common.Hash(out.Hash),
				StatusCode:         0,
			}, event.TransferSendingResult)
			require.Empty(feed)

			transfer, err = e.ledger.Outgoing(ctx, destination, out.Hash)
			require.NoError(err)
			require.Equal(OutboundReported, OutboundStateOf(transfer))

			expected := `
# HELP transfers_initiated_total Number of outbound transfers initiated
# TYPE transfers_initiated_total counter
transfers_initiated_total{destination_chain_id="1"} 2
`
			require.NoError(testutil.GatherAndCompare(e.gatherer, strings.NewReader(expected), "transfers_initiated_total"))
		})
	}
}

func TestInitiateRejections(t *testing.T) {
	ctx := context.Background()
	db := storage.NewMemoryDB()
	e := newEnv(t, db, payload.KindOwnership, nil)

	tests := []struct {
		name        string
		mutate      func(r *OutboundRequest)
		expectedErr error
	}{
		{
			name:        "authority is not the user",
			mutate:      func(r *OutboundRequest) { r.Authority = relayOwner },
			expectedErr: xcm.ErrUnauthorized,
		},
		{
			name:        "local destination chain",
			mutate:      func(r *OutboundRequest) { r.DestinationChainID = localChainID },
			expectedErr: xcm.ErrInvalidEnvelope,
		},
		{
			name:        "no trusted address on the destination chain",
			mutate:      func(r *OutboundRequest) { r.DestinationChainID = 5 },
			expectedErr: xcm.ErrUntrustedSource,
		},
		{
			name: "user without client account",
			mutate: func(r *OutboundRequest) {
				r.Authority = address(77)
				r.User = address(77)
			},
			expectedErr: xcm.ErrNotFound,
		},
		{
			name:        "payload of the wrong kind",
			mutate:      func(r *OutboundRequest) { r.Payload = []byte("short") },
			expectedErr: xcm.ErrInvalidPayload,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			req := e.outbound(t, ownershipPayload(t))
			tt.mutate(&req)
			_, err := e.ledger.Initiate(ctx, req)
			require.ErrorIs(err, tt.expectedErr)
		})
	}

	// rejections consume no transaction id
	var client storage.ClientAccount
	require.NoError(t, db.View(e.lib.RetrieveClient(e.client, &client)))
	require.Zero(t, client.NextTransactionID)
}

func TestSendRejections(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	e := newEnv(t, storage.NewMemoryDB(), payload.KindOwnership, nil)

	out, err := e.ledger.Initiate(ctx, e.outbound(t, ownershipPayload(t)))
	require.NoError(err)
	send := SendRequest{
		Sender:             relayOwner,
		User:               destination,
		DestinationChainID: sourceChainID,
		TransactionID:      out.Envelope.TransactionID,
		Hash:               out.Hash,
	}

	wrongSender := send
	wrongSender.Sender = payer
	require.ErrorIs(e.ledger.Send(ctx, wrongSender), xcm.ErrUnauthorized)

	wrongID := send
	wrongID.TransactionID++
	require.ErrorIs(e.ledger.Send(ctx, wrongID), xcm.ErrInvalidEnvelope)

	unknown := send
	unknown.Hash[0] ^= 1
	require.ErrorIs(e.ledger.Send(ctx, unknown), xcm.ErrNotFound)

	// revoking trust stops dispatch
	require.NoError(e.registry.RevokeTrustedSource(ctx, destination, e.client, sourceChainID))
	require.ErrorIs(e.ledger.Send(ctx, send), xcm.ErrUntrustedSource)

	transfer, err := e.ledger.Outgoing(ctx, destination, out.Hash)
	require.NoError(err)
	require.False(transfer.Sent)
}
