// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/luxfi/geth/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/apps"
	"github.com/luxfi/xcm/events"
	"github.com/luxfi/xcm/ledger"
	"github.com/luxfi/xcm/metrics"
	"github.com/luxfi/xcm/payload"
	"github.com/luxfi/xcm/registry"
	"github.com/luxfi/xcm/relay"
	"github.com/luxfi/xcm/storage"
)

const (
	localChainID  = 1000
	sourceChainID = 1
)

func address(b byte) xcm.Address {
	var a xcm.Address
	for i := range a {
		a[i] = b + byte(i)*5
	}
	return a
}

var (
	program     = address(1)
	destination = address(2)
	relayOwner  = address(3)
	source      = address(4)
	payer       = address(5)
)

type testServer struct {
	server *httptest.Server
	client xcm.Address
	hub    *events.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	db := storage.NewMemoryDB()
	lib := storage.New(storage.RLPCodec{})
	deriver := xcm.NewDeriver(program, 64)
	reg := registry.New(db, lib, deriver, localChainID, zap.NewNop())

	client, err := reg.CreateClient(ctx, destination, relayOwner, payload.KindOwnership)
	require.NoError(t, err)
	_, err = reg.SetTrustedSource(ctx, destination, client, sourceChainID, source)
	require.NoError(t, err)

	gatherer := prometheus.NewRegistry()
	hub := events.NewHub(zap.NewNop())
	l := ledger.New(&ledger.Config{
		LocalChainID: localChainID,
		DB:           db,
		Library:      lib,
		Deriver:      deriver,
		Application:  apps.NewDefaultRouter(lib),
		Metrics:      metrics.NewTransferMetrics(gatherer),
		Events:       hub,
	}, zap.NewNop())
	submitter := relay.NewSubmitter(l, relay.SubmitterConfig{
		InitialInterval: time.Millisecond,
		Timeout:         100 * time.Millisecond,
	}, zap.NewNop())

	s := New(Config{
		Submitter:       submitter,
		Outbox:          l,
		Status:          l,
		Trust:           reg,
		Builder:         relay.NewBuilder(deriver, l.Hasher()),
		Events:          hub,
		Gatherer:        gatherer,
		TrustedCacheTTL: time.Minute,
	}, zap.NewNop())

	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)

	return &testServer{
		server: server,
		client: client,
		hub:    hub,
	}
}

func (ts *testServer) url(path string) string {
	return ts.server.URL + path
}

func ownershipTransfer(t *testing.T, txID uint32) TransferRequest {
	o, err := payload.NewOwnership(payer, payer[:], "https://google1.com")
	require.NoError(t, err)
	return TransferRequest{
		SourceChainID:      sourceChainID,
		SourceAddress:      source,
		DestinationChainID: localChainID,
		DestinationAddress: destination,
		TransactionID:      txID,
		Payload:            "0x" + hex.EncodeToString(o.Bytes()),
		Payer:              payer,
		RelayOwner:         relayOwner,
	}
}

func postTransfer(t *testing.T, ts *testServer, req TransferRequest) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(ts.url(TransfersPath), "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestTransferAndStatus(t *testing.T) {
	require := require.New(t)
	ts := newTestServer(t)

	resp := postTransfer(t, ts, ownershipTransfer(t, 6))
	require.Equal(http.StatusOK, resp.StatusCode)
	receipt := decode[TransferResponse](t, resp)
	require.Equal(ledger.StateExecuted.String(), receipt.State)
	require.Equal(payload.KindOwnership.String(), receipt.Kind)
	require.Equal(ts.client, receipt.ClientAccount)

	statusResp, err := http.Get(ts.url("/transfers/" + receipt.Hash.Hex()))
	require.NoError(err)
	defer statusResp.Body.Close()
	require.Equal(http.StatusOK, statusResp.StatusCode)
	status := decode[TransferStatusResponse](t, statusResp)
	require.True(status.Processed)
	require.Equal(receipt.Hash, status.Hash)

	// replay
	resp = postTransfer(t, ts, ownershipTransfer(t, 6))
	require.Equal(http.StatusConflict, resp.StatusCode)
	errResp := decode[ErrorResponse](t, resp)
	require.Contains(errResp.Error, "already_processed")
}

func TestTransferRejections(t *testing.T) {
	ts := newTestServer(t)

	tampered := ownershipTransfer(t, 7)
	tampered.IncomingHash = common.Hash{1, 2, 3}.Hex()

	untrusted := ownershipTransfer(t, 8)
	untrusted.SourceAddress = address(99)

	sameChain := ownershipTransfer(t, 9)
	sameChain.SourceChainID = localChainID

	badPayload := ownershipTransfer(t, 10)
	badPayload.Payload = "0xzz"

	tests := []struct {
		name           string
		req            TransferRequest
		expectedStatus int
	}{
		{name: "hash mismatch", req: tampered, expectedStatus: http.StatusUnprocessableEntity},
		{name: "untrusted source", req: untrusted, expectedStatus: http.StatusUnprocessableEntity},
		{name: "invalid envelope", req: sameChain, expectedStatus: http.StatusBadRequest},
		{name: "payload not hex", req: badPayload, expectedStatus: http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := postTransfer(t, ts, test.req)
			require.Equal(t, test.expectedStatus, resp.StatusCode)
		})
	}

	resp, err := http.Post(ts.url(TransfersPath), "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownTransferStatus(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.url("/transfers/" + common.Hash{9}.Hex()))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, decode[TransferStatusResponse](t, resp).Processed)

	bad, err := http.Get(ts.url("/transfers/0x1234"))
	require.NoError(t, err)
	defer bad.Body.Close()
	require.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestTrustedSource(t *testing.T) {
	require := require.New(t)
	ts := newTestServer(t)

	resp, err := http.Get(ts.url(fmt.Sprintf("/clients/%s/trusted/%d", ts.client, sourceChainID)))
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)
	trusted := decode[TrustedSourceResponse](t, resp)
	require.Equal(source, trusted.Source)
	require.Equal(uint64(sourceChainID), trusted.ChainID)

	missing, err := http.Get(ts.url(fmt.Sprintf("/clients/%s/trusted/%d", ts.client, 77)))
	require.NoError(err)
	defer missing.Body.Close()
	require.Equal(http.StatusNotFound, missing.StatusCode)

	bad, err := http.Get(ts.url("/clients/notanaddress/trusted/1"))
	require.NoError(err)
	defer bad.Body.Close()
	require.Equal(http.StatusBadRequest, bad.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	require := require.New(t)
	ts := newTestServer(t)

	resp, err := http.Get(ts.url(HealthPath))
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)

	postTransfer(t, ts, ownershipTransfer(t, 6))

	metricsResp, err := http.Get(ts.url(MetricsPath))
	require.NoError(err)
	defer metricsResp.Body.Close()
	body, err := io.ReadAll(metricsResp.Body)
	require.NoError(err)
	require.Contains(string(body), "transfers_executed_total")
}

func TestEventStream(t *testing.T) {
	require := require.New(t)
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.url(EventsPath), "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(func() bool {
		return ts.hub.Len() == 1
	}, time.Second, 5*time.Millisecond)

	postTransfer(t, ts, ownershipTransfer(t, 6))

	require.NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	var event events.Event
	require.NoError(conn.ReadJSON(&event))
	require.Equal(events.TypePayloadReceived, event.Type)
	e := event.PayloadReceived
	require.NotNil(e)
	require.Equal(uint64(sourceChainID), e.SourceChainID)
	require.Equal(source, e.SourceAddress)
	require.Equal(uint32(6), e.TransactionID)
	require.Equal(payload.KindOwnership.String(), e.Kind)
}
