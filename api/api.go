// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/luxfi/ids"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/cache"
	"github.com/luxfi/xcm/events"
	"github.com/luxfi/xcm/ledger"
	"github.com/luxfi/xcm/relay"
	"github.com/luxfi/xcm/storage"
)

const (
	TransfersPath = "/transfers"
	TransferPath  = "/transfers/{hash}"
	TrustedPath   = "/clients/{client}/trusted/{chain}"
	HealthPath    = "/health"
	EventsPath    = "/events"
	MetricsPath   = "/metrics"

	OutboundPath       = "/outbound"
	OutgoingPath       = "/outbound/{user}/{hash}"
	OutgoingSendPath   = "/outbound/{user}/{hash}/send"
	OutgoingResultPath = "/outbound/{user}/{hash}/result"
)

// Submitter delivers transfer requests to the ledger
type Submitter interface {
	Submit(ctx context.Context, req ledger.TransferRequest) (*ledger.Receipt, error)
}

// StatusReader reports whether a message hash has been executed
type StatusReader interface {
	Processed(ctx context.Context, hash ids.ID) (bool, error)
}

// TrustLookup resolves the trusted source of a client on a chain
type TrustLookup interface {
	Lookup(ctx context.Context, client xcm.Address, chainID uint64) (xcm.Address, error)
}

// Outbox initiates outbound messages and tracks their delivery
type Outbox interface {
	Initiate(ctx context.Context, req ledger.OutboundRequest) (*ledger.Outbound, error)
	Send(ctx context.Context, req ledger.SendRequest) error
	ReportResult(ctx context.Context, req ledger.ResultRequest) error
	Outgoing(ctx context.Context, user xcm.Address, hash ids.ID) (*storage.OutgoingTransfer, error)
}

type Config struct {
	Submitter       Submitter
	Outbox          Outbox
	Status          StatusReader
	Trust           TrustLookup
	Builder         *relay.Builder
	Events          *events.Hub
	Gatherer        prometheus.Gatherer
	TrustedCacheTTL time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Server exposes the transfer ledger over HTTP
type Server struct {
	submitter Submitter
	outbox    Outbox
	status    StatusReader
	trust     TrustLookup
	builder   *relay.Builder
	events    *events.Hub
	trusted   *cache.TTLCache[trustKey, xcm.Address]
	upgrader  websocket.Upgrader
	router    *mux.Router
	logger    *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Server {
	s := &Server{
		submitter: cfg.Submitter,
		outbox:    cfg.Outbox,
		status:    cfg.Status,
		trust:     cfg.Trust,
		builder:   cfg.Builder,
		events:    cfg.Events,
		trusted:   cache.NewTTLCache[trustKey, xcm.Address](cfg.TrustedCacheTTL),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		router: mux.NewRouter(),
		logger: logger.Named("api"),
	}

	s.router.HandleFunc(TransfersPath, s.handleTransfer).Methods(http.MethodPost)
	s.router.HandleFunc(TransferPath, s.handleTransferStatus).Methods(http.MethodGet)
	s.router.HandleFunc(TrustedPath, s.handleTrustedSource).Methods(http.MethodGet)
	if s.outbox != nil {
		s.router.HandleFunc(OutboundPath, s.handleInitiate).Methods(http.MethodPost)
		s.router.HandleFunc(OutgoingPath, s.handleOutgoing).Methods(http.MethodGet)
		s.router.HandleFunc(OutgoingSendPath, s.handleSend).Methods(http.MethodPost)
		s.router.HandleFunc(OutgoingResultPath, s.handleResult).Methods(http.MethodPost)
	}
	s.router.Handle(HealthPath, healthHandler(s.checkHealth)).Methods(http.MethodGet)
	if s.events != nil {
		s.router.HandleFunc(EventsPath, s.handleEvents).Methods(http.MethodGet)
	}
	if cfg.Gatherer != nil {
		s.router.Handle(MetricsPath, promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return s
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) checkHealth(ctx context.Context) error {
	_, err := s.status.Processed(ctx, ids.Empty)
	return err
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, v interface{}) {
	resp, err := json.Marshal(v)
	if err != nil {
		msg := "Failed to marshal response"
		logger.Error(msg, zap.Error(err))
		writeJSONError(logger, w, http.StatusInternalServerError, msg)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(resp); err != nil {
		logger.Error("Error writing response", zap.Error(err))
	}
}

func writeJSONError(
	logger *zap.Logger,
	w http.ResponseWriter,
	httpStatusCode int,
	errorMsg string,
) {
	resp, err := json.Marshal(
		ErrorResponse{
			Error: errorMsg,
		},
	)
	if err != nil {
		msg := "Error marshalling JSON error response"
		logger.Error(msg, zap.Error(err))
		resp = []byte(msg)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)

	_, err = w.Write(resp)
	if err != nil {
		logger.Error("Error writing error response", zap.Error(err))
	}
}
