// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/ledger"
	"github.com/luxfi/xcm/utils"
)

// InitiateRequest sends a message from user to the address its client
// trusts on the destination chain.
type InitiateRequest struct {
	Authority          xcm.Address `json:"authority"`
	User               xcm.Address `json:"user"`
	DestinationChainID uint64      `json:"destination-chain-id"`
	// hex-encoded payload, optionally prefixed with "0x".
	Payload string `json:"payload"`
}

type InitiateResponse struct {
	Hash               common.Hash `json:"hash"`
	State              string      `json:"state"`
	TransactionID      uint32      `json:"transaction-id"`
	DestinationChainID uint64      `json:"destination-chain-id"`
	DestinationAddress xcm.Address `json:"destination-address"`
	ClientAccount      xcm.Address `json:"client-account"`
	TransferAccount    xcm.Address `json:"transfer-account"`
	// hex-encoded canonical envelope the destination chain re-hashes
	Envelope string `json:"envelope"`
}

type SendRequest struct {
	Sender             xcm.Address `json:"sender"`
	DestinationChainID uint64      `json:"destination-chain-id"`
	TransactionID      uint32      `json:"transaction-id"`
}

type ResultRequest struct {
	Sender     xcm.Address `json:"sender"`
	StatusCode uint8       `json:"status-code"`
}

type OutgoingResponse struct {
	Hash               common.Hash `json:"hash"`
	State              string      `json:"state"`
	TransactionID      uint32      `json:"transaction-id"`
	DestinationChainID uint64      `json:"destination-chain-id"`
	DestinationAddress xcm.Address `json:"destination-address"`
	StatusCode         *uint8      `json:"status-code,omitempty"`
}

func (s *Server) handleInitiate(w http.ResponseWriter, r *http.Request) {
	var req InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := "Could not decode request body"
		s.logger.Warn(msg, zap.Error(err))
		writeJSONError(s.logger, w, http.StatusBadRequest, msg)
		return
	}
	payloadBytes, err := utils.DecodeHex(req.Payload)
	if err != nil {
		msg := "Could not decode payload"
		s.logger.Warn(msg, zap.String("payload", req.Payload), zap.Error(err))
		writeJSONError(s.logger, w, http.StatusBadRequest, msg)
		return
	}

	out, err := s.outbox.Initiate(r.Context(), ledger.OutboundRequest{
		Authority:          req.Authority,
		User:               req.User,
		DestinationChainID: req.DestinationChainID,
		Payload:            payloadBytes,
	})
	if err != nil {
		s.logger.Warn("Outbound transfer failed", zap.Stringer("user", req.User), zap.Error(err))
		writeJSONError(s.logger, w, rejectionStatus(err), err.Error())
		return
	}

	writeJSON(s.logger, w, InitiateResponse{
		Hash:               common.Hash(out.Hash),
		State:              out.State.String(),
		TransactionID:      out.Envelope.TransactionID,
		DestinationChainID: out.Envelope.DestinationChainID,
		DestinationAddress: out.Envelope.DestinationAddress,
		ClientAccount:      out.ClientAccount,
		TransferAccount:    out.TransferAccount,
		Envelope:           "0x" + hex.EncodeToString(out.Envelope.Bytes()),
	})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	user, hash, ok := s.outgoingVars(w, r)
	if !ok {
		return
	}
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := "Could not decode request body"
		s.logger.Warn(msg, zap.Error(err))
		writeJSONError(s.logger, w, http.StatusBadRequest, msg)
		return
	}
	err := s.outbox.Send(r.Context(), ledger.SendRequest{
		Sender:             req.Sender,
		User:               user,
		DestinationChainID: req.DestinationChainID,
		TransactionID:      req.TransactionID,
		Hash:               hash,
	})
	if err != nil {
		s.logger.Warn("Send failed", zap.Stringer("hash", common.Hash(hash)), zap.Error(err))
		writeJSONError(s.logger, w, rejectionStatus(err), err.Error())
		return
	}
	s.writeOutgoing(w, r, user, hash)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	user, hash, ok := s.outgoingVars(w, r)
	if !ok {
		return
	}
	var req ResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := "Could not decode request body"
		s.logger.Warn(msg, zap.Error(err))
		writeJSONError(s.logger, w, http.StatusBadRequest, msg)
		return
	}
	err := s.outbox.ReportResult(r.Context(), ledger.ResultRequest{
		Sender:     req.Sender,
		User:       user,
		Hash:       hash,
		StatusCode: req.StatusCode,
	})
	if err != nil {
		s.logger.Warn("Reporting result failed", zap.Stringer("hash", common.Hash(hash)), zap.Error(err))
		writeJSONError(s.logger, w, rejectionStatus(err), err.Error())
		return
	}
	s.writeOutgoing(w, r, user, hash)
}

func (s *Server) handleOutgoing(w http.ResponseWriter, r *http.Request) {
	user, hash, ok := s.outgoingVars(w, r)
	if !ok {
		return
	}
	s.writeOutgoing(w, r, user, hash)
}

func (s *Server) writeOutgoing(w http.ResponseWriter, r *http.Request, user xcm.Address, hash ids.ID) {
	transfer, err := s.outbox.Outgoing(r.Context(), user, hash)
	switch {
	case errors.Is(err, xcm.ErrNotFound):
		writeJSONError(s.logger, w, http.StatusNotFound, "No outgoing transfer")
		return
	case err != nil:
		msg := "Failed to read outgoing transfer"
		s.logger.Error(msg, zap.Error(err))
		writeJSONError(s.logger, w, http.StatusInternalServerError, msg)
		return
	}

	resp := OutgoingResponse{
		Hash:               common.Hash(transfer.Hash),
		State:              ledger.OutboundStateOf(transfer).String(),
		TransactionID:      transfer.TransactionID,
		DestinationChainID: transfer.DestinationChainID,
		DestinationAddress: transfer.DestinationAddress,
	}
	if transfer.Reported {
		code := transfer.StatusCode
		resp.StatusCode = &code
	}
	writeJSON(s.logger, w, resp)
}

func (s *Server) outgoingVars(w http.ResponseWriter, r *http.Request) (xcm.Address, ids.ID, bool) {
	vars := mux.Vars(r)
	user, err := xcm.ParseAddress(vars["user"])
	if err != nil {
		msg := "Could not decode user address"
		s.logger.Warn(msg, zap.String("user", vars["user"]), zap.Error(err))
		writeJSONError(s.logger, w, http.StatusBadRequest, msg)
		return xcm.EmptyAddress, ids.Empty, false
	}
	hash, err := utils.HexOrCB58ToID(vars["hash"])
	if err != nil {
		msg := "Could not decode hash"
		s.logger.Warn(msg, zap.String("hash", vars["hash"]), zap.Error(err))
		writeJSONError(s.logger, w, http.StatusBadRequest, msg)
		return xcm.EmptyAddress, ids.Empty, false
	}
	return user, hash, true
}
