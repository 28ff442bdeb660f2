// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/luxfi/geth/common"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/relay"
	"github.com/luxfi/xcm/utils"
)

// TransferRequest submits a message observed on a source chain.
type TransferRequest struct {
	SourceChainID      uint64      `json:"source-chain-id"`
	SourceAddress      xcm.Address `json:"source-address"`
	DestinationChainID uint64      `json:"destination-chain-id"`
	DestinationAddress xcm.Address `json:"destination-address"`
	TransactionID      uint32      `json:"transaction-id"`
	// hex-encoded payload, optionally prefixed with "0x".
	Payload    string      `json:"payload"`
	Payer      xcm.Address `json:"payer"`
	RelayOwner xcm.Address `json:"relay-owner"`
	// Optional hex-encoded hash reported by the source chain. Defaults to the
	// hash of the envelope built from the fields above.
	IncomingHash string `json:"incoming-hash"`
}

type TransferResponse struct {
	Hash            common.Hash `json:"hash"`
	State           string      `json:"state"`
	Kind            string      `json:"kind"`
	ClientAccount   xcm.Address `json:"client-account"`
	TransferAccount xcm.Address `json:"transfer-account"`
}

type TransferStatusResponse struct {
	Hash      common.Hash `json:"hash"`
	Processed bool        `json:"processed"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
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

	transfer, err := s.builder.Request(&relay.Observed{
		SourceChainID:      req.SourceChainID,
		SourceAddress:      req.SourceAddress,
		DestinationChainID: req.DestinationChainID,
		DestinationAddress: req.DestinationAddress,
		TransactionID:      req.TransactionID,
		Payload:            payloadBytes,
	}, req.Payer, req.RelayOwner)
	if err != nil {
		msg := "Invalid transfer"
		s.logger.Warn(msg, zap.Error(err))
		writeJSONError(s.logger, w, http.StatusBadRequest, msg+": "+err.Error())
		return
	}
	if req.IncomingHash != "" {
		hash, err := utils.HexOrCB58ToID(req.IncomingHash)
		if err != nil {
			msg := "Could not decode incoming hash"
			s.logger.Warn(msg, zap.String("hash", req.IncomingHash), zap.Error(err))
			writeJSONError(s.logger, w, http.StatusBadRequest, msg)
			return
		}
		transfer.IncomingHash = hash
	}

	receipt, err := s.submitter.Submit(r.Context(), transfer)
	if err != nil {
		s.logger.Warn("Transfer failed",
			zap.Stringer("hash", common.Hash(transfer.IncomingHash)),
			zap.Error(err),
		)
		writeJSONError(s.logger, w, rejectionStatus(err), err.Error())
		return
	}

	writeJSON(s.logger, w, TransferResponse{
		Hash:            common.Hash(receipt.Hash),
		State:           receipt.State.String(),
		Kind:            receipt.Kind.String(),
		ClientAccount:   receipt.ClientAccount,
		TransferAccount: receipt.TransferAccount,
	})
}

func (s *Server) handleTransferStatus(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["hash"]
	hash, err := utils.HexOrCB58ToID(raw)
	if err != nil {
		msg := "Could not decode hash"
		s.logger.Warn(msg, zap.String("hash", raw), zap.Error(err))
		writeJSONError(s.logger, w, http.StatusBadRequest, msg)
		return
	}
	processed, err := s.status.Processed(r.Context(), hash)
	if err != nil {
		msg := "Failed to read transfer status"
		s.logger.Error(msg, zap.Error(err))
		writeJSONError(s.logger, w, http.StatusInternalServerError, msg)
		return
	}
	writeJSON(s.logger, w, TransferStatusResponse{
		Hash:      common.Hash(hash),
		Processed: processed,
	})
}

// rejectionStatus maps a failed transfer onto an HTTP status. Replays are a
// conflict, other permanent rejections are unprocessable and transient ones
// ask the caller to come back later.
func rejectionStatus(err error) int {
	var rejected *xcm.RejectedError
	if !errors.As(err, &rejected) {
		return http.StatusInternalServerError
	}
	switch {
	case rejected.Reason == xcm.ReasonAlreadyProcessed:
		return http.StatusConflict
	case xcm.IsPermanent(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusServiceUnavailable
	}
}
