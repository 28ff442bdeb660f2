// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/luxfi/xcm"
)

type trustKey struct {
	client  xcm.Address
	chainID uint64
}

func (k trustKey) String() string {
	return fmt.Sprintf("%s/%d", k.client, k.chainID)
}

type TrustedSourceResponse struct {
	Client  xcm.Address `json:"client"`
	ChainID uint64      `json:"chain-id"`
	Source  xcm.Address `json:"source"`
}

func (s *Server) handleTrustedSource(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	client, err := xcm.ParseAddress(vars["client"])
	if err != nil {
		msg := "Could not decode client address"
		s.logger.Warn(msg, zap.String("client", vars["client"]), zap.Error(err))
		writeJSONError(s.logger, w, http.StatusBadRequest, msg)
		return
	}
	chainID, err := strconv.ParseUint(vars["chain"], 10, 64)
	if err != nil {
		msg := "Could not parse chain ID"
		s.logger.Warn(msg, zap.String("chain", vars["chain"]), zap.Error(err))
		writeJSONError(s.logger, w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	key := trustKey{client: client, chainID: chainID}
	source, err := s.trusted.Get(key, func(key trustKey) (xcm.Address, error) {
		return s.trust.Lookup(ctx, key.client, key.chainID)
	}, false)
	switch {
	case errors.Is(err, xcm.ErrNotFound):
		writeJSONError(s.logger, w, http.StatusNotFound, "No trusted source registered")
		return
	case err != nil:
		msg := "Failed to look up trusted source"
		s.logger.Error(msg, zap.Stringer("key", key), zap.Error(err))
		writeJSONError(s.logger, w, http.StatusInternalServerError, msg)
		return
	}

	writeJSON(s.logger, w, TrustedSourceResponse{
		Client:  client,
		ChainID: chainID,
		Source:  source,
	})
}
