// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	eventBuffer  = 64
	writeTimeout = 10 * time.Second
)

// handleEvents streams hub events as JSON text frames until the client
// disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		s.logger.Debug("Failed to upgrade event stream", zap.Error(err))
		return
	}
	defer conn.Close()

	feed, unsubscribe := s.events.Subscribe(r.RemoteAddr, eventBuffer)
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case e, ok := <-feed:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(e); err != nil {
				s.logger.Debug("Event stream closed", zap.String("remote", r.RemoteAddr), zap.Error(err))
				_ = conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(time.Second))
				return
			}
		}
	}
}
