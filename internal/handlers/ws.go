// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"gridpulse/internal/stream"
)

// LiveHandler upgrades the connection to a WebSocket and pushes each scan
// cycle's dashboard payload to the client until it disconnects.
func LiveHandler(hub *stream.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "upgrade failed", http.StatusBadRequest)
			return
		}
		defer conn.Close()

		ch := hub.Subscribe()
		defer hub.Unsubscribe(ch)
		log.Printf("[WS] live client connected: %s", r.RemoteAddr)

		// Drain the read side so close frames are processed.
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
				log.Printf("[WS] live client disconnected: %s", r.RemoteAddr)
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					log.Printf("[WS] live client disconnected: %s", r.RemoteAddr)
					return
				}
			}
		}
	}
}
