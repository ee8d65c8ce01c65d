// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	applog "tonelab/internal/log"
)

// snapshotFrame is the wire format sent to WebSocket clients. Magnitudes
// are base64-encoded by encoding/json, one byte per analysis bin.
type snapshotFrame struct {
	Seq        uint64 `json:"seq"`
	Count      int    `json:"count"`
	Magnitudes []byte `json:"magnitudes"`
}

// WebSocketBroadcaster serves magnitude snapshots to any number of
// connected clients on /spectrum. Sends are rate limited so a fast render
// loop cannot flood slow clients; dropped frames are not an error.
type WebSocketBroadcaster struct {
	clients      map[*websocket.Conn]bool
	clientsMutex sync.Mutex
	upgrader     websocket.Upgrader
	server       *http.Server

	seq         uint64
	lastSend    time.Time
	minInterval time.Duration
	sendMutex   sync.Mutex
}

// NewWebSocketBroadcaster starts an HTTP server on addr (e.g. ":8080")
// serving WebSocket upgrades on /spectrum. minInterval <= 0 defaults to
// 33ms (~30 Hz).
func NewWebSocketBroadcaster(addr string, minInterval time.Duration) *WebSocketBroadcaster {
	if minInterval <= 0 {
		minInterval = 33 * time.Millisecond
	}

	b := &WebSocketBroadcaster{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local visualizer clients only; no origin policy.
			},
		},
		minInterval: minInterval,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/spectrum", b.handleWebSocket)
	b.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		applog.Infof("WebSocket: spectrum server listening on %s", addr)
		if err := b.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("WebSocket: server error: %v", err)
		}
	}()

	return b
}

func (b *WebSocketBroadcaster) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("WebSocket: upgrade error: %v", err)
		return
	}

	b.clientsMutex.Lock()
	b.clients[conn] = true
	total := len(b.clients)
	b.clientsMutex.Unlock()
	applog.Infof("WebSocket: client connected, total: %d", total)

	// Drain until the client goes away, then unregister.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				b.clientsMutex.Lock()
				delete(b.clients, conn)
				total := len(b.clients)
				b.clientsMutex.Unlock()
				conn.Close()
				applog.Infof("WebSocket: client disconnected, total: %d", total)
				return
			}
		}
	}()
}

// Send broadcasts a snapshot to all connected clients. Frames arriving
// faster than the rate limit are dropped silently.
func (b *WebSocketBroadcaster) Send(snapshot []byte) error {
	b.sendMutex.Lock()
	now := time.Now()
	if now.Sub(b.lastSend) < b.minInterval {
		b.sendMutex.Unlock()
		return nil
	}
	b.lastSend = now
	b.seq++
	frame := snapshotFrame{Seq: b.seq, Count: len(snapshot), Magnitudes: snapshot}
	b.sendMutex.Unlock()

	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	b.clientsMutex.Lock()
	for client := range b.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			client.Close()
			delete(b.clients, client)
		}
	}
	b.clientsMutex.Unlock()

	return nil
}

// Close disconnects all clients and shuts the server down. Idempotent.
func (b *WebSocketBroadcaster) Close() error {
	b.clientsMutex.Lock()
	for client := range b.clients {
		client.Close()
		delete(b.clients, client)
	}
	b.clientsMutex.Unlock()

	if b.server == nil {
		return nil
	}
	server := b.server
	b.server = nil
	return server.Close()
}

var _ Transport = (*WebSocketBroadcaster)(nil)
