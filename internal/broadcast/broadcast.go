// Package broadcast runs a websocket hub that pushes finished
// transcription results to any number of connected browser clients,
// adapted from the capture-audio streaming hub into a JSON result feed.
package broadcast

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orangepi5/micasr/internal/decode"
	"github.com/orangepi5/micasr/internal/logging"
	"github.com/orangepi5/micasr/internal/timeline"
)

const (
	writeDeadline = 5 * time.Second
	pingInterval  = 25 * time.Second
	maxMessageSize = 64 * 1024
)

// Message is the JSON payload pushed to every connected client.
type Message struct {
	Text        string           `json:"text"`
	Language    string           `json:"language,omitempty"`
	Emotion     string           `json:"emotion"`
	AudioEvents []string         `json:"audio_events,omitempty"`
	Confidence  float64          `json:"confidence"`
	Words       []timeline.Word  `json:"words,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Hub manages connected websocket clients and broadcasts transcription
// results to all of them without blocking the caller.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex

	allowedOrigin string
}

// NewHub constructs a Hub. allowedOrigin, if non-empty, restricts upgrade
// requests whose Origin header does not contain it; empty allows all.
func NewHub(allowedOrigin string) *Hub {
	h := &Hub{
		clients:       make(map[*websocket.Conn]*sync.Mutex),
		allowedOrigin: allowedOrigin,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 16384,
		CheckOrigin: func(r *http.Request) bool {
			if h.allowedOrigin == "" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || strings.Contains(origin, h.allowedOrigin)
		},
	}
	return h
}

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	h.register(conn)
	go h.handleClient(conn)
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) handleClient(conn *websocket.Conn) {
	defer h.unregister(conn)

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-pingTicker.C:
			connMu := h.connMutex(conn)
			connMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline))
			connMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (h *Hub) connMutex(conn *websocket.Conn) *sync.Mutex {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[conn]
}

// BroadcastTranscription implements emit.Broadcaster, sending one JSON
// message to every connected client. A slow or dead client is dropped
// rather than allowed to stall the broadcast.
func (h *Hub) BroadcastTranscription(result *decode.Result, newWords []timeline.Word) error {
	msg := Message{
		Text:        result.Text,
		Language:    result.Language,
		Emotion:     result.Emotion,
		AudioEvents: result.AudioEvents,
		Confidence:  result.Confidence,
		Words:       newWords,
		Timestamp:   time.Now(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		connMu := h.connMutex(conn)
		if connMu == nil {
			continue
		}
		connMu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		err := conn.WriteMessage(websocket.TextMessage, payload)
		connMu.Unlock()
		if err != nil {
			h.unregister(conn)
		}
	}

	return nil
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
