// Package liveview broadcasts bus events to connected browsers over a
// websocket, for a live dashboard view of decoded signals.
package liveview

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Server upgrades HTTP connections to websockets and fans out every
// subscribed bus event to all of them.
type Server struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

// New builds an empty Server.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger, clients: make(map[*websocket.Conn]chan []byte)}
}

// Subscribe registers the server as a dbc.Handler on bus, broadcasting
// every event to connected clients as a JSON line.
func (s *Server) Subscribe(bus *dbc.Bus) {
	bus.Subscribe(func(ev dbc.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			s.logger.Warn("failed to marshal event for broadcast", "err", err)
			return
		}
		s.broadcast(data)
	})
}

func (s *Server) broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, ch := range s.clients {
		select {
		case ch <- data:
		default:
			s.logger.Warn("client send buffer full, dropping event", "remote", conn.RemoteAddr())
		}
	}
}

// ServeHTTP upgrades the connection and streams events to it until it
// disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	ch := make(chan []byte, 64)
	done := make(chan struct{})
	s.mu.Lock()
	s.clients[conn] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	// Drain (and discard) inbound frames so control frames are
	// processed and a client-initiated close is observed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(done)
				return
			}
		}
	}()

	for {
		select {
		case data := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
