package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client is one connected browser tab.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *PreviewServer
}

func (s *PreviewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{s.config.Address()},
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	client := &Client{
		conn:   conn,
		send:   make(chan []byte, 16),
		server: s,
	}
	s.register(client)

	go client.writePump()
	client.readPump(r.Context())
}

// checkOrigin only accepts browsers on the page the server itself served.
func (s *PreviewServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	return originURL.Host == r.Host || originURL.Host == s.config.Address()
}

func (s *PreviewServer) register(c *Client) {
	s.clientsMutex.Lock()
	s.clients[c] = struct{}{}
	count := len(s.clients)
	s.clientsMutex.Unlock()
	s.logger.Debug(context.Background(), "client connected", "clients", count)
}

func (s *PreviewServer) unregister(c *Client) {
	s.clientsMutex.Lock()
	_, ok := s.clients[c]
	if ok {
		delete(s.clients, c)
		close(c.send)
	}
	count := len(s.clients)
	s.clientsMutex.Unlock()
	if ok {
		s.logger.Debug(context.Background(), "client disconnected", "clients", count)
	}
}

func (s *PreviewServer) clientCount() int {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	return len(s.clients)
}

func (s *PreviewServer) closeClients() {
	s.clientsMutex.Lock()
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
	s.clientsMutex.Unlock()
}

// broadcast queues msg for every client. Clients whose queue is full miss
// the message; the next reload catches them up.
func (s *PreviewServer) broadcast(msg UpdateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(context.Background(), err, "failed to encode update")
		return
	}

	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// readPump discards incoming messages until the peer goes away.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.server.unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				c.server.logger.Debug(ctx, "websocket read ended", "error", err.Error())
			}
			return
		}
	}
}

// writePump sends queued messages and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := context.Background()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
