package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"aminashop/backend/internal/state"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientQueueLen = 32
)

// Event is what websocket clients receive for every committed change.
type Event struct {
	Type    string    `json:"type"`
	Version uint64    `json:"version"`
	Kind    string    `json:"kind,omitempty"`
	At      time.Time `json:"at"`
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans store changes out to connected websocket clients. Clients that
// fall behind are dropped rather than slowing down writers.
type Hub struct {
	clients    map[*wsClient]bool
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("[events] client connected (%d online)", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("[events] client disconnected (%d online)", len(h.clients))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
					log.Println("[events] WARN: dropped slow client")
				}
			}
		}
	}
}

// Publish queues a change for every client. It never blocks, so it is safe
// to pass to state.Store.Subscribe.
func (h *Hub) Publish(change state.Change) {
	payload, err := json.Marshal(Event{Type: "change", Version: change.Version, Kind: change.Kind, At: change.At})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		log.Printf("[events] WARN: broadcast queue full, change %d not sent", change.Version)
	}
}

func (a *API) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || a.allowedOrigin == "*" || strings.EqualFold(origin, a.allowedOrigin)
		},
	}
}

// handleEvents upgrades to a websocket that streams store changes. Browsers
// cannot set headers on websocket requests, so the token may come in the
// query string.
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	if a.hub == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("change feed disabled"))
		return
	}

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if authorization := strings.TrimSpace(r.Header.Get("Authorization")); token == "" && strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
		token = strings.TrimSpace(authorization[len("Bearer "):])
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, errors.New("missing token"))
		return
	}
	if _, err := a.authenticate(token); err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	upgrader := a.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[events] WARN: upgrade failed: %v", err)
		return
	}

	client := &wsClient{hub: a.hub, conn: conn, send: make(chan []byte, clientQueueLen)}
	hello, _ := json.Marshal(Event{Type: "hello", Version: a.service.Version(), At: time.Now().UTC()})
	client.send <- hello

	select {
	case a.hub.register <- client:
	case <-a.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only watches for the peer going away; clients never send data.
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[events] WARN: unexpected close: %v", err)
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
