package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tahcohcat/steamwrapped-web/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

// Progress is one generation stage pushed to the user's open pages.
type Progress struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Done    bool   `json:"done"`
}

type message struct {
	steamID string
	payload []byte
}

// Hub fans progress messages out to every connection of the same user.
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[string]map[*Client]bool
	publish    chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *logger.Log
}

type Client struct {
	hub     *Hub
	steamID string
	conn    *websocket.Conn
	send    chan []byte
}

// NewHub accepts upgrades from the given origins; an empty list allows any.
func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
		clients:    make(map[string]map[*Client]bool),
		publish:    make(chan message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.New().With("component", "websocket"),
	}
}

// Run serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, conns := range h.clients {
				for client := range conns {
					close(client.send)
				}
			}
			h.clients = map[string]map[*Client]bool{}
			return

		case client := <-h.register:
			conns, ok := h.clients[client.steamID]
			if !ok {
				conns = make(map[*Client]bool)
				h.clients[client.steamID] = conns
			}
			conns[client] = true
			h.logger.With("steam_id", client.steamID, "connections", len(conns)).Debug("client connected")

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.publish:
			for client := range h.clients[msg.steamID] {
				select {
				case client.send <- msg.payload:
				default:
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	conns, ok := h.clients[client.steamID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.steamID)
	}
}

// Publish queues p for every connection of steamID. It drops the message
// when the hub is backed up.
func (h *Hub) Publish(steamID string, p Progress) {
	payload, err := json.Marshal(p)
	if err != nil {
		h.logger.WithError(err).Warn("failed to encode progress")
		return
	}
	select {
	case h.publish <- message{steamID: steamID, payload: payload}:
	default:
		h.logger.With("steam_id", steamID).Warn("progress dropped")
	}
}

// ServeWS upgrades the request and attaches the connection to steamID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, steamID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{hub: h, steamID: steamID, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Warn("websocket read error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.logger.WithError(err).Warn("websocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
