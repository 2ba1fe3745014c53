package service

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"defidojo/backend/internal/model"
	"defidojo/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Client represents a connected player over WebSocket
type Client struct {
	Hub     *WSHub
	Conn    *websocket.Conn
	Address string
	Send    chan []byte
}

// WSHub broadcasts trade and achievement events to connected UI clients
type WSHub struct {
	clients     map[*Client]bool
	playerConns map[string][]*Client
	register    chan *Client
	unregister  chan *Client
	broadcast   chan []byte
	mu          sync.RWMutex

	log *logger.Logger
}

// NewWSHub creates a hub
func NewWSHub() *WSHub {
	return &WSHub{
		clients:     make(map[*Client]bool),
		playerConns: make(map[string][]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan []byte),
		log:         logger.GetLogger(),
	}
}

// Run processes register/unregister/broadcast events until the process exits
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.playerConns[client.Address] = append(h.playerConns[client.Address], client)
			h.mu.Unlock()
			h.log.Infof("WS client registered: address=%s", client.Address)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				conns := h.playerConns[client.Address]
				for i, c := range conns {
					if c == client {
						h.playerConns[client.Address] = append(conns[:i], conns[i+1:]...)
						break
					}
				}
				if len(h.playerConns[client.Address]) == 0 {
					delete(h.playerConns, client.Address)
				}
			}
			h.mu.Unlock()
			h.log.Infof("WS client unregistered: address=%s", client.Address)

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Buffer full; the read deadline will reap the client
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to all connected clients
func (h *WSHub) Broadcast(msg model.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorf("Failed to marshal WS broadcast message: %v", err)
		return
	}
	h.broadcast <- data
}

// SendToPlayer sends a message to all active connections for one player
func (h *WSHub) SendToPlayer(address string, msg model.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorf("Failed to marshal WS direct message: %v", err)
		return
	}

	h.mu.RLock()
	conns, ok := h.playerConns[address]
	h.mu.RUnlock()

	if !ok {
		return
	}

	for _, client := range conns {
		select {
		case client.Send <- data:
		default:
			// Buffer full, client will be dropped on the next pump cycle
		}
	}
}

// ReadPump handles messages from the client (heartbeats only)
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

// WritePump pushes queued messages and pings to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(45 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades an authenticated request to a WebSocket connection
func (h *WSHub) ServeWS(c *gin.Context, address string) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("WS upgrade failed: %v", err)
		return
	}

	client := &Client{
		Hub:     h,
		Conn:    conn,
		Address: address,
		Send:    make(chan []byte, 64),
	}
	h.register <- client

	go client.WritePump()
	go client.ReadPump()
}
