package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wricardo/castle-maze/game/engine"
	"github.com/wricardo/castle-maze/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Outbound messages queued for the hub loop before new ones are dropped.
	broadcastBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the outbound frame pushed to presentation clients
type Message struct {
	SessionID string           `json:"session_id"`
	Event     string           `json:"event,omitempty"`
	Snapshot  *engine.Snapshot `json:"snapshot,omitempty"`
	Data      interface{}      `json:"data,omitempty"`

	// client restricts delivery to a single connection
	client *Client
}

// ClientMessage is an inbound command from a presentation client
type ClientMessage struct {
	Action    string `json:"action"`
	Direction string `json:"direction,omitempty"`
	Fast      bool   `json:"fast,omitempty"`
	DX        int    `json:"dx,omitempty"`
	DY        int    `json:"dy,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID. Owned by Run.
	sessions map[string]map[*Client]bool

	// Outbound messages waiting for the hub loop
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	games service.GameService
	log   zerolog.Logger
}

var _ service.Notifier = (*Hub)(nil)

// Option configures a Hub
type Option func(*Hub)

// WithLogger sets the hub logger
func WithLogger(log zerolog.Logger) Option {
	return func(h *Hub) {
		h.log = log
	}
}

// WithGameService lets clients send commands over the socket
func WithGameService(games service.GameService) Option {
	return func(h *Hub) {
		h.games = games
	}
}

// NewHub creates a new WebSocket hub
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetGameService attaches the service used for inbound commands. It must be
// called before Run.
func (h *Hub) SetGameService(games service.GameService) {
	h.games = games
}

// Run starts the hub's event loop and blocks until ctx is cancelled
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		for _, clients := range h.sessions {
			for client := range clients {
				h.unregisterClient(client)
			}
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("session", sessionID).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	// queue the current state before the hub owns the channel
	if h.games != nil {
		if snap, err := h.games.GetGameState(r.Context(), sessionID); err == nil {
			if data, err := json.Marshal(&Message{SessionID: sessionID, Event: "state_update", Snapshot: snap}); err == nil {
				client.send <- data
			}
		}
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// BroadcastToSession queues a snapshot for every client watching a session.
// It never blocks; updates are dropped when the hub falls behind.
func (h *Hub) BroadcastToSession(sessionID string, snapshot *engine.Snapshot) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     "state_update",
		Snapshot:  snapshot,
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn().Str("session", message.SessionID).Str("event", message.Event).Msg("websocket broadcast dropped")
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	h.log.Info().
		Str("session", client.sessionID).
		Int("clients", len(h.sessions[client.sessionID])).
		Msg("websocket client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up empty sessions
			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}

			h.log.Info().
				Str("session", client.sessionID).
				Int("clients", len(clients)).
				Msg("websocket client unregistered")
		}
	}
}

// broadcastMessage sends a message to all clients in a session, or only to
// its target client when one is set
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal websocket message")
		return
	}

	if clients, ok := h.sessions[message.SessionID]; ok {
		for client := range clients {
			if message.client != nil && message.client != client {
				continue
			}
			select {
			case client.send <- data:
			default:
				// Client's send channel is full, close it
				h.unregisterClient(client)
			}
		}
	}
}

// handleCommand applies an inbound client command. State changes reach the
// clients through the service notifier; failures go back to the sender only.
func (h *Hub) handleCommand(ctx context.Context, client *Client, msg ClientMessage) {
	if h.games == nil {
		h.reply(client, "error", "commands are not accepted on this connection")
		return
	}

	var err error
	switch msg.Action {
	case "move":
		_, err = h.games.Move(ctx, client.sessionID, msg.Direction, msg.Fast)
	case "nudge":
		_, err = h.games.Nudge(ctx, client.sessionID, msg.DX, msg.DY)
	case "restart":
		_, err = h.games.Restart(ctx, client.sessionID)
	case "state":
		var snap *engine.Snapshot
		if snap, err = h.games.GetGameState(ctx, client.sessionID); err == nil {
			h.enqueue(&Message{SessionID: client.sessionID, Event: "state_update", Snapshot: snap, client: client})
		}
	default:
		h.reply(client, "error", "unknown action: "+msg.Action)
		return
	}

	if err != nil {
		h.log.Debug().Err(err).Str("session", client.sessionID).Str("action", msg.Action).Msg("websocket command failed")
		h.reply(client, "error", err.Error())
	}
}

func (h *Hub) reply(client *Client, event string, data interface{}) {
	h.enqueue(&Message{SessionID: client.sessionID, Event: event, Data: data, client: client})
}

// readPump pumps commands from the WebSocket connection to the game service
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn().Err(err).Str("session", c.sessionID).Msg("websocket read failed")
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.reply(c, "error", "invalid message")
			continue
		}
		c.hub.handleCommand(context.Background(), c, msg)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
