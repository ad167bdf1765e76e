package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) close() {
	close(c.send)
}

// Broadcaster fans messages out to every connected websocket client.
// Slow clients are disconnected rather than allowed to block the rest.
type Broadcaster struct {
	log zerolog.Logger

	mu      sync.RWMutex
	clients map[*client]bool
}

func NewBroadcaster(logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		log:     logger,
		clients: make(map[*client]bool),
	}
}

// AddClient registers conn and sends it the initial snapshot.
func (b *Broadcaster) AddClient(conn *websocket.Conn, snapshot SnapshotPayload) *client {
	c := newClient(conn)

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	data, _ := json.Marshal(WSMessage{Type: MsgSnapshot, Payload: snapshot})
	select {
	case c.send <- data:
	default:
		// Client too slow, drop the snapshot
	}
	return c
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
}

// Broadcast sends one typed message to every client.
func (b *Broadcaster) Broadcast(t MessageType, payload interface{}) {
	data, err := json.Marshal(WSMessage{Type: t, Payload: payload})
	if err != nil {
		b.log.Error().Err(err).Str("type", string(t)).Msg("broadcast marshal error")
		return
	}

	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			b.log.Warn().Msg("ws client too slow, disconnecting")
			b.RemoveClient(c)
		}
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
