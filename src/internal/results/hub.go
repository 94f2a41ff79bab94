package results

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is a live results subscriber.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// writeWait bounds a single write to a slow or stalled subscriber.
const writeWait = 10 * time.Second

type websocketClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func NewWebsocketClient(conn *websocket.Conn) Client {
	return &websocketClient{conn: conn}
}

// WriteMessage serialises writers; the connection supports only one at a time.
func (c *websocketClient) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

func (c *websocketClient) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

func (c *websocketClient) Close() error {
	return c.conn.Close()
}

// Hub fans poll result updates out to the clients watching each poll.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[Client]struct{}),
	}
}

func (h *Hub) Register(poll string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	watchers, ok := h.clients[poll]
	if !ok {
		watchers = make(map[Client]struct{})
		h.clients[poll] = watchers
	}
	watchers[client] = struct{}{}
}

func (h *Hub) Unregister(poll string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(poll, client)
}

// Broadcast writes outside the lock so a slow client only delays its own poll's update.
func (h *Hub) Broadcast(poll string, message []byte) {
	h.mu.Lock()
	watchers := make([]Client, 0, len(h.clients[poll]))
	for client := range h.clients[poll] {
		watchers = append(watchers, client)
	}
	h.mu.Unlock()

	var failed []Client
	for _, client := range watchers {
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			logrus.WithError(err).WithField("poll", poll).Warn("Dropping live results client")
			failed = append(failed, client)
		}
	}
	if len(failed) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range failed {
		h.remove(poll, client)
	}
}

// Watchers returns the number of clients subscribed to poll.
func (h *Hub) Watchers(poll string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[poll])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for poll, watchers := range h.clients {
		for client := range watchers {
			client.Close()
		}
		delete(h.clients, poll)
	}
}

// remove must be called with mu held.
func (h *Hub) remove(poll string, client Client) {
	watchers, ok := h.clients[poll]
	if !ok {
		return
	}
	if _, ok := watchers[client]; ok {
		delete(watchers, client)
		client.Close()
	}
	if len(watchers) == 0 {
		delete(h.clients, poll)
	}
}
