// Package realtime pushes chat events to connected websocket clients.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultSendBuffer = 64

// Client is one live connection. The send channel is never closed; done
// signals the writer to stop.
type Client struct {
	ID     string
	UserID string

	send  chan []byte
	done  chan struct{}
	once  sync.Once
	rooms map[string]struct{}
}

func (c *Client) stop() {
	c.once.Do(func() { close(c.done) })
}

// Done is closed once the client has been unregistered.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub tracks connections and the rooms they joined.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	rooms      map[string]map[string]*Client
	sendBuffer int
	logger     *logrus.Logger
}

func NewHub(sendBuffer int, logger *logrus.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		sendBuffer: sendBuffer,
		logger:     logger,
	}
}

// Register creates a client for userID and joins it to the user's personal room.
func (h *Hub) Register(userID string) *Client {
	c := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan []byte, h.sendBuffer),
		done:   make(chan struct{}),
		rooms:  make(map[string]struct{}),
	}

	h.mu.Lock()
	h.clients[c.ID] = c
	h.joinLocked(userID, c)
	h.mu.Unlock()

	return c
}

// Unregister removes the client from every room. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		for room := range c.rooms {
			h.leaveLocked(room, c)
		}
		delete(h.clients, c.ID)
	}
	h.mu.Unlock()

	c.stop()
}

func (h *Hub) Join(room string, c *Client) {
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	h.joinLocked(room, c)
}

func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(room, c)
}

func (h *Hub) joinLocked(room string, c *Client) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[c.ID] = c
	c.rooms[room] = struct{}{}
}

func (h *Hub) leaveLocked(room string, c *Client) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c.ID)
	delete(c.rooms, room)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Emit delivers event to every client in room without blocking. A client
// whose buffer is full is disconnected so that no live member misses a frame.
func (h *Hub) Emit(room, event string, payload any) {
	data, err := json.Marshal(outboundFrame{Event: event, Data: payload})
	if err != nil {
		h.logger.WithError(err).WithField("event", event).Error("encode realtime frame")
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[room]))
	for _, c := range h.rooms[room] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case <-c.done:
		case c.send <- data:
		default:
			h.logger.WithFields(logrus.Fields{
				"client": c.ID,
				"room":   room,
				"event":  event,
			}).Warn("send buffer full, disconnecting client")
			h.Unregister(c)
		}
	}
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.Unregister(c)
	}
}
