package socket

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// Namespace is the single Socket.IO namespace the app uses
const Namespace = "/"

// UserRoom is the room every connection of a user joins
func UserRoom(userID string) string {
	return "user:" + userID
}

// Broadcaster emits an event to every connection in a room. *socketio.Server satisfies it.
type Broadcaster interface {
	BroadcastToRoom(namespace string, room, event string, args ...interface{}) bool
}

// Relay forwards notifications to every server instance, this one included
type Relay interface {
	Publish(ctx context.Context, env Envelope) error
}

// Envelope is one notification addressed to a room
type Envelope struct {
	Room    string      `json:"room"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub tracks live connections per user and fans notifications out to socket rooms.
// Delivery is fire-and-forget: nothing is queued for offline users.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]string              // connID -> userID
	users       map[string]map[string]struct{} // userID -> connIDs

	broadcaster Broadcaster
	relay       Relay
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]string),
		users:       make(map[string]map[string]struct{}),
	}
}

// SetBroadcaster attaches the socket server; events are dropped until it is set
func (h *Hub) SetBroadcaster(b Broadcaster) {
	h.mu.Lock()
	h.broadcaster = b
	h.mu.Unlock()
}

// SetRelay routes notifications through a cross-instance relay
func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	h.relay = r
	h.mu.Unlock()
}

func (h *Hub) Register(connID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if previous, ok := h.connections[connID]; ok {
		h.removeLocked(connID, previous)
	}
	h.connections[connID] = userID
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]struct{})
	}
	h.users[userID][connID] = struct{}{}
	log.Printf("✅ User %s connected (%d active connections)", userID, len(h.users[userID]))
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID, ok := h.connections[connID]
	if !ok {
		return
	}
	h.removeLocked(connID, userID)
	log.Printf("👋 User %s disconnected", userID)
}

func (h *Hub) removeLocked(connID, userID string) {
	delete(h.connections, connID)
	conns := h.users[userID]
	delete(conns, connID)
	if len(conns) == 0 {
		delete(h.users, userID)
	}
}

// UserFor returns the user behind a connection
func (h *Hub) UserFor(connID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	userID, ok := h.connections[connID]
	return userID, ok
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// OnlineUsers returns the connected user ids, sorted
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	ids := make([]string, 0, len(h.users))
	for id := range h.users {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (h *Hub) NotifyUser(userID, event string, payload interface{}) {
	h.publish(Envelope{Room: UserRoom(userID), Event: event, Payload: payload})
}

func (h *Hub) NotifyTopic(topic, event string, payload interface{}) {
	h.publish(Envelope{Room: topic, Event: event, Payload: payload})
}

func (h *Hub) publish(env Envelope) {
	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()

	if relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := relay.Publish(ctx, env)
		if err == nil {
			return
		}
		log.Printf("⚠️ Relay publish failed, emitting locally: %v", err)
	}
	h.Deliver(env)
}

// Deliver emits an envelope to local connections only
func (h *Hub) Deliver(env Envelope) {
	h.mu.RLock()
	b := h.broadcaster
	h.mu.RUnlock()

	if b == nil {
		return
	}
	b.BroadcastToRoom(Namespace, env.Room, env.Event, env.Payload)
}
