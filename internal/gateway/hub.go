// Package gateway is the real-time transport: a websocket hub with named
// broadcast groups keyed by room code. The engine only sees the group
// operations; the hub owns connection registration and fan-out.
package gateway

import (
	"encoding/json"
	"log"
	"sync"
)

// envelope is the outbound wire frame.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub tracks connected clients and their group memberships.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]*Client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
}

// unregister drops the client from the hub and every group and closes
// its send channel, which ends the write pump.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	for group, members := range h.groups {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	close(c.send)
}

// JoinGroup adds a connection to a broadcast group.
func (h *Hub) JoinGroup(connectionID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connectionID]
	if !ok {
		return
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]*Client)
		h.groups[group] = members
	}
	members[connectionID] = c
}

// LeaveGroup removes a connection from a broadcast group.
func (h *Hub) LeaveGroup(connectionID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, connectionID)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// BroadcastToGroup sends an event to every member of a group.
func (h *Hub) BroadcastToGroup(group, event string, payload any) {
	frame, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("❌ Failed to marshal %s event: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.groups[group] {
		select {
		case c.send <- frame:
		default:
			// Slow consumer, drop the frame rather than block the room
		}
	}
}

// SendTo sends an event to a single connection.
func (h *Hub) SendTo(connectionID, event string, payload any) {
	frame, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("❌ Failed to marshal %s event: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connectionID]
	if !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}
