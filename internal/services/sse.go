package services

import (
	"sync"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent is pushed to SSE clients whenever a record changes.
type ChangeEvent struct {
	Entity    string    `json:"entity"` // project, phase, task, team, media
	Action    string    `json:"action"`
	ID        uint      `json:"id"`
	ProjectID uint      `json:"projectId,omitempty"`
	At        time.Time `json:"at"`
}

// EventHub manages SSE client connections and event broadcasting
type EventHub struct {
	clients map[string]chan ChangeEvent
	mu      sync.RWMutex
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]chan ChangeEvent),
	}
}

// Subscribe registers a new client and returns a channel for receiving events
func (h *EventHub) Subscribe(clientID string) <-chan ChangeEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan ChangeEvent, 100)
	h.clients[clientID] = ch
	return ch
}

// Unsubscribe removes a client from the hub
func (h *EventHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts an event to all connected clients
func (h *EventHub) Publish(event ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		// Non-blocking send - drop event if client buffer is full
		select {
		case ch <- event:
		default:
		}
	}
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// emit is a nil-safe shorthand used by the resource services.
func (h *EventHub) emit(entity, action string, id, projectID uint) {
	if h == nil {
		return
	}
	h.Publish(ChangeEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		ProjectID: projectID,
		At:        time.Now().UTC(),
	})
}
