package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait (seconds) drive the heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Publisher publishes dashboard events to Redis for cross-instance fanout.
type Publisher interface {
	Publish(event string, payload []byte) error
}

// Subscriber subscribes to the dashboard channel and invokes handler for
// incoming events.
type Subscriber interface {
	Subscribe(handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains the set of connected dashboard clients and broadcasts live
// registration and check-in events to them. A Redis channel fans events out
// to the other instances' hubs.
type Hub struct {
	clients   map[string]*Client
	mu        sync.RWMutex
	logger    *zap.Logger
	pub       Publisher
	sub       Subscriber
	cancelSub func()
}

// NewHub creates a dashboard event hub. pub/sub may be nil for single-instance
// deployments and tests.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		pub:     pub,
		sub:     sub,
	}
}

// Start begins listening for events published by other instances.
func (h *Hub) Start() error {
	if h.sub == nil {
		return nil
	}
	cancel, err := h.sub.Subscribe(func(event string, payload []byte) {
		h.broadcastLocal(event, json.RawMessage(payload))
	})
	if err != nil {
		return err
	}
	h.cancelSub = cancel
	return nil
}

// Stop cancels the Redis subscription.
func (h *Hub) Stop() {
	if h.cancelSub != nil {
		h.cancelSub()
	}
}

// Register adds a connected dashboard client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("dashboard client connected", zap.String("client_id", c.ID))
}

// Unregister removes a dashboard client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	h.logger.Debug("dashboard client disconnected", zap.String("client_id", c.ID))
}

// Broadcast sends an event to every connected dashboard. With Redis wired it
// publishes only; the subscriber callback performs the local broadcast once
// for all instances, including this one, so clients never see duplicates.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil && h.cancelSub != nil {
		_ = h.pub.Publish(event, data)
		return
	}
	h.broadcastLocal(event, json.RawMessage(data))
}

func (h *Hub) broadcastLocal(event string, data json.RawMessage) {
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// ClientCount returns the number of connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
