package chat

import (
	"encoding/json"
	"sync"

	"github.com/nordinkamal/sochel/internal/models"
	"go.uber.org/zap"
)

// Hub is the process-local presence registry: which users are online, and
// through which channels. It holds no durable state; on restart clients
// re-register over fresh connections. Single process only — fanning presence
// across nodes would need an external broker.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
	logger  *zap.Logger
}

// NewHub creates a new Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[uint]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a live channel to the user's presence set. A user may hold
// several channels at once (multi-device).
func (h *Hub) Register(userID uint, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[userID] = set
	}
	set[client] = struct{}{}

	h.logger.Debug("channel registered",
		zap.Uint("user", userID),
		zap.String("channel", client.ID()),
		zap.Int("channels", len(set)))
}

// Unregister removes a channel. Safe to call repeatedly and for users that
// were never registered.
func (h *Hub) Unregister(userID uint, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[userID]
	if !ok {
		return
	}
	if _, present := set[client]; !present {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, userID)
	}

	h.logger.Debug("channel unregistered",
		zap.Uint("user", userID),
		zap.String("channel", client.ID()))
}

// ChannelsOf returns the user's live channels, possibly none
func (h *Hub) ChannelsOf(userID uint) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.clients[userID]
	channels := make([]*Client, 0, len(set))
	for client := range set {
		channels = append(channels, client)
	}
	return channels
}

// DeliverToUser pushes an event to every live channel of the user and
// returns how many channels accepted it. No channels is a silent, expected
// outcome. Delivery order across a user's channels is unspecified.
func (h *Hub) DeliverToUser(userID uint, event models.WSEvent) int {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("event marshal failed", zap.String("type", event.Type), zap.Error(err))
		return 0
	}

	delivered := 0
	for _, client := range h.ChannelsOf(userID) {
		if client.enqueue(data) {
			delivered++
		} else {
			h.logger.Warn("dropping event for slow channel",
				zap.Uint("user", userID),
				zap.String("channel", client.ID()))
		}
	}
	return delivered
}
