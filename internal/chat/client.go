package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nordinkamal/sochel/internal/models"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// MessageSender routes an inbound chat message: persist, fan out, notify.
type MessageSender interface {
	Send(ctx context.Context, sender, recipient uint, text string) (*models.DeliveredMessage, error)
}

// Client is one websocket channel. It is anonymous until the join handshake
// declares a user id; the transport was authenticated before the upgrade, so
// the declared id is trusted.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	sender MessageSender
	send   chan []byte
	done   chan struct{}
	userID uint
	joined bool
	logger *zap.Logger
}

// NewClient wraps an upgraded websocket connection
func NewClient(hub *Hub, conn *websocket.Conn, sender MessageSender, logger *zap.Logger) *Client {
	return &Client{
		id:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		sender: sender,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// ID returns the channel's identity, used only for logging
func (c *Client) ID() string {
	return c.id
}

// Run services the connection until it closes, then tears presence down.
// Blocks, so the caller's handler goroutine owns the connection lifecycle.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// enqueue hands an already-encoded frame to the write pump without blocking.
// Returns false when the channel is gone or the buffer is full (slow
// consumer). The send channel is never closed; done gates it instead, so a
// fan-out racing a disconnect cannot panic.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		if c.joined {
			c.hub.Unregister(c.userID, c)
		}
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("channel closed unexpectedly", zap.String("channel", c.id), zap.Error(err))
			}
			return
		}

		var event models.InboundEvent
		if err := json.Unmarshal(data, &event); err != nil {
			c.sendError("malformed event")
			continue
		}
		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event models.InboundEvent) {
	switch event.Type {
	case models.EventJoin:
		var payload models.JoinPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.UserID == 0 {
			c.sendError("join requires a user id")
			return
		}
		if c.joined {
			// Re-key the presence entry on repeated joins.
			c.hub.Unregister(c.userID, c)
		}
		c.userID = payload.UserID
		c.joined = true
		c.hub.Register(c.userID, c)

	case models.EventSendMessage:
		if !c.joined {
			c.sendError("join before sending messages")
			return
		}
		var payload models.SendMessagePayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			c.sendError("malformed message payload")
			return
		}
		if _, err := c.sender.Send(context.Background(), c.userID, payload.Recipient, payload.Text); err != nil {
			c.logger.Warn("message send failed",
				zap.Uint("sender", c.userID),
				zap.Uint("recipient", payload.Recipient),
				zap.Error(err))
			c.sendError("message could not be sent")
		}

	default:
		c.sendError("unknown event type")
	}
}

func (c *Client) sendError(message string) {
	event := models.WSEvent{Type: models.EventError, Payload: map[string]string{"message": message}}
	if data, err := json.Marshal(event); err == nil {
		c.enqueue(data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
