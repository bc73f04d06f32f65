package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/nordinkamal/sochel/internal/models"
	"github.com/nordinkamal/sochel/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentMessage struct {
	sender    uint
	recipient uint
	text      string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(ctx context.Context, sender, recipient uint, text string) (*models.DeliveredMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, sentMessage{sender, recipient, text})
	return &models.DeliveredMessage{Text: text}, nil
}

func (f *fakeSender) all() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func inbound(t *testing.T, eventType string, payload interface{}) models.InboundEvent {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return models.InboundEvent{Type: eventType, Payload: data}
}

func drainEvent(t *testing.T, c *Client) models.WSEvent {
	t.Helper()
	select {
	case data := <-c.send:
		var event models.WSEvent
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	default:
		t.Fatal("no event queued")
		return models.WSEvent{}
	}
}

func newHandlerFixture(hub *Hub, sender MessageSender) *Client {
	return &Client{
		id:     "test",
		hub:    hub,
		sender: sender,
		send:   make(chan []byte, 4),
		done:   make(chan struct{}),
		logger: zap.NewNop(),
	}
}

func TestJoinRegistersPresence(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newHandlerFixture(hub, &fakeSender{})

	client.handleEvent(inbound(t, models.EventJoin, models.JoinPayload{UserID: 7}))

	assert.True(t, client.joined)
	assert.Equal(t, uint(7), client.userID)
	assert.Len(t, hub.ChannelsOf(7), 1)
}

func TestJoinRekeysOnRepeat(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newHandlerFixture(hub, &fakeSender{})

	client.handleEvent(inbound(t, models.EventJoin, models.JoinPayload{UserID: 7}))
	client.handleEvent(inbound(t, models.EventJoin, models.JoinPayload{UserID: 8}))

	assert.Empty(t, hub.ChannelsOf(7))
	assert.Len(t, hub.ChannelsOf(8), 1)
}

func TestJoinWithoutUserID(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newHandlerFixture(hub, &fakeSender{})

	client.handleEvent(inbound(t, models.EventJoin, models.JoinPayload{}))

	assert.False(t, client.joined)
	event := drainEvent(t, client)
	assert.Equal(t, models.EventError, event.Type)
}

func TestSendMessageRequiresJoin(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sender := &fakeSender{}
	client := newHandlerFixture(hub, sender)

	client.handleEvent(inbound(t, models.EventSendMessage, models.SendMessagePayload{Recipient: 2, Text: "hi"}))

	assert.Empty(t, sender.all())
	event := drainEvent(t, client)
	assert.Equal(t, models.EventError, event.Type)
}

func TestSendMessageRoutesThroughSender(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sender := &fakeSender{}
	client := newHandlerFixture(hub, sender)

	client.handleEvent(inbound(t, models.EventJoin, models.JoinPayload{UserID: 1}))
	client.handleEvent(inbound(t, models.EventSendMessage, models.SendMessagePayload{Recipient: 2, Text: "hello"}))

	sent := sender.all()
	require.Len(t, sent, 1)
	assert.Equal(t, sentMessage{sender: 1, recipient: 2, text: "hello"}, sent[0])
}

func TestSendMessageFailureSurfacesError(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sender := &fakeSender{err: apperrors.NotFound("user")}
	client := newHandlerFixture(hub, sender)

	client.handleEvent(inbound(t, models.EventJoin, models.JoinPayload{UserID: 1}))
	client.handleEvent(inbound(t, models.EventSendMessage, models.SendMessagePayload{Recipient: 99, Text: "hello"}))

	event := drainEvent(t, client)
	assert.Equal(t, models.EventError, event.Type)
}

func TestUnknownEventType(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newHandlerFixture(hub, &fakeSender{})

	client.handleEvent(models.InboundEvent{Type: "typing", Payload: json.RawMessage(`{}`)})

	event := drainEvent(t, client)
	assert.Equal(t, models.EventError, event.Type)
}
