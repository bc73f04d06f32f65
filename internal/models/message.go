package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a chat message document stored in MongoDB. Immutable once
// written except for hard deletion by the sender. Order within a user pair is
// created_at ascending, insertion order breaking ties.
type Message struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Sender    uint               `json:"sender" bson:"sender"`
	Recipient uint               `json:"recipient" bson:"recipient"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// DeliveredMessage is the fully-formed message shape pushed to live channels
// and returned from history, with sender/recipient profiles populated.
type DeliveredMessage struct {
	ID        primitive.ObjectID `json:"id"`
	Sender    UserCompact        `json:"sender"`
	Recipient UserCompact        `json:"recipient"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"created_at"`
}

// Websocket event types exchanged on a chat channel.
const (
	EventJoin           = "join"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventError          = "error"
)

// WSEvent is the envelope for every frame on a chat channel.
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// InboundEvent is a client frame before its payload is decoded.
type InboundEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload declares the connecting client's identity. The transport was
// already authenticated at connection time, so the declared id is trusted.
type JoinPayload struct {
	UserID uint `json:"user_id"`
}

// SendMessagePayload asks the router to deliver text to a recipient.
type SendMessagePayload struct {
	Recipient uint   `json:"recipient"`
	Text      string `json:"text"`
}
