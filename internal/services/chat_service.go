package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/nordinkamal/sochel/internal/models"
	"github.com/nordinkamal/sochel/internal/repositories"
	"github.com/nordinkamal/sochel/pkg/apperrors"
	"go.uber.org/zap"
)

// Broadcaster pushes an event to every live channel of a user and reports
// how many channels received it. Zero is a normal outcome (user offline).
type Broadcaster interface {
	DeliverToUser(userID uint, event models.WSEvent) int
}

// ChatService is the message router: it persists first, then fans out to the
// recipient's and sender's live channels, then notifies. A message is never
// pushed before it is durable.
type ChatService struct {
	messages    repositories.MessageRepository
	users       repositories.UserRepository
	broadcaster Broadcaster
	notifier    Notifier
	logger      *zap.Logger
}

// NewChatService creates a new ChatService
func NewChatService(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, broadcaster Broadcaster, notifier Notifier, logger *zap.Logger) *ChatService {
	return &ChatService{
		messages:    messageRepo,
		users:       userRepo,
		broadcaster: broadcaster,
		notifier:    notifier,
		logger:      logger,
	}
}

// Send persists a message and delivers it live. Delivery to the sender's own
// channels uses the same path as the recipient's, so every connected device
// sees the one persisted copy.
func (s *ChatService) Send(ctx context.Context, sender, recipient uint, text string) (*models.DeliveredMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("message text must not be empty: %w", apperrors.ErrValidation)
	}

	senderUser, err := s.users.GetUserByID(sender)
	if err != nil {
		return nil, err
	}
	recipientUser, err := s.users.GetUserByID(recipient)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
	}
	if err := s.messages.InsertMessage(ctx, message); err != nil {
		return nil, err
	}

	delivered := models.DeliveredMessage{
		ID:        message.ID,
		Sender:    senderUser.ToCompact(),
		Recipient: recipientUser.ToCompact(),
		Text:      message.Text,
		CreatedAt: message.CreatedAt,
	}

	event := models.WSEvent{Type: models.EventReceiveMessage, Payload: delivered}
	channels := s.broadcaster.DeliverToUser(recipient, event)
	channels += s.broadcaster.DeliverToUser(sender, event)
	s.logger.Debug("message fan-out",
		zap.String("message_id", message.ID.Hex()),
		zap.Uint("sender", sender),
		zap.Uint("recipient", recipient),
		zap.Int("channels", channels))

	s.notifier.Emit(recipient, models.NotificationMessage, sender, "")

	return &delivered, nil
}

// Delete hard-deletes a message. Sender only; already-delivered live copies
// are not retracted.
func (s *ChatService) Delete(ctx context.Context, messageID string, requester uint) error {
	message, err := s.messages.GetMessageByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.Sender != requester {
		return apperrors.Forbidden("not the message sender")
	}
	return s.messages.DeleteMessage(ctx, messageID)
}

// History returns the full transcript between two users, oldest first, with
// sender and recipient profiles populated.
func (s *ChatService) History(ctx context.Context, userA, userB uint) ([]models.DeliveredMessage, error) {
	messages, err := s.messages.GetHistory(ctx, userA, userB)
	if err != nil {
		return nil, err
	}

	profiles, err := s.compactProfiles([]uint{userA, userB})
	if err != nil {
		return nil, err
	}

	history := make([]models.DeliveredMessage, len(messages))
	for i, m := range messages {
		history[i] = models.DeliveredMessage{
			ID:        m.ID,
			Sender:    profiles[m.Sender],
			Recipient: profiles[m.Recipient],
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		}
	}
	return history, nil
}

// Conversations returns the profiles of everyone the user has exchanged
// messages with, most recent conversation first.
func (s *ChatService) Conversations(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	partnerIDs, err := s.messages.GetPartnerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(partnerIDs) == 0 {
		return []models.UserCompact{}, nil
	}

	profiles, err := s.compactProfiles(partnerIDs)
	if err != nil {
		return nil, err
	}

	conversations := make([]models.UserCompact, 0, len(partnerIDs))
	for _, id := range partnerIDs {
		if profile, ok := profiles[id]; ok {
			conversations = append(conversations, profile)
		}
	}
	return conversations, nil
}

func (s *ChatService) compactProfiles(ids []uint) (map[uint]models.UserCompact, error) {
	users, err := s.users.GetUsersByIDs(ids)
	if err != nil {
		return nil, err
	}
	profiles := make(map[uint]models.UserCompact, len(users))
	for i := range users {
		profiles[users[i].ID] = users[i].ToCompact()
	}
	return profiles, nil
}
