package services

import (
	"context"
	"fmt"

	"github.com/nordinkamal/sochel/internal/models"
	"github.com/nordinkamal/sochel/internal/repositories"
	"github.com/nordinkamal/sochel/pkg/apperrors"
	"go.uber.org/zap"
)

// Notifier records one notification per qualifying event. Implementations
// must be best-effort: the triggering mutation has already committed by the
// time Emit runs, so a failed write is logged, never propagated.
type Notifier interface {
	Emit(recipient uint, notificationType string, actor uint, relatedPost string)
}

// NotificationService is the fan-out writer plus the read-side queries over
// the notification table, with an optional Redis unread counter in front of
// the unread count query.
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	cache         *repositories.UnreadCache // nil disables caching
	logger        *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository, cache *repositories.UnreadCache, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifRepo,
		users:         userRepo,
		cache:         cache,
		logger:        logger,
	}
}

// EnrichedNotification includes the actor's profile summary
type EnrichedNotification struct {
	models.Notification
	Actor models.UserCompact `json:"actor"`
}

// Emit appends one notification row off the caller's critical path. The
// caller's mutation already committed; failures here only lose best-effort
// metadata, so they are logged and dropped.
func (s *NotificationService) Emit(recipient uint, notificationType string, actor uint, relatedPost string) {
	if !models.ValidNotificationType(notificationType) {
		s.logger.Error("dropping notification with unknown type",
			zap.String("type", notificationType),
			zap.Uint("recipient", recipient))
		return
	}

	notification := &models.Notification{
		Type:        notificationType,
		ActorID:     actor,
		RecipientID: recipient,
		RelatedPost: relatedPost,
	}

	go func() {
		if err := s.notifications.CreateNotification(notification); err != nil {
			s.logger.Error("notification write failed",
				zap.String("type", notificationType),
				zap.Uint("recipient", recipient),
				zap.Uint("actor", actor),
				zap.Error(err))
			return
		}
		if s.cache != nil {
			if err := s.cache.Increment(context.Background(), recipient); err != nil {
				s.logger.Warn("unread cache increment failed", zap.Uint("recipient", recipient), zap.Error(err))
			}
		}
	}()
}

// ListFor returns the newest notifications for a user (capped) together with
// the unread count.
func (s *NotificationService) ListFor(ctx context.Context, userID uint) ([]EnrichedNotification, int64, error) {
	notifications, err := s.notifications.GetByRecipientID(userID, 50)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.unreadCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return s.enrich(notifications), unread, nil
}

// UnreadCount returns the number of unread notifications for a user
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.unreadCount(ctx, userID)
}

func (s *NotificationService) unreadCount(ctx context.Context, userID uint) (int64, error) {
	if s.cache != nil {
		count, hit, err := s.cache.GetCount(ctx, userID)
		if err != nil {
			s.logger.Warn("unread cache read failed", zap.Uint("user", userID), zap.Error(err))
		} else if hit {
			return count, nil
		}
	}

	count, err := s.notifications.GetUnreadCount(userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.SetCount(ctx, userID, count); err != nil {
			s.logger.Warn("unread cache backfill failed", zap.Uint("user", userID), zap.Error(err))
		}
	}
	return count, nil
}

// MarkRead flips the read flag on a single notification. Only the recipient
// may do this.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, requester uint) error {
	notification, err := s.notifications.GetNotificationByID(notificationID)
	if err != nil {
		return err
	}
	if notification.RecipientID != requester {
		return apperrors.Forbidden("not the notification recipient")
	}
	if err := s.notifications.MarkAsRead(notificationID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, requester)
	return nil
}

// MarkAllRead marks every unread notification of a user as read. Idempotent.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	if err := s.notifications.MarkAllAsRead(userID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("unread cache invalidate failed", zap.Uint("user", userID), zap.Error(err))
	}
}

func (s *NotificationService) enrich(notifications []models.Notification) []EnrichedNotification {
	enriched := make([]EnrichedNotification, len(notifications))
	userCache := make(map[uint]models.UserCompact)

	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		if actor, ok := userCache[n.ActorID]; ok {
			enriched[i].Actor = actor
		} else if user, err := s.users.GetUserByID(n.ActorID); err == nil {
			compact := user.ToCompact()
			userCache[n.ActorID] = compact
			enriched[i].Actor = compact
		} else {
			s.logger.Debug("actor lookup failed during enrichment",
				zap.Uint("actor", n.ActorID), zap.Error(fmt.Errorf("enrich: %w", err)))
		}
	}
	return enriched
}
