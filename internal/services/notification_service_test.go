package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nordinkamal/sochel/internal/models"
	"github.com/nordinkamal/sochel/internal/repositories"
	"github.com/nordinkamal/sochel/pkg/apperrors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNotificationRepo struct {
	mu            sync.Mutex
	nextID        uint
	notifications []*models.Notification
}

func (f *fakeNotificationRepo) CreateNotification(notification *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	notification.ID = f.nextID
	notification.CreatedAt = time.Now()
	f.notifications = append(f.notifications, notification)
	return nil
}

func (f *fakeNotificationRepo) GetNotificationByID(id uint) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id {
			clone := *n
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("notification")
}

func (f *fakeNotificationRepo) GetByRecipientID(recipientID uint, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotificationRepo) GetUnreadCount(recipientID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAsRead(notificationID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == notificationID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(recipientID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func newNotificationFixture(t *testing.T, cache *repositories.UnreadCache) (*NotificationService, *fakeNotificationRepo) {
	t.Helper()
	users := newFakeUserRepo(
		&models.User{ID: 1, Username: "alice", ProfilePicture: "alice.png"},
		&models.User{ID: 2, Username: "bob"},
	)
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, users, cache, zap.NewNop())
	return svc, repo
}

func TestEmitRecordsNotification(t *testing.T) {
	svc, repo := newNotificationFixture(t, nil)

	svc.Emit(2, models.NotificationFollow, 1, "")

	assert.Eventually(t, func() bool {
		count, err := repo.GetUnreadCount(2)
		return err == nil && count == 1
	}, time.Second, 10*time.Millisecond)
}

func TestEmitDropsUnknownType(t *testing.T) {
	svc, repo := newNotificationFixture(t, nil)

	svc.Emit(2, "poke", 1, "")

	// Give the (nonexistent) write a moment, then confirm nothing landed.
	time.Sleep(50 * time.Millisecond)
	count, err := repo.GetUnreadCount(2)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListForEnrichesActor(t *testing.T) {
	svc, repo := newNotificationFixture(t, nil)

	require.NoError(t, repo.CreateNotification(&models.Notification{
		Type: models.NotificationLike, ActorID: 1, RecipientID: 2, RelatedPost: "abc",
	}))

	notifications, unread, err := svc.ListFor(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	require.Len(t, notifications, 1)
	assert.Equal(t, "alice", notifications[0].Actor.Username)
	assert.Equal(t, "alice.png", notifications[0].Actor.ProfilePicture)
	assert.Equal(t, "abc", notifications[0].RelatedPost)
}

func TestMarkReadRecipientOnly(t *testing.T) {
	svc, repo := newNotificationFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, repo.CreateNotification(&models.Notification{
		Type: models.NotificationComment, ActorID: 1, RecipientID: 2,
	}))

	err := svc.MarkRead(ctx, 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, svc.MarkRead(ctx, 1, 2))
	count, err := svc.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Repeating is harmless.
	require.NoError(t, svc.MarkRead(ctx, 1, 2))
}

func TestMarkAllRead(t *testing.T) {
	svc, repo := newNotificationFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateNotification(&models.Notification{
			Type: models.NotificationMessage, ActorID: 1, RecipientID: 2,
		}))
	}

	require.NoError(t, svc.MarkAllRead(ctx, 2))
	count, err := svc.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnreadCountUsesCache(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	cache := repositories.NewUnreadCache(client)

	svc, repo := newNotificationFixture(t, cache)
	ctx := context.Background()

	require.NoError(t, repo.CreateNotification(&models.Notification{
		Type: models.NotificationLike, ActorID: 1, RecipientID: 2,
	}))

	// First read misses the cache and backfills it from the table.
	count, err := svc.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// A new emit bumps the warm cache.
	svc.Emit(2, models.NotificationFollow, 1, "")
	assert.Eventually(t, func() bool {
		count, err := svc.UnreadCount(ctx, 2)
		return err == nil && count == 2
	}, time.Second, 10*time.Millisecond)

	// Mark-all invalidates; the next read re-derives zero from the table.
	require.NoError(t, svc.MarkAllRead(ctx, 2))
	count, err = svc.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, count)
}
