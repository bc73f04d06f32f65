package services

import (
	"context"
	"sync"
	"time"

	"github.com/nordinkamal/sochel/internal/models"
	"github.com/nordinkamal/sochel/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) CreateUser(user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

func (f *fakeUserRepo) GetUsersByIDs(ids []uint) ([]models.User, error) {
	var users []models.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) GetUsers(excludeID uint, limit int) ([]models.User, error) {
	var users []models.User
	for _, user := range f.users {
		if user.ID != excludeID && len(users) < limit {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) UpdateUser(user *models.User) error {
	f.users[user.ID] = user
	return nil
}

type followEdge struct {
	follower  uint
	following uint
}

type fakeFollowRepo struct {
	edges map[followEdge]bool
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{edges: make(map[followEdge]bool)}
}

func (f *fakeFollowRepo) CreateFollow(follow *models.Follow) error {
	f.edges[followEdge{follow.FollowerID, follow.FollowingID}] = true
	return nil
}

func (f *fakeFollowRepo) DeleteFollow(followerID, followingID uint) error {
	edge := followEdge{followerID, followingID}
	if !f.edges[edge] {
		return apperrors.NotFound("follow relationship")
	}
	delete(f.edges, edge)
	return nil
}

func (f *fakeFollowRepo) IsFollowing(followerID, followingID uint) (bool, error) {
	return f.edges[followEdge{followerID, followingID}], nil
}

func (f *fakeFollowRepo) GetFollowers(userID uint) ([]models.User, error) {
	return nil, nil
}

func (f *fakeFollowRepo) GetFollowing(userID uint) ([]models.User, error) {
	return nil, nil
}

func (f *fakeFollowRepo) GetFollowersCount(userID uint) (int64, error) {
	var count int64
	for edge := range f.edges {
		if edge.following == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeFollowRepo) GetFollowingCount(userID uint) (int64, error) {
	var count int64
	for edge := range f.edges {
		if edge.follower == userID {
			count++
		}
	}
	return count, nil
}

type fakePostRepo struct {
	posts map[string]*models.Post
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	repo := &fakePostRepo{posts: make(map[string]*models.Post)}
	for _, p := range posts {
		repo.posts[p.ID.Hex()] = p
	}
	return repo
}

func (f *fakePostRepo) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []uint{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	f.posts[post.ID.Hex()] = post
	return nil
}

func (f *fakePostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post")
	}
	clone := *post
	clone.Likes = append([]uint(nil), post.Likes...)
	clone.Comments = append([]models.Comment(nil), post.Comments...)
	return &clone, nil
}

func (f *fakePostRepo) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	for _, p := range f.posts {
		posts = append(posts, *p)
	}
	return posts, nil
}

func (f *fakePostRepo) GetPostsByAuthor(ctx context.Context, author uint, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	for _, p := range f.posts {
		if p.Author == author {
			posts = append(posts, *p)
		}
	}
	return posts, nil
}

func (f *fakePostRepo) DeletePost(ctx context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return apperrors.NotFound("post")
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) DeletePostsByAuthor(ctx context.Context, author uint) (int64, error) {
	var deleted int64
	for id, p := range f.posts {
		if p.Author == author {
			delete(f.posts, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakePostRepo) AddLike(ctx context.Context, postID string, userID uint) (bool, error) {
	post, ok := f.posts[postID]
	if !ok {
		return false, nil
	}
	for _, id := range post.Likes {
		if id == userID {
			return false, nil
		}
	}
	post.Likes = append([]uint{userID}, post.Likes...)
	return true, nil
}

func (f *fakePostRepo) RemoveLike(ctx context.Context, postID string, userID uint) (bool, error) {
	post, ok := f.posts[postID]
	if !ok {
		return false, nil
	}
	for i, id := range post.Likes {
		if id == userID {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePostRepo) PushComment(ctx context.Context, postID string, comment models.Comment) error {
	post, ok := f.posts[postID]
	if !ok {
		return apperrors.NotFound("post")
	}
	post.Comments = append([]models.Comment{comment}, post.Comments...)
	return nil
}

func (f *fakePostRepo) PullComment(ctx context.Context, postID string, commentID primitive.ObjectID) error {
	post, ok := f.posts[postID]
	if !ok {
		return apperrors.NotFound("post")
	}
	for i, c := range post.Comments {
		if c.ID == commentID {
			post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("comment")
}

type emittedNotification struct {
	recipient   uint
	notifType   string
	actor       uint
	relatedPost string
}

type fakeNotifier struct {
	mu      sync.Mutex
	emitted []emittedNotification
}

func (f *fakeNotifier) Emit(recipient uint, notificationType string, actor uint, relatedPost string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitted = append(f.emitted, emittedNotification{recipient, notificationType, actor, relatedPost})
}

func (f *fakeNotifier) all() []emittedNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emittedNotification(nil), f.emitted...)
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	events   map[uint][]models.WSEvent
	channels map[uint]int
}

func newFakeBroadcaster(channels map[uint]int) *fakeBroadcaster {
	return &fakeBroadcaster{events: make(map[uint][]models.WSEvent), channels: channels}
}

func (f *fakeBroadcaster) DeliverToUser(userID uint, event models.WSEvent) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[userID] = append(f.events[userID], event)
	return f.channels[userID]
}

func (f *fakeBroadcaster) eventsFor(userID uint) []models.WSEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.WSEvent(nil), f.events[userID]...)
}

type fakeMessageRepo struct {
	messages []*models.Message
}

func (f *fakeMessageRepo) InsertMessage(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeMessageRepo) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	for _, m := range f.messages {
		if m.ID.Hex() == id {
			clone := *m
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("message")
}

func (f *fakeMessageRepo) DeleteMessage(ctx context.Context, id string) error {
	for i, m := range f.messages {
		if m.ID.Hex() == id {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("message")
}

func (f *fakeMessageRepo) GetHistory(ctx context.Context, userA, userB uint) ([]models.Message, error) {
	var history []models.Message
	for _, m := range f.messages {
		if (m.Sender == userA && m.Recipient == userB) || (m.Sender == userB && m.Recipient == userA) {
			history = append(history, *m)
		}
	}
	return history, nil
}

func (f *fakeMessageRepo) GetPartnerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var partners []uint
	seen := make(map[uint]bool)
	for i := len(f.messages) - 1; i >= 0; i-- {
		m := f.messages[i]
		other := uint(0)
		switch userID {
		case m.Sender:
			other = m.Recipient
		case m.Recipient:
			other = m.Sender
		default:
			continue
		}
		if other != userID && !seen[other] {
			seen[other] = true
			partners = append(partners, other)
		}
	}
	return partners, nil
}
