package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nordinkamal/sochel/internal/models"
	"github.com/nordinkamal/sochel/internal/repositories"
	"github.com/nordinkamal/sochel/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// InteractionService enforces the follow/unfollow and like/comment rules
// against the graph and content stores, firing the notifier after each
// qualifying mutation.
type InteractionService struct {
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	posts    repositories.PostRepository
	notifier Notifier
	logger   *zap.Logger
}

// NewInteractionService creates a new InteractionService
func NewInteractionService(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, postRepo repositories.PostRepository, notifier Notifier, logger *zap.Logger) *InteractionService {
	return &InteractionService{
		users:    userRepo,
		follows:  followRepo,
		posts:    postRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// Follow adds a directed edge from actor to target and returns the target's
// updated follower count. Duplicate follows surface as a conflict rather
// than a silent no-op so the caller can observe it.
func (s *InteractionService) Follow(actor, target uint) (int64, error) {
	if actor == target {
		return 0, fmt.Errorf("cannot follow yourself: %w", apperrors.ErrInvalidOperation)
	}

	if _, err := s.users.GetUserByID(actor); err != nil {
		return 0, err
	}
	if _, err := s.users.GetUserByID(target); err != nil {
		return 0, err
	}

	following, err := s.follows.IsFollowing(actor, target)
	if err != nil {
		return 0, err
	}
	if following {
		return 0, fmt.Errorf("already following this user: %w", apperrors.ErrAlreadyExists)
	}

	if err := s.follows.CreateFollow(&models.Follow{FollowerID: actor, FollowingID: target}); err != nil {
		return 0, err
	}

	s.notifier.Emit(target, models.NotificationFollow, actor, "")

	return s.follows.GetFollowersCount(target)
}

// Unfollow removes the edge from actor to target. Removing an absent edge is
// a NotFound, mirroring the duplicate-follow conflict on the way in.
func (s *InteractionService) Unfollow(actor, target uint) error {
	if _, err := s.users.GetUserByID(actor); err != nil {
		return err
	}
	if _, err := s.users.GetUserByID(target); err != nil {
		return err
	}
	return s.follows.DeleteFollow(actor, target)
}

// ToggleLike likes the post if the actor hasn't liked it, unlikes otherwise,
// and returns the resulting likes list. Both branches are guarded
// single-document updates, so concurrent toggles from different actors can't
// lose each other.
func (s *InteractionService) ToggleLike(ctx context.Context, postID string, actor uint) ([]uint, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	removed, err := s.posts.RemoveLike(ctx, postID, actor)
	if err != nil {
		return nil, err
	}
	if !removed {
		added, err := s.posts.AddLike(ctx, postID, actor)
		if err != nil {
			return nil, err
		}
		if added && actor != post.Author {
			s.notifier.Emit(post.Author, models.NotificationLike, actor, postID)
		}
	}

	updated, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return updated.Likes, nil
}

// AddComment prepends a comment to the post and returns the updated sequence
func (s *InteractionService) AddComment(ctx context.Context, postID string, actor uint, text string) ([]models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("comment text must not be empty: %w", apperrors.ErrValidation)
	}

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    actor,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.posts.PushComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	if actor != post.Author {
		s.notifier.Emit(post.Author, models.NotificationComment, actor, postID)
	}

	updated, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return updated.Comments, nil
}

// DeleteComment removes a comment. Allowed for the comment's author and for
// the post's author; anyone else gets a Forbidden.
func (s *InteractionService) DeleteComment(ctx context.Context, postID, commentID string, actor uint) ([]models.Comment, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	objID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return nil, apperrors.NotFound("comment")
	}

	var comment *models.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == objID {
			comment = &post.Comments[i]
			break
		}
	}
	if comment == nil {
		return nil, apperrors.NotFound("comment")
	}

	if comment.UserID != actor && post.Author != actor {
		return nil, apperrors.Forbidden("not the comment or post author")
	}

	if err := s.posts.PullComment(ctx, postID, objID); err != nil {
		return nil, err
	}

	updated, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return updated.Comments, nil
}

// CreatePost creates a post on behalf of its author
func (s *InteractionService) CreatePost(ctx context.Context, author uint, content, image string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("post content must not be empty: %w", apperrors.ErrValidation)
	}
	post := &models.Post{
		Author:  author,
		Content: content,
		Image:   image,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post and, with it, every embedded like and comment
func (s *InteractionService) DeletePost(ctx context.Context, postID string, actor uint) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.Author != actor {
		return apperrors.Forbidden("not the post author")
	}
	return s.posts.DeletePost(ctx, postID)
}

// DeleteAllPosts removes every post the actor has authored
func (s *InteractionService) DeleteAllPosts(ctx context.Context, actor uint) (int64, error) {
	deleted, err := s.posts.DeletePostsByAuthor(ctx, actor)
	if err != nil {
		return 0, err
	}
	s.logger.Info("bulk post delete", zap.Uint("author", actor), zap.Int64("deleted", deleted))
	return deleted, nil
}
