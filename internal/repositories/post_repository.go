package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/nordinkamal/sochel/internal/models"
	"github.com/nordinkamal/sochel/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations. Likes and
// comments are arrays inside the post document; every mutation below is a
// single-document update, so concurrent writers cannot lose each other's
// changes.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	GetPostsByAuthor(ctx context.Context, author uint, skip, limit int64) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
	DeletePostsByAuthor(ctx context.Context, author uint) (int64, error)
	AddLike(ctx context.Context, postID string, userID uint) (bool, error)
	RemoveLike(ctx context.Context, postID string, userID uint) (bool, error)
	PushComment(ctx context.Context, postID string, comment models.Comment) error
	PullComment(ctx context.Context, postID string, commentID primitive.ObjectID) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// A malformed hex id cannot reference any document.
func postObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NotFound("post")
	}
	return objID, nil
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []uint{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := postObjectID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("post")
		}
		return nil, apperrors.Storage(err)
	}
	return &post, nil
}

// GetAllPosts retrieves posts newest first with pagination
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return r.findPosts(ctx, bson.D{}, skip, limit)
}

// GetPostsByAuthor retrieves a single author's posts newest first
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, author uint, skip, limit int64) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"author": author}, skip, limit)
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter interface{}, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, apperrors.Storage(err)
	}
	return posts, nil
}

// DeletePost deletes a post by ID. Embedded likes and comments go with the
// document, so no orphan cleanup is needed.
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := postObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return apperrors.Storage(err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("post")
	}
	return nil
}

// DeletePostsByAuthor removes every post authored by the given user
func (r *MongoPostRepository) DeletePostsByAuthor(ctx context.Context, author uint) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"author": author})
	if err != nil {
		return 0, apperrors.Storage(err)
	}
	return res.DeletedCount, nil
}

// AddLike inserts userID at the front of the likes array, guarded so a user
// appears at most once. Returns false when the user had already liked the
// post (or the post vanished); the caller disambiguates via RemoveLike.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID string, userID uint) (bool, error) {
	objID, err := postObjectID(postID)
	if err != nil {
		return false, err
	}

	filter := bson.M{"_id": objID, "likes": bson.M{"$ne": userID}}
	update := bson.M{"$push": bson.M{"likes": bson.M{"$each": []uint{userID}, "$position": 0}}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, apperrors.Storage(err)
	}
	return res.ModifiedCount > 0, nil
}

// RemoveLike pulls userID from the likes array. Returns whether a like was
// actually removed.
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID string, userID uint) (bool, error) {
	objID, err := postObjectID(postID)
	if err != nil {
		return false, err
	}

	filter := bson.M{"_id": objID, "likes": userID}
	update := bson.M{"$pull": bson.M{"likes": userID}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, apperrors.Storage(err)
	}
	return res.ModifiedCount > 0, nil
}

// PushComment inserts a comment at the front of the comments array
func (r *MongoPostRepository) PushComment(ctx context.Context, postID string, comment models.Comment) error {
	objID, err := postObjectID(postID)
	if err != nil {
		return err
	}

	update := bson.M{"$push": bson.M{"comments": bson.M{"$each": []models.Comment{comment}, "$position": 0}}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return apperrors.Storage(err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("post")
	}
	return nil
}

// PullComment removes the comment with the given id from the post
func (r *MongoPostRepository) PullComment(ctx context.Context, postID string, commentID primitive.ObjectID) error {
	objID, err := postObjectID(postID)
	if err != nil {
		return err
	}

	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return apperrors.Storage(err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("post")
	}
	if res.ModifiedCount == 0 {
		return apperrors.NotFound("comment")
	}
	return nil
}
