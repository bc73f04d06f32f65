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

// MessageRepository defines the interface for the durable message log.
// History order is created_at ascending; ObjectIDs are monotonic within the
// process, so insertion order breaks timestamp ties.
type MessageRepository interface {
	InsertMessage(ctx context.Context, message *models.Message) error
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	DeleteMessage(ctx context.Context, id string) error
	GetHistory(ctx context.Context, userA, userB uint) ([]models.Message, error)
	GetPartnerIDs(ctx context.Context, userID uint) ([]uint, error)
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

// InsertMessage persists a new message with a server-side timestamp
func (r *MongoMessageRepository) InsertMessage(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// GetMessageByID retrieves a message by ID
func (r *MongoMessageRepository) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound("message")
	}

	var message models.Message
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("message")
		}
		return nil, apperrors.Storage(err)
	}
	return &message, nil
}

// DeleteMessage hard-deletes a message by ID
func (r *MongoMessageRepository) DeleteMessage(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.NotFound("message")
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return apperrors.Storage(err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("message")
	}
	return nil
}

// GetHistory returns all messages between two users in either direction,
// oldest first.
func (r *MongoMessageRepository) GetHistory(ctx context.Context, userA, userB uint) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": userA, "recipient": userB},
		bson.M{"sender": userB, "recipient": userA},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, apperrors.Storage(err)
	}
	return messages, nil
}

// GetPartnerIDs returns the distinct users the given user has exchanged
// messages with, most recent conversation first.
func (r *MongoMessageRepository) GetPartnerIDs(ctx context.Context, userID uint) ([]uint, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": userID},
		bson.M{"recipient": userID},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	defer cursor.Close(ctx)

	var partners []uint
	seen := make(map[uint]bool)
	for cursor.Next(ctx) {
		var message models.Message
		if err := cursor.Decode(&message); err != nil {
			return nil, apperrors.Storage(err)
		}
		other := message.Sender
		if other == userID {
			other = message.Recipient
		}
		if other != userID && !seen[other] {
			seen[other] = true
			partners = append(partners, other)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.Storage(err)
	}
	return partners, nil
}
