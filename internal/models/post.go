package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a post document stored in MongoDB. Likes and comments are child
// collections of the post aggregate and are only ever mutated through
// single-document updates, which is what keeps a post and its social metadata
// atomically visible.
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Author    uint               `json:"author" bson:"author"`
	Content   string             `json:"content" bson:"content"`
	Image     string             `json:"image,omitempty" bson:"image,omitempty"`
	Likes     []uint             `json:"likes" bson:"likes"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Comment is a subdocument embedded in a post, newest first.
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// CreatePostRequest defines the request body for creating a new post. The
// image URI, when present, comes from the external asset-store collaborator.
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
	Image   string `json:"image,omitempty" validate:"omitempty,url"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}
