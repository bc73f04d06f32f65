package models

import "time"

// Notification types. "message" is a first-class member of the enumeration,
// emitted by the chat path alongside the graph/content events.
const (
	NotificationFollow  = "follow"
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationMessage = "message"
)

// Notification represents a user notification (PostgreSQL). Rows are
// append-only except for the read flag.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     uint      `json:"actor_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	RelatedPost string    `json:"related_post,omitempty"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// ValidNotificationType reports whether t is a member of the enumeration.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationFollow, NotificationLike, NotificationComment, NotificationMessage:
		return true
	}
	return false
}
