package models

import "time"

// Follow is a directed edge in the social graph. The follower/following sets
// of both users are projections of these rows, so the symmetric-set invariant
// is structural rather than maintained by paired writes.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}
