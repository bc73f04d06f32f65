package models

import "gorm.io/gorm"

// User is the locally-stored projection of an identity owned by the external
// identity collaborator. Credentials never live here.
type User struct {
	gorm.Model     `json:"-"`
	ID             uint   `json:"id" gorm:"primaryKey"`
	Username       string `json:"username" gorm:"uniqueIndex"`
	Email          string `json:"email" gorm:"uniqueIndex"`
	ProfilePicture string `json:"profile_picture"`
}

// UserCompact is the profile summary embedded in notifications, messages and
// conversation listings.
type UserCompact struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
}

// ToCompact returns the compact summary of the user
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
	}
}
