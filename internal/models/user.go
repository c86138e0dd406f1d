package models

import (
	"time"
)

// User represents a registered account. Points are mutated only by the
// trade service; users are never deleted.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Username     *string   `gorm:"uniqueIndex" json:"username,omitempty"`
	PasswordHash string    `gorm:"size:128" json:"-"`
	Points       int       `gorm:"not null;default:100" json:"points"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// DisplayName returns the username when set, otherwise the email.
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.Email
}
