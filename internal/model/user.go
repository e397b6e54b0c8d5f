package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxUsernameLength bounds usernames in characters on every store.
const MaxUsernameLength = 255

// User represents a registered principal. Each user references exactly one role.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(255) COLLATE utf8mb4_bin;uniqueIndex;not null"` // case-sensitive, like the Redis and memory stores
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	RoleID       uuid.UUID `json:"role_id" gorm:"type:char(36);not null;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
