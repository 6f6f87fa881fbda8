package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email                string    `gorm:"uniqueIndex;not null"`
	HashedPassword       string    `gorm:"not null"`
	DisplayName          string    `gorm:"not null"`
	FirstName            string
	LastName             string
	Birthdate            string
	NotificationsEnabled bool      `gorm:"not null;default:true"`
	CreatedAt            time.Time `gorm:"autoCreateTime"`
	LastActive           *time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Friendship is a directed edge: UserID has FriendID in its friends (accepted)
// or pendingFriends (pending) list.
type Friendship struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	FriendID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status    string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)
