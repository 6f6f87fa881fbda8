package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	Description string
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`

	Members []uuid.UUID `gorm:"-"`
	Tasks   []string    `gorm:"-"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

type GroupMember struct {
	GroupID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// GroupTask lists a shared task on the group it was shared with.
type GroupTask struct {
	GroupID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	SharedTaskID string    `gorm:"primaryKey;index"`
}
