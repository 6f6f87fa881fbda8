package model

import (
	"time"

	"github.com/google/uuid"
)

// SharedTask is a snapshot of a Task made visible to a user or a group.
// It is not updated when the original task changes.
type SharedTask struct {
	ID             string     `gorm:"primaryKey"`
	OriginalTaskID uuid.UUID  `gorm:"type:uuid;not null;index"`
	SharedBy       uuid.UUID  `gorm:"type:uuid;not null;index"`
	IsGroupTask    bool       `gorm:"not null;default:false"`
	GroupID        *uuid.UUID `gorm:"type:uuid;index"`
	AssignedTo     *uuid.UUID `gorm:"type:uuid;index"`

	Name           string `gorm:"not null"`
	Description    string
	ResolutionNote string
	Status         TaskStatus   `gorm:"not null"`
	Priority       TaskPriority `gorm:"not null"`
	DueDate        time.Time
	Note           string

	CreatedAt time.Time
	UpdatedAt time.Time

	SharedWith []uuid.UUID `gorm:"-"`
}

// SharedTaskMember is both an entry of SharedTask.SharedWith and of the
// member's own sharedTasks list.
type SharedTaskMember struct {
	SharedTaskID string    `gorm:"primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

const (
	ShareTypeUser  = "user"
	ShareTypeGroup = "group"
)
