package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTaskShared    NotificationType = "task_shared"
	NotificationTaskCompleted NotificationType = "task_completed"
	NotificationTaskUpdated   NotificationType = "task_updated"
	NotificationTaskReminder  NotificationType = "task_reminder"
	NotificationFriendRequest NotificationType = "friend_request"
)

// Notification is an entry of the per-user activity log.
type Notification struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	ActorID      *uuid.UUID       `gorm:"type:uuid"`
	Type         NotificationType `gorm:"not null"`
	SharedTaskID *string
	TaskID       *uuid.UUID `gorm:"type:uuid"`
	Message      string
	Read         bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

const (
	ReminderScheduled = "scheduled"
	ReminderCanceled  = "canceled"
)

// ScheduledNotification records the device alert scheduled for a task.
// There is at most one per (user, task).
type ScheduledNotification struct {
	UserID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	PlatformNotificationID string    `gorm:"not null"`
	ScheduledFor           time.Time `gorm:"not null"`
	TaskName               string
	Status                 string    `gorm:"not null"`
	CreatedAt              time.Time `gorm:"autoCreateTime"`
	CanceledAt             *time.Time
}

const (
	AlertPending   = "pending"
	AlertDelivered = "delivered"
	AlertCanceled  = "canceled"
)

// DeviceAlert is a one-shot alert held by the platform notification service.
type DeviceAlert struct {
	Handle      string    `gorm:"primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	TaskID      uuid.UUID `gorm:"type:uuid;not null;index"`
	FireAt      time.Time `gorm:"not null;index"`
	Title       string
	Body        string
	Status      string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	DeliveredAt *time.Time
}

// All lists every persisted model, in creation order.
func All() []any {
	return []any{
		&User{}, &Friendship{},
		&Group{}, &GroupMember{}, &GroupTask{},
		&Task{}, &TaskShare{},
		&SharedTask{}, &SharedTaskMember{},
		&Notification{}, &ScheduledNotification{}, &DeviceAlert{},
	}
}
