package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	StatusWaiting    TaskStatus = "waiting"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityNone   TaskPriority = "none"
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities from high (0) to none (3). Unknown values rank last.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	case PriorityNone:
		return 3
	}
	return 4
}

type NotificationKind string

const (
	NotifySameDay    NotificationKind = "same-day"
	NotifyDaysBefore NotificationKind = "days-before"
)

// NotificationPolicy describes when to remind the owner about a task.
type NotificationPolicy struct {
	Kind       NotificationKind `json:"kind"`
	Hour       int              `json:"hour"`
	Minute     int              `json:"minute"`
	DaysBefore int              `json:"days_before,omitempty"`
}

func (p NotificationPolicy) Valid() bool {
	if p.Kind != NotifySameDay && p.Kind != NotifyDaysBefore {
		return false
	}
	if p.Hour < 0 || p.Hour > 23 || p.Minute < 0 || p.Minute > 59 {
		return false
	}
	return p.DaysBefore >= 0
}

type Task struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"`
	OwnerID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	Name           string       `gorm:"not null"`
	Description    string
	ResolutionNote string
	Status         TaskStatus   `gorm:"not null"`
	Priority       TaskPriority `gorm:"not null"`
	DueDate        time.Time
	Note           string
	IsShared       bool `gorm:"not null;default:false"`

	// Flattened notification policy; NotifyKind is empty when the task has none.
	NotifyKind       NotificationKind
	NotifyHour       int
	NotifyMinute     int
	NotifyDaysBefore int

	CreatedAt time.Time
	UpdatedAt time.Time

	SharedWith []uuid.UUID `gorm:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Task) Policy() *NotificationPolicy {
	if t.NotifyKind == "" {
		return nil
	}
	return &NotificationPolicy{
		Kind:       t.NotifyKind,
		Hour:       t.NotifyHour,
		Minute:     t.NotifyMinute,
		DaysBefore: t.NotifyDaysBefore,
	}
}

func (t *Task) SetPolicy(p *NotificationPolicy) {
	if p == nil {
		t.NotifyKind, t.NotifyHour, t.NotifyMinute, t.NotifyDaysBefore = "", 0, 0, 0
		return
	}
	t.NotifyKind = p.Kind
	t.NotifyHour = p.Hour
	t.NotifyMinute = p.Minute
	t.NotifyDaysBefore = p.DaysBefore
}

// TaskShare is one entry of a task's sharedWith set.
type TaskShare struct {
	TaskID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
}
