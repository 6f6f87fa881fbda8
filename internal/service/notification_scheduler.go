package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"todoshare/internal/model"
	"todoshare/internal/platform"
)

// DefaultReminderHour is used when a task has no notification policy.
const DefaultReminderHour = 9

const permissionAdvisory = "Notifications are turned off. Enable them to be reminded about your tasks."

type Platform interface {
	RequestPermission(ctx context.Context, userID uuid.UUID) (bool, error)
	ScheduleOneShot(ctx context.Context, userID uuid.UUID, fireAt time.Time, payload platform.Payload) (string, error)
	Cancel(ctx context.Context, handle string) error
	ListScheduled(ctx context.Context, userID uuid.UUID) ([]platform.Scheduled, error)
}

type ReminderStore interface {
	GetScheduled(ctx context.Context, userID, taskID uuid.UUID) (*model.ScheduledNotification, error)
	SaveScheduled(ctx context.Context, rec *model.ScheduledNotification) error
	MarkCanceled(ctx context.Context, userID, taskID uuid.UUID, at time.Time) error
}

// Reminder is the outcome of scheduling. An empty NotificationID means
// nothing was scheduled; Advisory is set the first time a user is found to
// have notifications turned off.
type Reminder struct {
	NotificationID string     `json:"notification_id,omitempty"`
	FireAt         *time.Time `json:"fire_at,omitempty"`
	Advisory       string     `json:"advisory,omitempty"`
}

type NotificationScheduler struct {
	platform Platform
	records  ReminderStore
	loc      *time.Location
	now      func() time.Time

	mu      sync.Mutex
	advised map[uuid.UUID]bool
}

func NewNotificationScheduler(p Platform, records ReminderStore, loc *time.Location) *NotificationScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationScheduler{
		platform: p,
		records:  records,
		loc:      loc,
		now:      time.Now,
		advised:  make(map[uuid.UUID]bool),
	}
}

// ComputeFireTime returns when the reminder for a task due at dueDate should
// fire: policy days before the due date (same day otherwise) at the policy's
// time of day, or at DefaultReminderHour without a policy.
func ComputeFireTime(dueDate time.Time, policy *model.NotificationPolicy) time.Time {
	y, m, d := dueDate.Date()
	hour, minute := DefaultReminderHour, 0
	if policy != nil {
		if policy.Kind == model.NotifyDaysBefore && policy.DaysBefore > 0 {
			d -= policy.DaysBefore
		}
		hour, minute = policy.Hour, policy.Minute
	}
	return time.Date(y, m, d, hour, minute, 0, 0, dueDate.Location())
}

// Schedule replaces the task's reminder. The previous one is always canceled;
// nothing new is scheduled when the user has notifications turned off or the
// fire time is not in the future.
func (s *NotificationScheduler) Schedule(ctx context.Context, userID uuid.UUID, task *model.Task) (Reminder, error) {
	if err := s.Cancel(ctx, userID, task.ID); err != nil {
		return Reminder{}, err
	}

	granted, err := s.platform.RequestPermission(ctx, userID)
	if err != nil {
		return Reminder{}, fetchFailure("request notification permission", err)
	}
	if !granted {
		return Reminder{Advisory: s.advise(userID)}, nil
	}

	now := s.now().In(s.loc)
	fireAt := ComputeFireTime(task.DueDate.In(s.loc), task.Policy())
	if !fireAt.After(now) {
		return Reminder{}, nil
	}

	handle, err := s.platform.ScheduleOneShot(ctx, userID, fireAt, platform.Payload{
		TaskID: task.ID,
		Title:  "Task due",
		Body:   fmt.Sprintf("%s is due %s", task.Name, relativeDay(task.DueDate.In(s.loc), now)),
	})
	if err != nil {
		return Reminder{}, writeFailure("schedule alert", err)
	}

	rec := &model.ScheduledNotification{
		UserID:                 userID,
		TaskID:                 task.ID,
		PlatformNotificationID: handle,
		ScheduledFor:           fireAt,
		TaskName:               task.Name,
		Status:                 model.ReminderScheduled,
		CreatedAt:              now,
	}
	if err := s.records.SaveScheduled(ctx, rec); err != nil {
		return Reminder{}, writeFailure("save reminder", err)
	}

	log.Printf("🔔 Reminder %s for task %s at %s", handle, task.ID, fireAt.Format(time.RFC3339))
	return Reminder{NotificationID: handle, FireAt: &fireAt}, nil
}

// Cancel cancels the task's recorded reminder, then any pending alert still
// correlated to the task in case the record and the platform disagree.
func (s *NotificationScheduler) Cancel(ctx context.Context, userID, taskID uuid.UUID) error {
	rec, err := s.records.GetScheduled(ctx, userID, taskID)
	if err != nil {
		return fetchFailure("get reminder", err)
	}
	if rec != nil && rec.Status == model.ReminderScheduled {
		if err := s.platform.Cancel(ctx, rec.PlatformNotificationID); err != nil {
			return writeFailure("cancel alert", err)
		}
		if err := s.records.MarkCanceled(ctx, userID, taskID, s.now()); err != nil {
			return writeFailure("mark reminder canceled", err)
		}
	}

	pending, err := s.platform.ListScheduled(ctx, userID)
	if err != nil {
		return fetchFailure("list scheduled alerts", err)
	}
	for _, alert := range pending {
		if alert.Payload.TaskID != taskID {
			continue
		}
		if err := s.platform.Cancel(ctx, alert.Handle); err != nil {
			return writeFailure("cancel alert", err)
		}
	}
	return nil
}

// Get returns the reminder record of a task
func (s *NotificationScheduler) Get(ctx context.Context, userID, taskID uuid.UUID) (*model.ScheduledNotification, error) {
	rec, err := s.records.GetScheduled(ctx, userID, taskID)
	if err != nil {
		return nil, fetchFailure("get reminder", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: no reminder for task %s", ErrNotFound, taskID)
	}
	return rec, nil
}

func (s *NotificationScheduler) advise(userID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.advised[userID] {
		return ""
	}
	s.advised[userID] = true
	return permissionAdvisory
}

func relativeDay(due, now time.Time) string {
	dy, dm, dd := due.Date()
	ny, nm, nd := now.Date()
	day := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	switch {
	case day.Equal(today):
		return "today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "tomorrow"
	}
	return "on " + due.Format("Jan 2, 2006")
}
