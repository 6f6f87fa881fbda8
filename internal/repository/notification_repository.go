package repository

import (
	"context"
	"errors"
	"time"

	"todoshare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Append adds events to the notification log
func (r *NotificationRepository) Append(ctx context.Context, events ...*model.Notification) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(events).Error
}

// List returns a user's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var events []model.Notification
	err := q.Order("created_at DESC").Find(&events).Error
	return events, err
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// GetScheduled returns the reminder record of a task, or nil if there is none
func (r *NotificationRepository) GetScheduled(ctx context.Context, userID, taskID uuid.UUID) (*model.ScheduledNotification, error) {
	var rec model.ScheduledNotification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveScheduled replaces the reminder record of a task
func (r *NotificationRepository) SaveScheduled(ctx context.Context, rec *model.ScheduledNotification) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"platform_notification_id", "scheduled_for", "task_name", "status", "created_at", "canceled_at",
		}),
	}).Create(rec).Error
}

func (r *NotificationRepository) MarkCanceled(ctx context.Context, userID, taskID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.ScheduledNotification{}).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Updates(map[string]any{"status": model.ReminderCanceled, "canceled_at": at}).Error
}
