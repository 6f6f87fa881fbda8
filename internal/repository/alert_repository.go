package repository

import (
	"context"
	"time"

	"todoshare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *model.DeviceAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// Cancel marks a pending alert as canceled. Unknown or already fired handles
// are ignored.
func (r *AlertRepository) Cancel(ctx context.Context, handle string) error {
	return r.db.WithContext(ctx).
		Model(&model.DeviceAlert{}).
		Where("handle = ? AND status = ?", handle, model.AlertPending).
		Update("status", model.AlertCanceled).Error
}

// Pending returns the user's alerts that have not fired yet
func (r *AlertRepository) Pending(ctx context.Context, userID uuid.UUID) ([]model.DeviceAlert, error) {
	var alerts []model.DeviceAlert
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.AlertPending).
		Order("fire_at").
		Find(&alerts).Error
	return alerts, err
}

// Due returns pending alerts whose fire time has passed
func (r *AlertRepository) Due(ctx context.Context, now time.Time, limit int) ([]model.DeviceAlert, error) {
	var alerts []model.DeviceAlert
	err := r.db.WithContext(ctx).
		Where("status = ? AND fire_at <= ?", model.AlertPending, now).
		Order("fire_at").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}

// Deliver marks an alert delivered and appends the matching reminder event.
// It reports false when the alert was canceled or delivered concurrently.
func (r *AlertRepository) Deliver(ctx context.Context, alert *model.DeviceAlert, at time.Time) (bool, error) {
	delivered := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.DeviceAlert{}).
			Where("handle = ? AND status = ?", alert.Handle, model.AlertPending).
			Updates(map[string]any{"status": model.AlertDelivered, "delivered_at": at})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		taskID := alert.TaskID
		event := model.Notification{
			UserID:  alert.UserID,
			Type:    model.NotificationTaskReminder,
			TaskID:  &taskID,
			Message: alert.Body,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		delivered = true
		return nil
	})
	return delivered, err
}
