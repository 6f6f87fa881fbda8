// Package platform is the device notification service: per-user permission,
// one-shot alerts correlated to a task, and the dispatcher that fires them.
package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"todoshare/internal/model"
	"todoshare/internal/repository"
)

// Payload is the content of an alert; TaskID correlates it to a task.
type Payload struct {
	TaskID uuid.UUID
	Title  string
	Body   string
}

// Scheduled is an alert that has not fired yet
type Scheduled struct {
	Handle  string
	FireAt  time.Time
	Payload Payload
}

type Service struct {
	users  *repository.UserRepository
	alerts *repository.AlertRepository
}

func NewService(users *repository.UserRepository, alerts *repository.AlertRepository) *Service {
	return &Service{users: users, alerts: alerts}
}

// RequestPermission reports whether the user accepts notifications
func (s *Service) RequestPermission(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, fmt.Errorf("user %s not found", userID)
	}
	return user.NotificationsEnabled, nil
}

// ScheduleOneShot registers an alert firing once at fireAt and returns its handle
func (s *Service) ScheduleOneShot(ctx context.Context, userID uuid.UUID, fireAt time.Time, payload Payload) (string, error) {
	alert := &model.DeviceAlert{
		Handle: uuid.NewString(),
		UserID: userID,
		TaskID: payload.TaskID,
		FireAt: fireAt,
		Title:  payload.Title,
		Body:   payload.Body,
		Status: model.AlertPending,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return "", err
	}
	return alert.Handle, nil
}

func (s *Service) Cancel(ctx context.Context, handle string) error {
	return s.alerts.Cancel(ctx, handle)
}

func (s *Service) ListScheduled(ctx context.Context, userID uuid.UUID) ([]Scheduled, error) {
	alerts, err := s.alerts.Pending(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Scheduled, len(alerts))
	for i, a := range alerts {
		out[i] = Scheduled{
			Handle:  a.Handle,
			FireAt:  a.FireAt,
			Payload: Payload{TaskID: a.TaskID, Title: a.Title, Body: a.Body},
		}
	}
	return out, nil
}
