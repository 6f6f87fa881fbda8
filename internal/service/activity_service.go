package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"todoshare/internal/model"
	"todoshare/internal/repository"
)

type ActivityStore interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

// ActivityService reads the per-user notification log
type ActivityService struct {
	store ActivityStore
}

func NewActivityService(store ActivityStore) *ActivityService {
	return &ActivityService{store: store}
}

func (s *ActivityService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	events, err := s.store.List(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fetchFailure("list notifications", err)
	}
	return events, nil
}

func (s *ActivityService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fetchFailure("count unread notifications", err)
	}
	return count, nil
}

func (s *ActivityService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.store.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return ErrNotFound
		}
		return writeFailure("mark notification read", err)
	}
	return nil
}
