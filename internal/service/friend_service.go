package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"todoshare/internal/model"
	"todoshare/internal/repository"
)

type FriendService struct {
	users   UserStore
	friends FriendStore
	events  EventLog
}

func NewFriendService(users UserStore, friends FriendStore, events EventLog) *FriendService {
	return &FriendService{users: users, friends: friends, events: events}
}

// SendRequest puts the requester on the pending list of the user with the
// given email and returns that user's id.
func (s *FriendService) SendRequest(ctx context.Context, requesterID uuid.UUID, email string) (uuid.UUID, error) {
	target, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return uuid.Nil, fetchFailure("find user by email", err)
	}
	if target == nil {
		return uuid.Nil, fmt.Errorf("%w: no user with email %s", ErrNotFound, email)
	}
	if target.ID == requesterID {
		return uuid.Nil, validation("cannot add yourself as a friend")
	}

	if err := s.friends.AddPending(ctx, target.ID, requesterID); err != nil {
		return uuid.Nil, writeFailure("add friend request", err)
	}

	name := newNameCache(s.users).resolve(ctx, requesterID)
	if err := s.events.Append(ctx, &model.Notification{
		UserID:  target.ID,
		ActorID: &requesterID,
		Type:    model.NotificationFriendRequest,
		Message: fmt.Sprintf("%s sent you a friend request", name),
	}); err != nil {
		log.Printf("⚠️  Failed to record friend request notification: %v", err)
	}
	return target.ID, nil
}

func (s *FriendService) Accept(ctx context.Context, userID, friendID uuid.UUID) error {
	if err := s.friends.Accept(ctx, userID, friendID); err != nil {
		if errors.Is(err, repository.ErrFriendRequestNotFound) {
			return fmt.Errorf("%w: no pending request from %s", ErrNotFound, friendID)
		}
		return writeFailure("accept friend request", err)
	}
	return nil
}

func (s *FriendService) Remove(ctx context.Context, userID, friendID uuid.UUID) error {
	if err := s.friends.Remove(ctx, userID, friendID); err != nil {
		return writeFailure("remove friend", err)
	}
	return nil
}

func (s *FriendService) Friends(ctx context.Context, userID uuid.UUID) ([]model.User, error) {
	users, err := s.friends.Users(ctx, userID, model.FriendshipAccepted)
	if err != nil {
		return nil, fetchFailure("list friends", err)
	}
	return users, nil
}

func (s *FriendService) Pending(ctx context.Context, userID uuid.UUID) ([]model.User, error) {
	users, err := s.friends.Users(ctx, userID, model.FriendshipPending)
	if err != nil {
		return nil, fetchFailure("list pending friends", err)
	}
	return users, nil
}
