package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"todoshare/internal/model"
)

type GroupStore interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]model.Group, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
}

type GroupService struct {
	groups GroupStore
	users  UserLookup
}

func NewGroupService(groups GroupStore, users UserLookup) *GroupService {
	return &GroupService{groups: groups, users: users}
}

func (s *GroupService) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation("group name is required")
	}

	group := &model.Group{Name: name, Description: description, OwnerID: ownerID}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, writeFailure("create group", err)
	}
	return group, nil
}

// Get returns a group the user belongs to
func (s *GroupService) Get(ctx context.Context, userID, groupID uuid.UUID) (*model.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !containsID(group.Members, userID) {
		return nil, ErrPermissionDenied
	}
	return group, nil
}

func (s *GroupService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Group, error) {
	groups, err := s.groups.ListByMember(ctx, userID)
	if err != nil {
		return nil, fetchFailure("list groups", err)
	}
	return groups, nil
}

// AddMember adds a user to a group. Only the group owner may add members.
func (s *GroupService) AddMember(ctx context.Context, groupID, actorID, userID uuid.UUID) (*model.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != actorID {
		return nil, fmt.Errorf("%w: only the group owner can add members", ErrPermissionDenied)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fetchFailure("get user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	if err := s.groups.AddMember(ctx, groupID, userID); err != nil {
		return nil, writeFailure("add group member", err)
	}
	if !containsID(group.Members, userID) {
		group.Members = append(group.Members, userID)
	}
	return group, nil
}

func (s *GroupService) load(ctx context.Context, groupID uuid.UUID) (*model.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, fetchFailure("get group", err)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	return group, nil
}
