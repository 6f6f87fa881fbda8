package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"todoshare/internal/handler"
	"todoshare/internal/model"
	"todoshare/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFriendService struct {
	mock.Mock
}

func (m *MockFriendService) SendRequest(ctx context.Context, requesterID uuid.UUID, email string) (uuid.UUID, error) {
	args := m.Called(ctx, requesterID, email)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockFriendService) Accept(ctx context.Context, userID, friendID uuid.UUID) error {
	return m.Called(ctx, userID, friendID).Error(0)
}

func (m *MockFriendService) Remove(ctx context.Context, userID, friendID uuid.UUID) error {
	return m.Called(ctx, userID, friendID).Error(0)
}

func (m *MockFriendService) Friends(ctx context.Context, userID uuid.UUID) ([]model.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockFriendService) Pending(ctx context.Context, userID uuid.UUID) ([]model.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.User), args.Error(1)
}

type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*model.Group, error) {
	args := m.Called(ctx, ownerID, name, description)
	group := args.Get(0)
	if group == nil {
		return nil, args.Error(1)
	}
	return group.(*model.Group), args.Error(1)
}

func (m *MockGroupService) Get(ctx context.Context, userID, groupID uuid.UUID) (*model.Group, error) {
	args := m.Called(ctx, userID, groupID)
	group := args.Get(0)
	if group == nil {
		return nil, args.Error(1)
	}
	return group.(*model.Group), args.Error(1)
}

func (m *MockGroupService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Group, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockGroupService) AddMember(ctx context.Context, groupID, actorID, userID uuid.UUID) (*model.Group, error) {
	args := m.Called(ctx, groupID, actorID, userID)
	group := args.Get(0)
	if group == nil {
		return nil, args.Error(1)
	}
	return group.(*model.Group), args.Error(1)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockActivityService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func TestFriendHandler(t *testing.T) {
	userID, friendID := uuid.New(), uuid.New()
	r := newRouter(userID)
	friends := new(MockFriendService)
	h := handler.NewFriendHandler(friends)
	r.POST("/friends", h.SendRequest)
	r.POST("/friends/:id/accept", h.Accept)
	r.GET("/friends/pending", h.Pending)

	friends.On("SendRequest", mock.Anything, userID, "bob@example.com").Return(friendID, nil)
	friends.On("SendRequest", mock.Anything, userID, "ghost@example.com").
		Return(uuid.Nil, fmt.Errorf("%w: no user with email ghost@example.com", service.ErrNotFound))
	friends.On("Accept", mock.Anything, userID, friendID).Return(nil)
	friends.On("Pending", mock.Anything, userID).Return([]model.User{{ID: friendID, DisplayName: "Bob"}}, nil)

	resp := performRequest(r, http.MethodPost, "/friends", handler.FriendRequest{Email: "bob@example.com"})
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, friendID.String(), decode[map[string]string](t, resp)["user_id"])

	resp = performRequest(r, http.MethodPost, "/friends", handler.FriendRequest{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = performRequest(r, http.MethodGet, "/friends/pending", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[[]handler.UserResponse](t, resp), 1)

	resp = performRequest(r, http.MethodPost, "/friends/"+friendID.String()+"/accept", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = performRequest(r, http.MethodPost, "/friends/bob/accept", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid user ID format", errorOf(t, resp))
}

func TestGroupHandler(t *testing.T) {
	userID, memberID := uuid.New(), uuid.New()
	r := newRouter(userID)
	groups := new(MockGroupService)
	h := handler.NewGroupHandler(groups)
	r.POST("/groups", h.Create)
	r.POST("/groups/:id/members", h.AddMember)

	group := &model.Group{ID: uuid.New(), Name: "Family", OwnerID: userID, Members: []uuid.UUID{userID}}
	groups.On("Create", mock.Anything, userID, "Family", "").Return(group, nil)
	groups.On("AddMember", mock.Anything, group.ID, userID, memberID).
		Return(nil, fmt.Errorf("%w: only the group owner can add members", service.ErrPermissionDenied))

	resp := performRequest(r, http.MethodPost, "/groups", handler.GroupRequest{Name: "Family"})
	require.Equal(t, http.StatusCreated, resp.Code)
	body := decode[handler.GroupResponse](t, resp)
	assert.Equal(t, []string{userID.String()}, body.Members)
	assert.Equal(t, []string{}, body.Tasks)

	resp = performRequest(r, http.MethodPost, "/groups", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = performRequest(r, http.MethodPost, "/groups/"+group.ID.String()+"/members",
		handler.GroupMemberRequest{UserID: memberID.String()})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestNotificationHandler(t *testing.T) {
	userID := uuid.New()
	r := newRouter(userID)
	activity := new(MockActivityService)
	h := handler.NewNotificationHandler(activity)
	r.GET("/notifications", h.GetAll)
	r.GET("/notifications/unread-count", h.UnreadCount)
	r.POST("/notifications/:id/read", h.MarkRead)

	shared := "s1"
	eventID := uuid.New()
	activity.On("List", mock.Anything, userID, true).Return([]model.Notification{
		{ID: eventID, Type: model.NotificationTaskShared, SharedTaskID: &shared, Message: "Ann shared a task with you: Buy milk"},
	}, nil)
	activity.On("UnreadCount", mock.Anything, userID).Return(int64(3), nil)
	activity.On("MarkRead", mock.Anything, userID, eventID).Return(service.ErrNotFound)

	resp := performRequest(r, http.MethodGet, "/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	events := decode[[]handler.NotificationResponse](t, resp)
	require.Len(t, events, 1)
	assert.Equal(t, model.NotificationTaskShared, events[0].Type)
	assert.Equal(t, "s1", *events[0].SharedTaskID)
	assert.Nil(t, events[0].TaskID)

	resp = performRequest(r, http.MethodGet, "/notifications/unread-count", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, map[string]int{"unread": 3}, decode[map[string]int](t, resp))

	resp = performRequest(r, http.MethodPost, "/notifications/"+eventID.String()+"/read", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
