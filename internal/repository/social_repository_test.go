package repository_test

import (
	"context"
	"testing"
	"time"

	"todoshare/internal/model"
	"todoshare/internal/repository"
	"todoshare/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRepository_RequestAcceptRemove(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewFriendRepository(db)
	ann := testutil.CreateUser(t, db, "ann@example.com", "Ann")
	bob := testutil.CreateUser(t, db, "bob@example.com", "Bob")
	ctx := context.Background()

	// Bob asks Ann; sending twice is harmless.
	require.NoError(t, repo.AddPending(ctx, ann.ID, bob.ID))
	require.NoError(t, repo.AddPending(ctx, ann.ID, bob.ID))

	pending, err := repo.IDs(ctx, ann.ID, model.FriendshipPending)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, pending)

	require.NoError(t, repo.Accept(ctx, ann.ID, bob.ID))

	annFriends, err := repo.Users(ctx, ann.ID, model.FriendshipAccepted)
	require.NoError(t, err)
	require.Len(t, annFriends, 1)
	assert.Equal(t, bob.ID, annFriends[0].ID)

	bobFriends, err := repo.IDs(ctx, bob.ID, model.FriendshipAccepted)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ann.ID}, bobFriends)

	pending, err = repo.IDs(ctx, ann.ID, model.FriendshipPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, repo.Remove(ctx, bob.ID, ann.ID))
	assert.Zero(t, count(t, db, &model.Friendship{}, ""))
}

func TestFriendRepository_Accept_WithoutRequest(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewFriendRepository(db)
	ann := testutil.CreateUser(t, db, "ann@example.com", "Ann")
	bob := testutil.CreateUser(t, db, "bob@example.com", "Bob")

	err := repo.Accept(context.Background(), ann.ID, bob.ID)

	assert.ErrorIs(t, err, repository.ErrFriendRequestNotFound)
	assert.Zero(t, count(t, db, &model.Friendship{}, ""))
}

func TestGroupRepository_CreateAndMembers(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewGroupRepository(db)
	owner := testutil.CreateUser(t, db, "owner@example.com", "Owner")
	member := testutil.CreateUser(t, db, "member@example.com", "Member")
	ctx := context.Background()

	group := &model.Group{Name: "Family", Description: "home chores", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, group))
	assert.Equal(t, []uuid.UUID{owner.ID}, group.Members)

	require.NoError(t, repo.AddMember(ctx, group.ID, member.ID))
	require.NoError(t, repo.AddMember(ctx, group.ID, member.ID))

	got, err := repo.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Family", got.Name)
	assert.ElementsMatch(t, []uuid.UUID{owner.ID, member.ID}, got.Members)
	assert.Empty(t, got.Tasks)

	groups, err := repo.ListByMember(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)
}

func TestGroupRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewGroupRepository(db)

	group, err := repo.GetByID(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Nil(t, group)
}

func TestNotificationRepository_Log(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewNotificationRepository(db)
	user := testutil.CreateUser(t, db, "user@example.com", "User")
	ctx := context.Background()

	first := &model.Notification{UserID: user.ID, Type: model.NotificationFriendRequest, Message: "first"}
	second := &model.Notification{UserID: user.ID, Type: model.NotificationTaskShared, Message: "second", CreatedAt: time.Now().Add(time.Minute)}
	require.NoError(t, repo.Append(ctx, first, second))
	require.NoError(t, repo.Append(ctx))

	events, err := repo.List(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "second", events[0].Message)

	unread, err := repo.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	require.NoError(t, repo.MarkRead(ctx, user.ID, first.ID))
	events, err = repo.List(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, second.ID, events[0].ID)

	assert.ErrorIs(t, repo.MarkRead(ctx, uuid.New(), second.ID), repository.ErrNotificationNotFound)
}

func TestNotificationRepository_ScheduledRecord(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewNotificationRepository(db)
	user := testutil.CreateUser(t, db, "user@example.com", "User")
	ctx := context.Background()
	taskID := uuid.New()

	rec, err := repo.GetScheduled(ctx, user.ID, taskID)
	require.NoError(t, err)
	assert.Nil(t, rec)

	fireAt := time.Date(2024, 6, 8, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.SaveScheduled(ctx, &model.ScheduledNotification{
		UserID: user.ID, TaskID: taskID, PlatformNotificationID: "h1",
		ScheduledFor: fireAt, TaskName: "Task", Status: model.ReminderScheduled,
	}))
	require.NoError(t, repo.MarkCanceled(ctx, user.ID, taskID, time.Now()))

	rec, err = repo.GetScheduled(ctx, user.ID, taskID)
	require.NoError(t, err)
	assert.Equal(t, model.ReminderCanceled, rec.Status)
	assert.NotNil(t, rec.CanceledAt)

	// Saving again replaces the record.
	require.NoError(t, repo.SaveScheduled(ctx, &model.ScheduledNotification{
		UserID: user.ID, TaskID: taskID, PlatformNotificationID: "h2",
		ScheduledFor: fireAt.AddDate(0, 0, 1), TaskName: "Task", Status: model.ReminderScheduled,
	}))
	rec, err = repo.GetScheduled(ctx, user.ID, taskID)
	require.NoError(t, err)
	assert.Equal(t, "h2", rec.PlatformNotificationID)
	assert.Equal(t, model.ReminderScheduled, rec.Status)
	assert.Nil(t, rec.CanceledAt)
	assert.True(t, rec.ScheduledFor.Equal(fireAt.AddDate(0, 0, 1)))
}

func TestAlertRepository_DueAndDeliver(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAlertRepository(db)
	user := testutil.CreateUser(t, db, "user@example.com", "User")
	ctx := context.Background()
	now := time.Now()

	due := &model.DeviceAlert{Handle: "due", UserID: user.ID, TaskID: uuid.New(), FireAt: now.Add(-time.Minute), Body: "Task is due today", Status: model.AlertPending}
	later := &model.DeviceAlert{Handle: "later", UserID: user.ID, TaskID: uuid.New(), FireAt: now.Add(time.Hour), Status: model.AlertPending}
	canceled := &model.DeviceAlert{Handle: "canceled", UserID: user.ID, TaskID: uuid.New(), FireAt: now.Add(-time.Hour), Status: model.AlertPending}
	for _, a := range []*model.DeviceAlert{due, later, canceled} {
		require.NoError(t, repo.Create(ctx, a))
	}
	require.NoError(t, repo.Cancel(ctx, "canceled"))

	pending, err := repo.Pending(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	alerts, err := repo.Due(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "due", alerts[0].Handle)

	ok, err := repo.Deliver(ctx, &alerts[0], now)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second delivery of the same alert is a no-op.
	ok, err = repo.Deliver(ctx, &alerts[0], now)
	require.NoError(t, err)
	assert.False(t, ok)

	events, err := repository.NewNotificationRepository(db).List(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.NotificationTaskReminder, events[0].Type)
	assert.Equal(t, due.TaskID, *events[0].TaskID)
	assert.Equal(t, "Task is due today", events[0].Message)
}
