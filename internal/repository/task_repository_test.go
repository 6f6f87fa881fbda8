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

func newTask(ownerID uuid.UUID, name string, status model.TaskStatus, due time.Time) *model.Task {
	return &model.Task{
		OwnerID:  ownerID,
		Name:     name,
		Status:   status,
		Priority: model.PriorityNone,
		DueDate:  due,
	}
}

func TestTaskRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTaskRepository(db)
	owner := testutil.CreateUser(t, db, "owner@example.com", "Owner")
	ctx := context.Background()

	task := newTask(owner.ID, "Write report", model.StatusWaiting, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	task.SetPolicy(&model.NotificationPolicy{Kind: model.NotifyDaysBefore, Hour: 9, Minute: 30, DaysBefore: 2})
	require.NoError(t, repo.Create(ctx, task))
	assert.NotEqual(t, uuid.Nil, task.ID)

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Name)
	assert.Equal(t, model.StatusWaiting, got.Status)
	assert.True(t, got.DueDate.Equal(task.DueDate))
	assert.Equal(t, task.Policy(), got.Policy())
	assert.False(t, got.IsShared)
}

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTaskRepository(db)

	task, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, task)
}

func TestTaskRepository_ListByOwner_OrdersByDueDate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTaskRepository(db)
	owner := testutil.CreateUser(t, db, "owner@example.com", "Owner")
	other := testutil.CreateUser(t, db, "other@example.com", "Other")
	ctx := context.Background()
	base := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newTask(owner.ID, "later", model.StatusInProgress, base.AddDate(0, 0, 2))))
	require.NoError(t, repo.Create(ctx, newTask(owner.ID, "sooner", model.StatusInProgress, base)))
	require.NoError(t, repo.Create(ctx, newTask(other.ID, "not mine", model.StatusInProgress, base)))

	tasks, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "sooner", tasks[0].Name)
	assert.Equal(t, "later", tasks[1].Name)
}

func TestTaskRepository_ListByStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTaskRepository(db)
	owner := testutil.CreateUser(t, db, "owner@example.com", "Owner")
	ctx := context.Background()
	base := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newTask(owner.ID, "old", model.StatusCompleted, base)))
	require.NoError(t, repo.Create(ctx, newTask(owner.ID, "new", model.StatusCompleted, base.AddDate(0, 1, 0))))
	require.NoError(t, repo.Create(ctx, newTask(owner.ID, "open", model.StatusInProgress, base)))

	desc, err := repo.ListByStatus(ctx, owner.ID, model.StatusCompleted, true)
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, "new", desc[0].Name)

	asc, err := repo.ListByStatus(ctx, owner.ID, model.StatusCompleted, false)
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, "old", asc[0].Name)
}

func TestTaskRepository_Update_WritesZeroValues(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTaskRepository(db)
	owner := testutil.CreateUser(t, db, "owner@example.com", "Owner")
	ctx := context.Background()

	task := newTask(owner.ID, "Task", model.StatusInProgress, time.Now())
	task.Note = "remember the receipt"
	task.SetPolicy(&model.NotificationPolicy{Kind: model.NotifySameDay, Hour: 8})
	require.NoError(t, repo.Create(ctx, task))

	task.Note = ""
	task.SetPolicy(nil)
	require.NoError(t, repo.Update(ctx, task))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Note)
	assert.Nil(t, got.Policy())
	assert.Equal(t, owner.ID, got.OwnerID)
}

func TestTaskRepository_Update_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTaskRepository(db)

	task := newTask(uuid.New(), "ghost", model.StatusInProgress, time.Now())
	task.ID = uuid.New()

	assert.ErrorIs(t, repo.Update(context.Background(), task), repository.ErrTaskNotFound)
}

func TestTaskRepository_Delete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTaskRepository(db)
	owner := testutil.CreateUser(t, db, "owner@example.com", "Owner")
	friend := testutil.CreateUser(t, db, "friend@example.com", "Friend")
	ctx := context.Background()

	task := newTask(owner.ID, "Task", model.StatusInProgress, time.Now())
	require.NoError(t, repo.Create(ctx, task))
	require.NoError(t, db.Create(&model.TaskShare{TaskID: task.ID, UserID: friend.ID}).Error)

	require.NoError(t, repo.Delete(ctx, task.ID, false))

	_, err := repo.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Zero(t, count(t, db, &model.TaskShare{}, "task_id = ?", task.ID))

	assert.ErrorIs(t, repo.Delete(ctx, task.ID, false), repository.ErrTaskNotFound)
}
