package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"todoshare/internal/handler"
	"todoshare/internal/model"
	"todoshare/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, ownerID uuid.UUID, patch service.TaskPatch) (*model.Task, error) {
	args := m.Called(ctx, ownerID, patch)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, ownerID, taskID)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, taskID uuid.UUID, patch service.TaskPatch) (*model.Task, error) {
	args := m.Called(ctx, taskID, patch)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, taskID uuid.UUID, cascade bool) error {
	return m.Called(ctx, taskID, cascade).Error(0)
}

func (m *MockTaskService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskService) ListActive(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskService) ListCompleted(ctx context.Context, ownerID uuid.UUID, asc bool) ([]model.Task, error) {
	args := m.Called(ctx, ownerID, asc)
	return args.Get(0).([]model.Task), args.Error(1)
}

type MockReminderScheduler struct {
	mock.Mock
}

func (m *MockReminderScheduler) Schedule(ctx context.Context, userID uuid.UUID, task *model.Task) (service.Reminder, error) {
	args := m.Called(ctx, userID, task)
	return args.Get(0).(service.Reminder), args.Error(1)
}

func (m *MockReminderScheduler) Cancel(ctx context.Context, userID, taskID uuid.UUID) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

func (m *MockReminderScheduler) Get(ctx context.Context, userID, taskID uuid.UUID) (*model.ScheduledNotification, error) {
	args := m.Called(ctx, userID, taskID)
	rec := args.Get(0)
	if rec == nil {
		return nil, args.Error(1)
	}
	return rec.(*model.ScheduledNotification), args.Error(1)
}

type taskTest struct {
	router    http.Handler
	tasks     *MockTaskService
	reminders *MockReminderScheduler
	sharing   *MockSharingService
	userID    uuid.UUID
}

func setupTaskTest() *taskTest {
	tt := &taskTest{
		tasks:     new(MockTaskService),
		reminders: new(MockReminderScheduler),
		sharing:   new(MockSharingService),
		userID:    uuid.New(),
	}
	r := newRouter(tt.userID)
	h := handler.NewTaskHandler(tt.tasks, tt.reminders, tt.sharing)
	r.POST("/tasks", h.Create)
	r.GET("/tasks", h.GetAll)
	r.GET("/tasks/:id", h.GetByID)
	r.PUT("/tasks/:id", h.Update)
	r.DELETE("/tasks/:id", h.Delete)
	r.GET("/tasks/:id/reminder", h.Reminder)
	r.GET("/feed", h.Feed)
	tt.router = r
	return tt
}

func (tt *taskTest) task(name string, status model.TaskStatus) *model.Task {
	return &model.Task{
		ID:       uuid.New(),
		OwnerID:  tt.userID,
		Name:     name,
		Status:   status,
		Priority: model.PriorityNone,
		DueDate:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestTaskCreate_SchedulesReminder(t *testing.T) {
	// Arrange
	tt := setupTaskTest()
	task := tt.task("Report", model.StatusInProgress)
	fireAt := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	tt.tasks.On("Create", mock.Anything, tt.userID, mock.MatchedBy(func(p service.TaskPatch) bool {
		return p.Name != nil && *p.Name == "Report"
	})).Return(task, nil)
	tt.reminders.On("Schedule", mock.Anything, tt.userID, task).Return(service.Reminder{NotificationID: "h1", FireAt: &fireAt}, nil)

	// Act
	resp := performRequest(tt.router, http.MethodPost, "/tasks", map[string]any{"name": "Report"})

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)
	body := decode[handler.TaskWithReminder](t, resp)
	assert.Equal(t, task.ID.String(), body.Task.ID)
	assert.Equal(t, model.StatusInProgress, body.Task.Status)
	assert.Equal(t, []string{}, body.Task.SharedWith)
	require.NotNil(t, body.Reminder)
	assert.Equal(t, "h1", body.Reminder.NotificationID)
	tt.tasks.AssertExpectations(t)
	tt.reminders.AssertExpectations(t)
}

func TestTaskCreate_SchedulingFailureStillSucceeds(t *testing.T) {
	tt := setupTaskTest()
	task := tt.task("Report", model.StatusInProgress)
	tt.tasks.On("Create", mock.Anything, tt.userID, mock.Anything).Return(task, nil)
	tt.reminders.On("Schedule", mock.Anything, tt.userID, task).Return(service.Reminder{}, errors.New("alerts down"))

	resp := performRequest(tt.router, http.MethodPost, "/tasks", map[string]any{"name": "Report"})

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Nil(t, decode[handler.TaskWithReminder](t, resp).Reminder)
}

func TestTaskCreate_Validation(t *testing.T) {
	tt := setupTaskTest()
	tt.tasks.On("Create", mock.Anything, tt.userID, mock.Anything).
		Return(nil, fmt.Errorf("%w: task name is required", service.ErrValidation))

	resp := performRequest(tt.router, http.MethodPost, "/tasks", map[string]any{"note": "no name"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "validation failed: task name is required", errorOf(t, resp))
	tt.reminders.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskGetAll_Views(t *testing.T) {
	tt := setupTaskTest()
	open := tt.task("open", model.StatusInProgress)
	done := tt.task("done", model.StatusCompleted)
	tt.tasks.On("List", mock.Anything, tt.userID).Return([]model.Task{*open, *done}, nil)
	tt.tasks.On("ListActive", mock.Anything, tt.userID).Return([]model.Task{*open}, nil)
	tt.tasks.On("ListCompleted", mock.Anything, tt.userID, true).Return([]model.Task{*done}, nil)

	tests := []struct {
		query string
		code  int
		names []string
	}{
		{"", http.StatusOK, []string{"open", "done"}},
		{"?view=active", http.StatusOK, []string{"open"}},
		{"?view=completed&order=asc", http.StatusOK, []string{"done"}},
		{"?view=archived", http.StatusBadRequest, nil},
		{"?view=completed&order=sideways", http.StatusBadRequest, nil},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			resp := performRequest(tt.router, http.MethodGet, "/tasks"+tc.query, nil)
			require.Equal(t, tc.code, resp.Code)
			if tc.code != http.StatusOK {
				return
			}
			var names []string
			for _, task := range decode[[]handler.TaskResponse](t, resp) {
				names = append(names, task.Name)
			}
			assert.Equal(t, tc.names, names)
		})
	}
}

func TestTaskGetAll_SearchAndSort(t *testing.T) {
	tt := setupTaskTest()
	rent := tt.task("Pay rent", model.StatusInProgress)
	rent.Priority = model.PriorityLow
	milk := tt.task("Buy milk", model.StatusInProgress)
	milk.Priority = model.PriorityHigh
	milk.DueDate = time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	plants := tt.task("Water plants", model.StatusWaiting)
	tt.tasks.On("List", mock.Anything, tt.userID).Return([]model.Task{*rent, *milk, *plants}, nil)

	tests := []struct {
		query string
		code  int
		names []string
	}{
		{"?sort=name&order=asc", http.StatusOK, []string{"Buy milk", "Pay rent", "Water plants"}},
		{"?sort=name", http.StatusOK, []string{"Water plants", "Pay rent", "Buy milk"}},
		{"?sort=priority&order=asc", http.StatusOK, []string{"Buy milk", "Pay rent", "Water plants"}},
		{"?sort=due_date&order=desc", http.StatusOK, []string{"Buy milk", "Pay rent", "Water plants"}},
		{"?q=MILK", http.StatusOK, []string{"Buy milk"}},
		{"?q=2024-06-10&sort=name&order=asc", http.StatusOK, []string{"Pay rent", "Water plants"}},
		{"?q=nothing", http.StatusOK, []string{}},
		{"?sort=colour", http.StatusBadRequest, nil},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			resp := performRequest(tt.router, http.MethodGet, "/tasks"+tc.query, nil)
			require.Equal(t, tc.code, resp.Code)
			if tc.code != http.StatusOK {
				return
			}
			names := []string{}
			for _, task := range decode[[]handler.TaskResponse](t, resp) {
				names = append(names, task.Name)
			}
			assert.Equal(t, tc.names, names)
		})
	}
}

func TestTaskGetByID(t *testing.T) {
	tt := setupTaskTest()
	task := tt.task("Report", model.StatusWaiting)
	task.SetPolicy(&model.NotificationPolicy{Kind: model.NotifyDaysBefore, Hour: 9, Minute: 30, DaysBefore: 2})
	otherID := uuid.New()
	tt.tasks.On("Get", mock.Anything, tt.userID, task.ID).Return(task, nil)
	tt.tasks.On("Get", mock.Anything, tt.userID, otherID).Return(nil, service.ErrPermissionDenied)

	resp := performRequest(tt.router, http.MethodGet, "/tasks/"+task.ID.String(), nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	body := decode[handler.TaskResponse](t, resp)
	require.NotNil(t, body.Notification)
	assert.Equal(t, 2, body.Notification.DaysBefore)

	resp = performRequest(tt.router, http.MethodGet, "/tasks/"+otherID.String(), nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = performRequest(tt.router, http.MethodGet, "/tasks/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid task ID format", errorOf(t, resp))
}

func TestTaskUpdate_CompletingCancelsReminder(t *testing.T) {
	tt := setupTaskTest()
	task := tt.task("Report", model.StatusInProgress)
	completed := *task
	completed.Status = model.StatusCompleted

	tt.tasks.On("Get", mock.Anything, tt.userID, task.ID).Return(task, nil)
	tt.tasks.On("Update", mock.Anything, task.ID, mock.Anything).Return(&completed, nil)
	tt.reminders.On("Cancel", mock.Anything, tt.userID, task.ID).Return(nil)

	resp := performRequest(tt.router, http.MethodPut, "/tasks/"+task.ID.String(), map[string]any{"status": "completed"})

	assert.Equal(t, http.StatusOK, resp.Code)
	body := decode[handler.TaskWithReminder](t, resp)
	assert.Equal(t, model.StatusCompleted, body.Task.Status)
	assert.Nil(t, body.Reminder)
	tt.reminders.AssertExpectations(t)
	tt.reminders.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskUpdate_NewDueDateReschedules(t *testing.T) {
	tt := setupTaskTest()
	task := tt.task("Report", model.StatusInProgress)
	tt.tasks.On("Get", mock.Anything, tt.userID, task.ID).Return(task, nil)
	tt.tasks.On("Update", mock.Anything, task.ID, mock.MatchedBy(func(p service.TaskPatch) bool {
		return p.DueDate != nil && p.Name == nil
	})).Return(task, nil)
	tt.reminders.On("Schedule", mock.Anything, tt.userID, task).Return(service.Reminder{NotificationID: "h2"}, nil)

	resp := performRequest(tt.router, http.MethodPut, "/tasks/"+task.ID.String(), map[string]any{"due_date": "2024-06-12T00:00:00Z"})

	assert.Equal(t, http.StatusOK, resp.Code)
	body := decode[handler.TaskWithReminder](t, resp)
	require.NotNil(t, body.Reminder)
	assert.Equal(t, "h2", body.Reminder.NotificationID)
}

func TestTaskUpdate_RenameReschedules(t *testing.T) {
	tt := setupTaskTest()
	task := tt.task("Report", model.StatusInProgress)
	renamed := *task
	renamed.Name = "Quarterly report"
	tt.tasks.On("Get", mock.Anything, tt.userID, task.ID).Return(task, nil)
	tt.tasks.On("Update", mock.Anything, task.ID, mock.Anything).Return(&renamed, nil)
	tt.reminders.On("Schedule", mock.Anything, tt.userID, &renamed).Return(service.Reminder{NotificationID: "h3"}, nil)

	resp := performRequest(tt.router, http.MethodPut, "/tasks/"+task.ID.String(), map[string]any{"name": "Quarterly report"})

	assert.Equal(t, http.StatusOK, resp.Code)
	body := decode[handler.TaskWithReminder](t, resp)
	require.NotNil(t, body.Reminder)
	assert.Equal(t, "h3", body.Reminder.NotificationID)
	tt.reminders.AssertExpectations(t)
}

func TestTaskUpdate_NoteOnlyLeavesReminder(t *testing.T) {
	tt := setupTaskTest()
	task := tt.task("Report", model.StatusInProgress)
	tt.tasks.On("Get", mock.Anything, tt.userID, task.ID).Return(task, nil)
	tt.tasks.On("Update", mock.Anything, task.ID, mock.Anything).Return(task, nil)

	resp := performRequest(tt.router, http.MethodPut, "/tasks/"+task.ID.String(), map[string]any{"note": ""})

	assert.Equal(t, http.StatusOK, resp.Code)
	tt.reminders.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything)
	tt.reminders.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskUpdate_NotOwner(t *testing.T) {
	tt := setupTaskTest()
	taskID := uuid.New()
	tt.tasks.On("Get", mock.Anything, tt.userID, taskID).Return(nil, service.ErrPermissionDenied)

	resp := performRequest(tt.router, http.MethodPut, "/tasks/"+taskID.String(), map[string]any{"name": "mine"})

	assert.Equal(t, http.StatusForbidden, resp.Code)
	tt.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskDelete(t *testing.T) {
	tt := setupTaskTest()
	task := tt.task("Report", model.StatusInProgress)
	tt.tasks.On("Get", mock.Anything, tt.userID, task.ID).Return(task, nil)
	tt.tasks.On("Delete", mock.Anything, task.ID, false).Return(nil)
	tt.reminders.On("Cancel", mock.Anything, tt.userID, task.ID).Return(nil)

	resp := performRequest(tt.router, http.MethodDelete, "/tasks/"+task.ID.String(), nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Task deleted successfully", decode[map[string]string](t, resp)["message"])
	tt.tasks.AssertExpectations(t)
	tt.reminders.AssertExpectations(t)
}

func TestTaskDelete_Cascade(t *testing.T) {
	tt := setupTaskTest()
	task := tt.task("Report", model.StatusInProgress)
	tt.tasks.On("Get", mock.Anything, tt.userID, task.ID).Return(task, nil)
	tt.tasks.On("Delete", mock.Anything, task.ID, true).Return(nil)
	tt.reminders.On("Cancel", mock.Anything, tt.userID, task.ID).Return(nil)

	resp := performRequest(tt.router, http.MethodDelete, "/tasks/"+task.ID.String()+"?cascade=true", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	tt.tasks.AssertExpectations(t)
}

func TestTaskDelete_CascadeFailureKeepsReminder(t *testing.T) {
	tt := setupTaskTest()
	task := tt.task("Report", model.StatusInProgress)
	tt.tasks.On("Get", mock.Anything, tt.userID, task.ID).Return(task, nil)
	tt.tasks.On("Delete", mock.Anything, task.ID, true).
		Return(fmt.Errorf("%w: delete task: disk full", service.ErrWrite))

	resp := performRequest(tt.router, http.MethodDelete, "/tasks/"+task.ID.String()+"?cascade=true", nil)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	tt.reminders.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskReminder(t *testing.T) {
	tt := setupTaskTest()
	task := tt.task("Report", model.StatusInProgress)
	tt.tasks.On("Get", mock.Anything, tt.userID, task.ID).Return(task, nil)
	tt.reminders.On("Get", mock.Anything, tt.userID, task.ID).Return(&model.ScheduledNotification{
		TaskID:                 task.ID,
		PlatformNotificationID: "h1",
		TaskName:               "Report",
		Status:                 model.ReminderScheduled,
	}, nil)

	resp := performRequest(tt.router, http.MethodGet, "/tasks/"+task.ID.String()+"/reminder", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	body := decode[handler.ReminderResponse](t, resp)
	assert.Equal(t, "h1", body.PlatformNotificationID)
	assert.Equal(t, model.ReminderScheduled, body.Status)
}

func TestFeed_SkipsCompletedSharedTasks(t *testing.T) {
	tt := setupTaskTest()
	open := tt.task("mine", model.StatusInProgress)
	tt.tasks.On("ListActive", mock.Anything, tt.userID).Return([]model.Task{*open}, nil)
	tt.sharing.On("FetchSharedTasks", mock.Anything, tt.userID).Return([]service.SharedTaskView{
		{SharedTask: model.SharedTask{ID: "a", Name: "open share", Status: model.StatusWaiting}, SharedByName: "Ann"},
		{SharedTask: model.SharedTask{ID: "b", Name: "closed share", Status: model.StatusCompleted}},
	}, nil)

	resp := performRequest(tt.router, http.MethodGet, "/feed", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	body := decode[handler.FeedResponse](t, resp)
	require.Len(t, body.Tasks, 1)
	require.Len(t, body.SharedTasks, 1)
	assert.Equal(t, "a", body.SharedTasks[0].ID)
	assert.Equal(t, "Ann", body.SharedTasks[0].SharedByName)
}

func TestFeed_StoreFailure(t *testing.T) {
	tt := setupTaskTest()
	tt.tasks.On("ListActive", mock.Anything, tt.userID).
		Return([]model.Task(nil), fmt.Errorf("%w: list tasks: timeout", service.ErrFetch))

	resp := performRequest(tt.router, http.MethodGet, "/feed", nil)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Internal server error", errorOf(t, resp))
}
