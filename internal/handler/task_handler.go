package handler

import (
	"context"
	"log"
	"net/http"

	"todoshare/internal/model"
	"todoshare/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskService interface {
	Create(ctx context.Context, ownerID uuid.UUID, patch service.TaskPatch) (*model.Task, error)
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, taskID uuid.UUID, patch service.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, taskID uuid.UUID, cascade bool) error
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error)
	ListActive(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error)
	ListCompleted(ctx context.Context, ownerID uuid.UUID, asc bool) ([]model.Task, error)
}

type ReminderScheduler interface {
	Schedule(ctx context.Context, userID uuid.UUID, task *model.Task) (service.Reminder, error)
	Cancel(ctx context.Context, userID, taskID uuid.UUID) error
	Get(ctx context.Context, userID, taskID uuid.UUID) (*model.ScheduledNotification, error)
}

// SharedTaskFeed is the part of the sharing service the task routes rely on
type SharedTaskFeed interface {
	FetchSharedTasks(ctx context.Context, userID uuid.UUID) ([]service.SharedTaskView, error)
}

type TaskHandler struct {
	tasks     TaskService
	reminders ReminderScheduler
	shared    SharedTaskFeed
}

func NewTaskHandler(tasks TaskService, reminders ReminderScheduler, shared SharedTaskFeed) *TaskHandler {
	return &TaskHandler{tasks: tasks, reminders: reminders, shared: shared}
}

// FeedResponse is the home screen: open personal tasks and open shared tasks
type FeedResponse struct {
	Tasks       []TaskResponse       `json:"tasks"`
	SharedTasks []SharedTaskResponse `json:"shared_tasks"`
}

// Create godoc
// @Summary   Create a task and schedule its reminder
// @Tags      Tasks
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     request body service.TaskPatch true "Task fields; name is required"
// @Success   201 {object} TaskWithReminder
// @Failure   400 {object} ErrorResponse
// @Router    /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.TaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TaskWithReminder{
		Task:     newTaskResponse(task),
		Reminder: h.schedule(c.Request.Context(), userID, task),
	})
}

// GetAll godoc
// @Summary   The current user's tasks
// @Description Without sort, tasks come by due date (completed view: newest
// @Description first unless order=asc).
// @Tags      Tasks
// @Produce   json
// @Security  BearerAuth
// @Param     view  query string false "all, active or completed" default(all)
// @Param     q     query string false "Name fragment or YYYY-MM-DD due date"
// @Param     sort  query string false "name, priority or due_date"
// @Param     order query string false "asc or desc" default(desc)
// @Success   200 {array} TaskResponse
// @Failure   400 {object} ErrorResponse
// @Router    /tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	order := c.DefaultQuery("order", "desc")
	if order != "asc" && order != "desc" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order must be asc or desc"})
		return
	}
	query := service.TaskQuery{
		Search: c.Query("q"),
		SortBy: service.TaskSort(c.Query("sort")),
		Desc:   order == "desc",
	}
	if err := query.Validate(); err != nil {
		respondError(c, err)
		return
	}

	var (
		tasks []model.Task
		err   error
	)
	switch c.DefaultQuery("view", "all") {
	case "all":
		tasks, err = h.tasks.List(c.Request.Context(), userID)
	case "active":
		tasks, err = h.tasks.ListActive(c.Request.Context(), userID)
	case "completed":
		tasks, err = h.tasks.ListCompleted(c.Request.Context(), userID, order == "asc")
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "view must be all, active or completed"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponses(query.Apply(tasks)))
}

// GetByID godoc
// @Summary   One of the current user's tasks
// @Tags      Tasks
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "Task ID"
// @Success   200 {object} TaskResponse
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

// Update godoc
// @Summary   Change some fields of a task
// @Description Omitted fields keep their value. Completing a task cancels its
// @Description reminder; changing the name, due date or notification reschedules it.
// @Tags      Tasks
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "Task ID"
// @Param     request body service.TaskPatch true "Fields to change"
// @Success   200 {object} TaskWithReminder
// @Failure   400 {object} ErrorResponse
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req service.TaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if _, err := h.tasks.Get(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), taskID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response := TaskWithReminder{Task: newTaskResponse(task)}
	switch {
	case task.Status == model.StatusCompleted:
		if req.Completes() {
			h.cancel(c.Request.Context(), userID, taskID)
		}
	case req.TouchesSchedule() || req.Status != nil:
		response.Reminder = h.schedule(c.Request.Context(), userID, task)
	}
	c.JSON(http.StatusOK, response)
}

// Delete godoc
// @Summary   Delete a task and cancel its reminder
// @Tags      Tasks
// @Security  BearerAuth
// @Param     id      path  string true  "Task ID"
// @Param     cascade query bool   false "Also delete the shared copies of the task"
// @Success   200 {object} map[string]string
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	if _, err := h.tasks.Get(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, err)
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), taskID, c.Query("cascade") == "true"); err != nil {
		respondError(c, err)
		return
	}
	h.cancel(c.Request.Context(), userID, taskID)

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Reminder godoc
// @Summary   The reminder recorded for a task
// @Tags      Tasks
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "Task ID"
// @Success   200 {object} ReminderResponse
// @Failure   404 {object} ErrorResponse
// @Router    /tasks/{id}/reminder [get]
func (h *TaskHandler) Reminder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	if _, err := h.tasks.Get(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, err)
		return
	}

	rec, err := h.reminders.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReminderResponse(rec))
}

// Feed godoc
// @Summary   Open personal and shared tasks
// @Tags      Tasks
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} FeedResponse
// @Router    /feed [get]
func (h *TaskHandler) Feed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListActive(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	shared, err := h.shared.FetchSharedTasks(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := FeedResponse{
		Tasks:       newTaskResponses(tasks),
		SharedTasks: make([]SharedTaskResponse, 0, len(shared)),
	}
	for i := range shared {
		if shared[i].Status == model.StatusCompleted {
			continue
		}
		response.SharedTasks = append(response.SharedTasks, newSharedTaskViewResponse(&shared[i]))
	}
	c.JSON(http.StatusOK, response)
}

// schedule replaces the task's reminder. The task write has already
// succeeded, so a scheduling failure is logged and the request still succeeds.
func (h *TaskHandler) schedule(ctx context.Context, userID uuid.UUID, task *model.Task) *service.Reminder {
	reminder, err := h.reminders.Schedule(ctx, userID, task)
	if err != nil {
		log.Printf("⚠️  Failed to schedule reminder for task %s: %v", task.ID, err)
		return nil
	}
	if reminder.NotificationID == "" && reminder.Advisory == "" {
		return nil
	}
	return &reminder
}

func (h *TaskHandler) cancel(ctx context.Context, userID, taskID uuid.UUID) {
	if err := h.reminders.Cancel(ctx, userID, taskID); err != nil {
		log.Printf("⚠️  Failed to cancel reminder for task %s: %v", taskID, err)
	}
}
