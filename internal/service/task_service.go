package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"todoshare/internal/model"
	"todoshare/internal/repository"
)

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error)
	ListByStatus(ctx context.Context, ownerID uuid.UUID, status model.TaskStatus, desc bool) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID, cascade bool) error
}

// TaskPatch carries the fields a caller wants to set. Nil fields are left
// untouched; a non-nil empty Note clears the note.
type TaskPatch struct {
	Name              *string                   `json:"name"`
	Description       *string                   `json:"description"`
	ResolutionNote    *string                   `json:"resolution_note"`
	Status            *model.TaskStatus         `json:"status"`
	Priority          *model.TaskPriority       `json:"priority"`
	DueDate           *time.Time                `json:"due_date"`
	Note              *string                   `json:"note"`
	Notification      *model.NotificationPolicy `json:"notification"`
	ClearNotification bool                      `json:"clear_notification"`
}

// TouchesSchedule reports whether applying the patch can move the task's
// reminder or change its text.
func (p TaskPatch) TouchesSchedule() bool {
	return p.Name != nil || p.DueDate != nil || p.Notification != nil || p.ClearNotification
}

// Completes reports whether the patch sets the completed status.
func (p TaskPatch) Completes() bool {
	return p.Status != nil && *p.Status == model.StatusCompleted
}

func (p TaskPatch) validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return validation("task name is required")
	}
	if p.Status != nil && !p.Status.Valid() {
		return validation("unknown status %q", *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return validation("unknown priority %q", *p.Priority)
	}
	if p.Notification != nil && !p.Notification.Valid() {
		return validation("invalid notification policy")
	}
	return nil
}

// apply merges the patch over the content fields shared by tasks and shared tasks.
func (p TaskPatch) apply(c content) {
	if p.Name != nil {
		*c.name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		*c.description = *p.Description
	}
	if p.ResolutionNote != nil {
		*c.resolutionNote = *p.ResolutionNote
	}
	if p.Status != nil {
		*c.status = *p.Status
	}
	if p.Priority != nil {
		*c.priority = *p.Priority
	}
	if p.DueDate != nil {
		*c.dueDate = *p.DueDate
	}
	if p.Note != nil {
		*c.note = *p.Note
	}
}

type content struct {
	name, description, resolutionNote, note *string
	status                                  *model.TaskStatus
	priority                                *model.TaskPriority
	dueDate                                 *time.Time
}

func taskContent(t *model.Task) content {
	return content{&t.Name, &t.Description, &t.ResolutionNote, &t.Note, &t.Status, &t.Priority, &t.DueDate}
}

func sharedContent(t *model.SharedTask) content {
	return content{&t.Name, &t.Description, &t.ResolutionNote, &t.Note, &t.Status, &t.Priority, &t.DueDate}
}

type TaskService struct {
	tasks TaskStore
	now   func() time.Time
}

func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks, now: time.Now}
}

// Create stores a new task for the owner, filling defaults for every
// field the patch leaves out.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, patch TaskPatch) (*model.Task, error) {
	if patch.Name == nil {
		return nil, validation("task name is required")
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	task := &model.Task{
		OwnerID:  ownerID,
		Status:   model.StatusInProgress,
		Priority: model.PriorityNone,
		DueDate:  s.now(),
	}
	patch.apply(taskContent(task))
	task.SetPolicy(patch.Notification)

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, writeFailure("create task", err)
	}
	return task, nil
}

// Get returns one of the owner's tasks
func (s *TaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != ownerID {
		return nil, ErrPermissionDenied
	}
	normalize(task)
	return task, nil
}

// Update merges the patch over the stored task and writes it back
func (s *TaskService) Update(ctx context.Context, taskID uuid.UUID, patch TaskPatch) (*model.Task, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}

	patch.apply(taskContent(task))
	switch {
	case patch.ClearNotification:
		task.SetPolicy(nil)
	case patch.Notification != nil:
		task.SetPolicy(patch.Notification)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, writeFailure("update task", err)
	}
	return task, nil
}

// Delete removes the task record. Shared copies of the task survive unless
// cascade is set, in which case they are removed along with it.
func (s *TaskService) Delete(ctx context.Context, taskID uuid.UUID, cascade bool) error {
	if err := s.tasks.Delete(ctx, taskID, cascade); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrNotFound
		}
		return writeFailure("delete task", err)
	}
	return nil
}

// List returns every task of the owner, completed ones included
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fetchFailure("list tasks", err)
	}
	for i := range tasks {
		normalize(&tasks[i])
	}
	return tasks, nil
}

// ListActive returns the owner's tasks that are not completed
func (s *TaskService) ListActive(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	tasks, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	active := tasks[:0]
	for _, t := range tasks {
		if t.Status != model.StatusCompleted {
			active = append(active, t)
		}
	}
	return active, nil
}

// ListCompleted returns the owner's completed tasks by due date, newest
// first unless asc is set.
func (s *TaskService) ListCompleted(ctx context.Context, ownerID uuid.UUID, asc bool) ([]model.Task, error) {
	tasks, err := s.tasks.ListByStatus(ctx, ownerID, model.StatusCompleted, !asc)
	if err != nil {
		return nil, fetchFailure("list completed tasks", err)
	}
	for i := range tasks {
		normalize(&tasks[i])
	}
	return tasks, nil
}

func (s *TaskService) load(ctx context.Context, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, fetchFailure("get task", err)
	}
	return task, nil
}

// normalize fills values older records may lack
func normalize(t *model.Task) {
	if t.DueDate.IsZero() {
		t.DueDate = t.CreatedAt
	}
	if t.Status == "" {
		t.Status = model.StatusInProgress
	}
	if t.Priority == "" {
		t.Priority = model.PriorityNone
	}
}
