package handler

import (
	"time"

	"todoshare/internal/model"
	"todoshare/internal/service"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	DisplayName          string     `json:"display_name"`
	FirstName            string     `json:"first_name,omitempty"`
	LastName             string     `json:"last_name,omitempty"`
	Birthdate            string     `json:"birthdate,omitempty"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	CreatedAt            time.Time  `json:"created_at"`
	LastActive           *time.Time `json:"last_active,omitempty"`
}

type ProfileResponse struct {
	UserResponse
	Friends        []string `json:"friends"`
	PendingFriends []string `json:"pending_friends"`
	SharedTasks    []string `json:"shared_tasks"`
}

type TaskResponse struct {
	ID             string                    `json:"id"`
	OwnerID        string                    `json:"owner_id"`
	Name           string                    `json:"name"`
	Description    string                    `json:"description"`
	ResolutionNote string                    `json:"resolution_note"`
	Status         model.TaskStatus          `json:"status"`
	Priority       model.TaskPriority        `json:"priority"`
	DueDate        time.Time                 `json:"due_date"`
	Note           string                    `json:"note"`
	IsShared       bool                      `json:"is_shared"`
	SharedWith     []string                  `json:"shared_with"`
	Notification   *model.NotificationPolicy `json:"notification,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

type SharedTaskResponse struct {
	ID             string             `json:"id"`
	OriginalTaskID string             `json:"original_task_id"`
	SharedBy       string             `json:"shared_by"`
	SharedByName   string             `json:"shared_by_name,omitempty"`
	IsGroupTask    bool               `json:"is_group_task"`
	GroupID        *string            `json:"group_id,omitempty"`
	AssignedTo     *string            `json:"assigned_to,omitempty"`
	AssignedToName string             `json:"assigned_to_name,omitempty"`
	SharedWith     []string           `json:"shared_with"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	ResolutionNote string             `json:"resolution_note"`
	Status         model.TaskStatus   `json:"status"`
	Priority       model.TaskPriority `json:"priority"`
	DueDate        time.Time          `json:"due_date"`
	Note           string             `json:"note"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type GroupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	Members     []string  `json:"members"`
	Tasks       []string  `json:"tasks"`
	CreatedAt   time.Time `json:"created_at"`
}

type NotificationResponse struct {
	ID           string                 `json:"id"`
	Type         model.NotificationType `json:"type"`
	ActorID      *string                `json:"actor_id,omitempty"`
	SharedTaskID *string                `json:"shared_task_id,omitempty"`
	TaskID       *string                `json:"task_id,omitempty"`
	Message      string                 `json:"message"`
	Read         bool                   `json:"read"`
	CreatedAt    time.Time              `json:"created_at"`
}

type ReminderResponse struct {
	TaskID                 string     `json:"task_id"`
	PlatformNotificationID string     `json:"platform_notification_id"`
	ScheduledFor           time.Time  `json:"scheduled_for"`
	TaskName               string     `json:"task_name"`
	Status                 string     `json:"status"`
	CreatedAt              time.Time  `json:"created_at"`
	CanceledAt             *time.Time `json:"canceled_at,omitempty"`
}

// TaskWithReminder is returned when a write may have rescheduled the task's reminder
type TaskWithReminder struct {
	Task     TaskResponse      `json:"task"`
	Reminder *service.Reminder `json:"reminder,omitempty"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:                   u.ID.String(),
		Email:                u.Email,
		DisplayName:          u.DisplayName,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		Birthdate:            u.Birthdate,
		NotificationsEnabled: u.NotificationsEnabled,
		CreatedAt:            u.CreatedAt,
		LastActive:           u.LastActive,
	}
}

func newUserResponses(users []model.User) []UserResponse {
	response := make([]UserResponse, len(users))
	for i := range users {
		response[i] = newUserResponse(&users[i])
	}
	return response
}

func newTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID.String(),
		OwnerID:        t.OwnerID.String(),
		Name:           t.Name,
		Description:    t.Description,
		ResolutionNote: t.ResolutionNote,
		Status:         t.Status,
		Priority:       t.Priority,
		DueDate:        t.DueDate,
		Note:           t.Note,
		IsShared:       t.IsShared,
		SharedWith:     idStrings(t.SharedWith),
		Notification:   t.Policy(),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func newTaskResponses(tasks []model.Task) []TaskResponse {
	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = newTaskResponse(&tasks[i])
	}
	return response
}

func newSharedTaskResponse(t *model.SharedTask) SharedTaskResponse {
	return SharedTaskResponse{
		ID:             t.ID,
		OriginalTaskID: t.OriginalTaskID.String(),
		SharedBy:       t.SharedBy.String(),
		IsGroupTask:    t.IsGroupTask,
		GroupID:        optionalID(t.GroupID),
		AssignedTo:     optionalID(t.AssignedTo),
		SharedWith:     idStrings(t.SharedWith),
		Name:           t.Name,
		Description:    t.Description,
		ResolutionNote: t.ResolutionNote,
		Status:         t.Status,
		Priority:       t.Priority,
		DueDate:        t.DueDate,
		Note:           t.Note,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func newSharedTaskViewResponse(v *service.SharedTaskView) SharedTaskResponse {
	response := newSharedTaskResponse(&v.SharedTask)
	response.SharedByName = v.SharedByName
	response.AssignedToName = v.AssignedToName
	return response
}

func newGroupResponse(g *model.Group) GroupResponse {
	tasks := g.Tasks
	if tasks == nil {
		tasks = []string{}
	}
	return GroupResponse{
		ID:          g.ID.String(),
		Name:        g.Name,
		Description: g.Description,
		OwnerID:     g.OwnerID.String(),
		Members:     idStrings(g.Members),
		Tasks:       tasks,
		CreatedAt:   g.CreatedAt,
	}
}

func newNotificationResponse(n *model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:           n.ID.String(),
		Type:         n.Type,
		ActorID:      optionalID(n.ActorID),
		SharedTaskID: n.SharedTaskID,
		TaskID:       optionalID(n.TaskID),
		Message:      n.Message,
		Read:         n.Read,
		CreatedAt:    n.CreatedAt,
	}
}

func newReminderResponse(r *model.ScheduledNotification) ReminderResponse {
	return ReminderResponse{
		TaskID:                 r.TaskID.String(),
		PlatformNotificationID: r.PlatformNotificationID,
		ScheduledFor:           r.ScheduledFor,
		TaskName:               r.TaskName,
		Status:                 r.Status,
		CreatedAt:              r.CreatedAt,
		CanceledAt:             r.CanceledAt,
	}
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
