package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"todoshare/internal/model"
	"todoshare/internal/repository"
)

type SharedTaskStore interface {
	Create(ctx context.Context, shared *model.SharedTask, members, recipients []uuid.UUID) error
	GetByID(ctx context.Context, id string) (*model.SharedTask, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]model.SharedTask, error)
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]model.SharedTask, error)
	LoadMembers(ctx context.Context, tasks []model.SharedTask) error
	Update(ctx context.Context, shared *model.SharedTask) error
	Delete(ctx context.Context, id string) error
}

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type GroupLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
}

type EventLog interface {
	Append(ctx context.Context, events ...*model.Notification) error
}

// SharedTaskView is a shared task with its sharer and assignee resolved to
// display names where possible.
type SharedTaskView struct {
	model.SharedTask
	SharedByName   string
	AssignedToName string
}

type SharingService struct {
	tasks  TaskStore
	shared SharedTaskStore
	users  UserLookup
	groups GroupLookup
	events EventLog
	now    func() time.Time
}

func NewSharingService(tasks TaskStore, shared SharedTaskStore, users UserLookup, groups GroupLookup, events EventLog) *SharingService {
	return &SharingService{
		tasks:  tasks,
		shared: shared,
		users:  users,
		groups: groups,
		events: events,
		now:    time.Now,
	}
}

// ShareWithUser copies the owner's task into a new shared task assigned to
// the recipient and returns its id.
func (s *SharingService) ShareWithUser(ctx context.Context, taskID, ownerID, recipientID uuid.UUID) (string, error) {
	task, err := s.ownedTask(ctx, taskID, ownerID)
	if err != nil {
		return "", err
	}
	if recipientID == ownerID {
		return "", validation("cannot share a task with yourself")
	}

	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		return "", fetchFailure("get recipient", err)
	}
	if recipient == nil {
		return "", fmt.Errorf("%w: user %s", ErrNotFound, recipientID)
	}

	shared := snapshot(task)
	shared.ID = newSharedTaskID(task.ID, model.ShareTypeUser, recipientID.String(), s.now())
	shared.AssignedTo = &recipientID

	members := []uuid.UUID{recipientID}
	if err := s.shared.Create(ctx, shared, members, members); err != nil {
		return "", writeFailure("share task with user", err)
	}

	s.emit(ctx, &model.Notification{
		UserID:       recipientID,
		ActorID:      &ownerID,
		Type:         model.NotificationTaskShared,
		SharedTaskID: &shared.ID,
		Message:      fmt.Sprintf("%s shared a task with you: %s", s.displayName(ctx, ownerID), task.Name),
	})
	return shared.ID, nil
}

// ShareWithGroup copies the owner's task into a shared task visible to the
// group's current members and returns its id. Later membership changes do not
// alter who it is shared with.
func (s *SharingService) ShareWithGroup(ctx context.Context, taskID, ownerID, groupID uuid.UUID) (string, error) {
	task, err := s.ownedTask(ctx, taskID, ownerID)
	if err != nil {
		return "", err
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return "", fetchFailure("get group", err)
	}
	if group == nil {
		return "", fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	if !containsID(group.Members, ownerID) {
		return "", fmt.Errorf("%w: not a member of group %s", ErrPermissionDenied, groupID)
	}

	shared := snapshot(task)
	shared.ID = newSharedTaskID(task.ID, model.ShareTypeGroup, groupID.String(), s.now())
	shared.IsGroupTask = true
	shared.GroupID = &groupID

	members := append([]uuid.UUID(nil), group.Members...)
	recipients := without(members, ownerID)
	if err := s.shared.Create(ctx, shared, members, recipients); err != nil {
		return "", writeFailure("share task with group", err)
	}

	message := fmt.Sprintf("%s shared a task with %s: %s", s.displayName(ctx, ownerID), group.Name, task.Name)
	events := make([]*model.Notification, 0, len(recipients))
	for _, userID := range recipients {
		events = append(events, &model.Notification{
			UserID:       userID,
			ActorID:      &ownerID,
			Type:         model.NotificationTaskShared,
			SharedTaskID: &shared.ID,
			Message:      message,
		})
	}
	s.emit(ctx, events...)
	return shared.ID, nil
}

// FetchSharedTasks returns every shared task the user is a member of or is
// assigned to, each exactly once, ordered by due date.
func (s *SharingService) FetchSharedTasks(ctx context.Context, userID uuid.UUID) ([]SharedTaskView, error) {
	byMember, err := s.shared.ListByMember(ctx, userID)
	if err != nil {
		return nil, fetchFailure("list shared tasks by member", err)
	}
	byAssignee, err := s.shared.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, fetchFailure("list shared tasks by assignee", err)
	}

	seen := make(map[string]bool, len(byMember)+len(byAssignee))
	tasks := make([]model.SharedTask, 0, len(byMember)+len(byAssignee))
	for _, list := range [][]model.SharedTask{byMember, byAssignee} {
		for _, t := range list {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			tasks = append(tasks, t)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].DueDate.Equal(tasks[j].DueDate) {
			return tasks[i].DueDate.Before(tasks[j].DueDate)
		}
		return tasks[i].ID < tasks[j].ID
	})

	if err := s.shared.LoadMembers(ctx, tasks); err != nil {
		return nil, fetchFailure("load shared task members", err)
	}

	names := newNameCache(s.users)
	views := make([]SharedTaskView, len(tasks))
	for i, t := range tasks {
		views[i] = SharedTaskView{SharedTask: t, SharedByName: names.resolve(ctx, t.SharedBy)}
		if t.AssignedTo != nil {
			views[i].AssignedToName = names.resolve(ctx, *t.AssignedTo)
		}
	}
	return views, nil
}

// Get returns a shared task the user can see
func (s *SharingService) Get(ctx context.Context, userID uuid.UUID, id string) (*SharedTaskView, error) {
	shared, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(shared, userID) {
		return nil, ErrPermissionDenied
	}

	names := newNameCache(s.users)
	view := &SharedTaskView{SharedTask: *shared, SharedByName: names.resolve(ctx, shared.SharedBy)}
	if shared.AssignedTo != nil {
		view.AssignedToName = names.resolve(ctx, *shared.AssignedTo)
	}
	return view, nil
}

// UpdateSharedTask merges the patch over the shared task. Completing it
// notifies the sharer; other status or priority changes notify every member
// except the actor.
func (s *SharingService) UpdateSharedTask(ctx context.Context, id string, actorID uuid.UUID, patch TaskPatch) (*model.SharedTask, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	shared, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(shared, actorID) {
		return nil, ErrPermissionDenied
	}

	prevStatus, prevPriority := shared.Status, shared.Priority
	patch.apply(sharedContent(shared))

	if err := s.shared.Update(ctx, shared); err != nil {
		if errors.Is(err, repository.ErrSharedTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, writeFailure("update shared task", err)
	}

	actorName := s.displayName(ctx, actorID)
	switch {
	case shared.Status == model.StatusCompleted && prevStatus != model.StatusCompleted:
		if shared.SharedBy != actorID {
			s.emit(ctx, &model.Notification{
				UserID:       shared.SharedBy,
				ActorID:      &actorID,
				Type:         model.NotificationTaskCompleted,
				SharedTaskID: &shared.ID,
				Message:      fmt.Sprintf("%s completed %s", actorName, shared.Name),
			})
		}
	case shared.Status != prevStatus || shared.Priority != prevPriority:
		message := fmt.Sprintf("%s updated %s: %s, priority %s", actorName, shared.Name, shared.Status, shared.Priority)
		events := make([]*model.Notification, 0, len(shared.SharedWith))
		for _, userID := range without(shared.SharedWith, actorID) {
			events = append(events, &model.Notification{
				UserID:       userID,
				ActorID:      &actorID,
				Type:         model.NotificationTaskUpdated,
				SharedTaskID: &shared.ID,
				Message:      message,
			})
		}
		s.emit(ctx, events...)
	}
	return shared, nil
}

// DeleteSharedTask removes a shared task and every reference to it. Only the
// user who shared it may do so.
func (s *SharingService) DeleteSharedTask(ctx context.Context, id string, actorID uuid.UUID) error {
	shared, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if shared.SharedBy != actorID {
		return ErrPermissionDenied
	}

	if err := s.shared.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSharedTaskNotFound) {
			return ErrNotFound
		}
		return writeFailure("delete shared task", err)
	}
	return nil
}

func (s *SharingService) ownedTask(ctx context.Context, taskID, ownerID uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, fmt.Errorf("%w: task %s", ErrNotFound, taskID)
		}
		return nil, fetchFailure("get task", err)
	}
	if task.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: task %s belongs to another user", ErrPermissionDenied, taskID)
	}
	return task, nil
}

func (s *SharingService) load(ctx context.Context, id string) (*model.SharedTask, error) {
	shared, err := s.shared.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSharedTaskNotFound) {
			return nil, fmt.Errorf("%w: shared task %s", ErrNotFound, id)
		}
		return nil, fetchFailure("get shared task", err)
	}
	return shared, nil
}

// emit appends events after the write they describe has committed. A failure
// here does not undo the write.
func (s *SharingService) emit(ctx context.Context, events ...*model.Notification) {
	if len(events) == 0 {
		return
	}
	if err := s.events.Append(ctx, events...); err != nil {
		log.Printf("⚠️  Failed to record %d notification(s): %v", len(events), err)
	}
}

func (s *SharingService) displayName(ctx context.Context, id uuid.UUID) string {
	return newNameCache(s.users).resolve(ctx, id)
}

func snapshot(task *model.Task) *model.SharedTask {
	return &model.SharedTask{
		OriginalTaskID: task.ID,
		SharedBy:       task.OwnerID,
		Name:           task.Name,
		Description:    task.Description,
		ResolutionNote: task.ResolutionNote,
		Status:         task.Status,
		Priority:       task.Priority,
		DueDate:        task.DueDate,
		Note:           task.Note,
	}
}

// newSharedTaskID includes the time so that sharing the same task with the
// same recipient twice yields two distinct ids.
func newSharedTaskID(taskID uuid.UUID, shareType, recipient string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%d", taskID, shareType, recipient, at.UnixNano())
}

func canAccess(shared *model.SharedTask, userID uuid.UUID) bool {
	if shared.SharedBy == userID {
		return true
	}
	if shared.AssignedTo != nil && *shared.AssignedTo == userID {
		return true
	}
	return containsID(shared.SharedWith, userID)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// nameCache resolves user ids to display names. Lookups that fail fall back
// to the raw id and are only logged.
type nameCache struct {
	users UserLookup
	names map[uuid.UUID]string
}

func newNameCache(users UserLookup) *nameCache {
	return &nameCache{users: users, names: make(map[uuid.UUID]string)}
}

func (c *nameCache) resolve(ctx context.Context, id uuid.UUID) string {
	if name, ok := c.names[id]; ok {
		return name
	}

	name := id.String()
	user, err := c.users.GetByID(ctx, id)
	switch {
	case err != nil:
		log.Printf("⚠️  Display name lookup for %s failed: %v", id, err)
	case user != nil && user.DisplayName != "":
		name = user.DisplayName
	}
	c.names[id] = name
	return name
}
