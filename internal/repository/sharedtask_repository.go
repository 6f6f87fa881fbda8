package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todoshare/internal/model"
)

type SharedTaskRepository struct {
	db *gorm.DB
}

func NewSharedTaskRepository(db *gorm.DB) *SharedTaskRepository {
	return &SharedTaskRepository{db: db}
}

// Create stores a shared task together with its member rows and, for group
// shares, the group's task entry. recipients are added to the original task's
// sharedWith set, which is flagged as shared when there is at least one.
// Nothing is written unless every step succeeds.
func (r *SharedTaskRepository) Create(ctx context.Context, shared *model.SharedTask, members, recipients []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(shared).Error; err != nil {
			return err
		}

		rows := make([]model.SharedTaskMember, 0, len(members))
		for _, userID := range members {
			rows = append(rows, model.SharedTaskMember{SharedTaskID: shared.ID, UserID: userID})
		}
		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				return err
			}
		}

		if shared.GroupID != nil {
			entry := model.GroupTask{GroupID: *shared.GroupID, SharedTaskID: shared.ID}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		shares := make([]model.TaskShare, 0, len(recipients))
		for _, userID := range recipients {
			shares = append(shares, model.TaskShare{TaskID: shared.OriginalTaskID, UserID: userID})
		}
		if len(shares) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&shares).Error; err != nil {
				return err
			}
		}

		// A group share nobody but the sharer receives leaves the task unshared.
		if len(shares) == 0 {
			var found int64
			if err := tx.Model(&model.Task{}).Where("id = ?", shared.OriginalTaskID).Count(&found).Error; err != nil {
				return err
			}
			if found == 0 {
				return ErrTaskNotFound
			}
			return nil
		}

		result := tx.Model(&model.Task{}).
			Where("id = ?", shared.OriginalTaskID).
			Update("is_shared", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// GetByID retrieves a shared task with its sharedWith set
func (r *SharedTaskRepository) GetByID(ctx context.Context, id string) (*model.SharedTask, error) {
	var shared model.SharedTask
	result := r.db.WithContext(ctx).First(&shared, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSharedTaskNotFound
		}
		return nil, result.Error
	}

	tasks := []model.SharedTask{shared}
	if err := r.LoadMembers(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// ListByMember retrieves the shared tasks whose sharedWith contains the user
func (r *SharedTaskRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]model.SharedTask, error) {
	var tasks []model.SharedTask
	err := r.db.WithContext(ctx).
		Joins("JOIN shared_task_members ON shared_task_members.shared_task_id = shared_tasks.id").
		Where("shared_task_members.user_id = ?", userID).
		Find(&tasks).Error
	return tasks, err
}

// ListByAssignee retrieves the shared tasks individually assigned to the user
func (r *SharedTaskRepository) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]model.SharedTask, error) {
	var tasks []model.SharedTask
	err := r.db.WithContext(ctx).Where("assigned_to = ?", userID).Find(&tasks).Error
	return tasks, err
}

// IDsByMember returns the user's sharedTasks list
func (r *SharedTaskRepository) IDsByMember(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.SharedTaskMember{}).
		Where("user_id = ?", userID).
		Order("shared_task_id").
		Pluck("shared_task_id", &ids).Error
	return ids, err
}

// LoadMembers fills SharedWith for each task with a single query
func (r *SharedTaskRepository) LoadMembers(ctx context.Context, tasks []model.SharedTask) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}

	var rows []model.SharedTaskMember
	err := r.db.WithContext(ctx).
		Where("shared_task_id IN ?", ids).
		Order("shared_task_id, user_id").
		Find(&rows).Error
	if err != nil {
		return err
	}

	members := make(map[string][]uuid.UUID, len(tasks))
	for _, row := range rows {
		members[row.SharedTaskID] = append(members[row.SharedTaskID], row.UserID)
	}
	for i := range tasks {
		tasks[i].SharedWith = members[tasks[i].ID]
	}
	return nil
}

// Update writes the content fields of a shared task
func (r *SharedTaskRepository) Update(ctx context.Context, shared *model.SharedTask) error {
	result := r.db.WithContext(ctx).
		Model(shared).
		Select("Name", "Description", "ResolutionNote", "Status", "Priority", "DueDate", "Note", "UpdatedAt").
		Updates(shared)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSharedTaskNotFound
	}
	return nil
}

// Delete removes a shared task, prunes it from every member's sharedTasks and
// from its group, and drops sharedWith entries of the original task that no
// remaining projection backs.
func (r *SharedTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shared model.SharedTask
		if err := tx.First(&shared, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSharedTaskNotFound
			}
			return err
		}

		var members []uuid.UUID
		if err := tx.Model(&model.SharedTaskMember{}).
			Where("shared_task_id = ?", id).
			Pluck("user_id", &members).Error; err != nil {
			return err
		}

		if err := tx.Where("shared_task_id = ?", id).Delete(&model.SharedTaskMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("shared_task_id = ?", id).Delete(&model.GroupTask{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.SharedTask{}, "id = ?", id).Error; err != nil {
			return err
		}

		return pruneTaskShares(tx, shared.OriginalTaskID, members)
	})
}

// pruneTaskShares removes users from a task's sharedWith set once no
// projection of the task lists them, and clears the shared flag when the set
// becomes empty.
func pruneTaskShares(tx *gorm.DB, taskID uuid.UUID, users []uuid.UUID) error {
	for _, userID := range users {
		var remaining int64
		err := tx.Model(&model.SharedTaskMember{}).
			Joins("JOIN shared_tasks ON shared_tasks.id = shared_task_members.shared_task_id").
			Where("shared_tasks.original_task_id = ? AND shared_task_members.user_id = ?", taskID, userID).
			Count(&remaining).Error
		if err != nil {
			return err
		}
		if remaining > 0 {
			continue
		}
		if err := tx.Where("task_id = ? AND user_id = ?", taskID, userID).Delete(&model.TaskShare{}).Error; err != nil {
			return err
		}
	}

	var left int64
	if err := tx.Model(&model.TaskShare{}).Where("task_id = ?", taskID).Count(&left).Error; err != nil {
		return err
	}
	if left == 0 {
		return tx.Model(&model.Task{}).Where("id = ?", taskID).Update("is_shared", false).Error
	}
	return nil
}
