package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todoshare/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID, including its sharedWith set
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}

	sharedWith, err := r.SharedWith(ctx, id)
	if err != nil {
		return nil, err
	}
	task.SharedWith = sharedWith
	return &task, nil
}

// ListByOwner retrieves all tasks owned by a user ordered by due date
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("due_date").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// ListByStatus retrieves an owner's tasks in one status ordered by due date
func (r *TaskRepository) ListByStatus(ctx context.Context, ownerID uuid.UUID, status model.TaskStatus, desc bool) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, status).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "due_date"}, Desc: desc}).
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Update writes every column of an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).
		Model(task).
		Select("*").
		Omit("ID", "OwnerID", "CreatedAt").
		Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task and its sharedWith entries. With cascade the shared
// task projections derived from it go in the same transaction, together with
// their member rows and group entries; otherwise they are left untouched.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID, cascade bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cascade {
			if err := deleteProjections(tx, id); err != nil {
				return err
			}
		}

		if err := tx.Where("task_id = ?", id).Delete(&model.TaskShare{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

func deleteProjections(tx *gorm.DB, taskID uuid.UUID) error {
	var ids []string
	if err := tx.Model(&model.SharedTask{}).
		Where("original_task_id = ?", taskID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if err := tx.Where("shared_task_id IN ?", ids).Delete(&model.SharedTaskMember{}).Error; err != nil {
		return err
	}
	if err := tx.Where("shared_task_id IN ?", ids).Delete(&model.GroupTask{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&model.SharedTask{}).Error
}

// SharedWith returns the ids of the users a task has been shared with
func (r *TaskRepository) SharedWith(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.TaskShare{}).
		Where("task_id = ?", taskID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}
