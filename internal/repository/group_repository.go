package repository

import (
	"context"
	"errors"

	"todoshare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create stores a group with its owner as the first member
func (r *GroupRepository) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		owner := model.GroupMember{GroupID: group.ID, UserID: group.OwnerID}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		group.Members = []uuid.UUID{group.OwnerID}
		return nil
	})
}

// GetByID retrieves a group with its members and tasks, or nil if absent
func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	members, err := r.MemberIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Members = members

	if err := r.db.WithContext(ctx).
		Model(&model.GroupTask{}).
		Where("group_id = ?", id).
		Order("shared_task_id").
		Pluck("shared_task_id", &group.Tasks).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// ListByMember returns the groups the user belongs to
func (r *GroupRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Order("groups.name").
		Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) MemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("joined_at, user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// AddMember adds a user to a group; adding an existing member is a no-op
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	member := model.GroupMember{GroupID: groupID, UserID: userID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
}
