package repository

import (
	"context"
	"errors"

	"todoshare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FriendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// AddPending puts requesterID on targetID's pendingFriends list. Existing
// edges, pending or accepted, are left as they are.
func (r *FriendRepository) AddPending(ctx context.Context, targetID, requesterID uuid.UUID) error {
	edge := model.Friendship{UserID: targetID, FriendID: requesterID, Status: model.FriendshipPending}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error
}

// Accept turns a pending request into a friendship on both sides
func (r *FriendRepository) Accept(ctx context.Context, userID, friendID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var edge model.Friendship
		err := tx.Where("user_id = ? AND friend_id = ? AND status = ?", userID, friendID, model.FriendshipPending).
			First(&edge).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFriendRequestNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&model.Friendship{}).
			Where("user_id = ? AND friend_id = ?", userID, friendID).
			Update("status", model.FriendshipAccepted).Error; err != nil {
			return err
		}

		back := model.Friendship{UserID: friendID, FriendID: userID, Status: model.FriendshipAccepted}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "friend_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status"}),
		}).Create(&back).Error
	})
}

// Remove deletes the relationship in both directions
func (r *FriendRepository) Remove(ctx context.Context, userID, friendID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", userID, friendID, friendID, userID).
		Delete(&model.Friendship{}).Error
}

// IDs returns the friend ids of a user with the given status
func (r *FriendRepository) IDs(ctx context.Context, userID uuid.UUID, status string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Friendship{}).
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at").
		Pluck("friend_id", &ids).Error
	return ids, err
}

// Users returns the profiles behind a user's friend ids with the given status
func (r *FriendRepository) Users(ctx context.Context, userID uuid.UUID, status string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN friendships ON friendships.friend_id = users.id").
		Where("friendships.user_id = ? AND friendships.status = ?", userID, status).
		Order("users.display_name").
		Find(&users).Error
	return users, err
}
