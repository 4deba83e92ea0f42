package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/models"
)

// UserService handles user lookups and the follow edge toggles
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns a page of users with the total count
func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// Subscribe creates a follow edge from the user to the author. The self
// check runs before the existence check; the duplicate guard is the
// composite unique index, so the add is a single conditional insert.
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	if userID == authorID {
		return ErrSelfFollow
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("user %s: %w", authorID, ErrNotFound)
	}

	follow := models.Follow{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("subscription %w", ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// Unsubscribe removes the follow edge; removing a missing edge is an error
func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subscription %w", ErrNotFound)
	}
	return nil
}

// Subscriptions returns a page of the authors the user follows
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.User, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID)

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := base.
		Order("follows.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	return authors, count, nil
}

// SubscribedSet reports which of the given authors the user follows
func (s *UserService) SubscribedSet(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// IsSubscribed reports whether user follows author
func (s *UserService) IsSubscribed(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}
