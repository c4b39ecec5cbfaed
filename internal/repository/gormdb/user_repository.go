package gormdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"homelist/internal/domain"
	"homelist/internal/repository"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&userModel{}); err != nil {
		return fmt.Errorf("migrate users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	m := userToModel(user)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user %q: %w", user.Username, repository.ErrConflict)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	user.ID = m.ID
	return m.ID, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&m).Error
	return scanUser(&m, err)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	return scanUser(&m, err)
}

// Update writes every mutable profile column; the username and creation time
// are never changed.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	m := userToModel(user)
	res := r.db.WithContext(ctx).
		Model(&userModel{ID: user.ID}).
		Select("full_name", "email", "password_hash", "date_of_birth", "gender", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return fmt.Errorf("update user %d: %w", user.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update user %d: %w", user.ID, repository.ErrNotFound)
	}
	user.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&userModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func scanUser(m *userModel, err error) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return userFromModel(m), nil
}
