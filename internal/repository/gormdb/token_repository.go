package gormdb

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"homelist/internal/domain"
	"homelist/internal/repository"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Init(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&tokenModel{}); err != nil {
		return fmt.Errorf("migrate tokens table: %w", err)
	}
	return nil
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.Token) (int64, error) {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	m := tokenModel{
		UserID:    token.UserID,
		JTI:       token.JTI,
		ExpiresAt: token.ExpiresAt.UTC(),
		RevokedAt: token.RevokedAt,
		CreatedAt: token.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert token: %w", repository.ErrConflict)
		}
		return 0, fmt.Errorf("insert token: %w", err)
	}
	token.ID = m.ID
	return m.ID, nil
}

// Revoke stamps the token as revoked. Revoking an unknown or already revoked
// token is not an error.
func (r *TokenRepository) Revoke(ctx context.Context, jti string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&tokenModel{}).
		Where("jti = ? AND revoked_at IS NULL", jti).
		Update("revoked_at", at.UTC()).Error
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
