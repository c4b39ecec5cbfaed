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

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) repository.ListingRepository {
	return &ListingRepository{db: db}
}

// Init must run after the users table exists; listings reference it.
func (r *ListingRepository) Init(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&listingModel{}); err != nil {
		return fmt.Errorf("migrate listings table: %w", err)
	}
	return nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) (int64, error) {
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	m := listingToModel(listing)
	if err := r.db.WithContext(ctx).Omit("User").Create(&m).Error; err != nil {
		return 0, fmt.Errorf("insert listing: %w", err)
	}
	listing.ID = m.ID
	return m.ID, nil
}

func (r *ListingRepository) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	var m listingModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("load listing %d: %w", id, err)
	}
	l := listingFromModel(&m)
	return &l, nil
}

// List returns one page of listings matching filter, ordered by id, together
// with the total number of matches.
func (r *ListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error) {
	where := func(db *gorm.DB) *gorm.DB {
		if filter.Type != "" {
			db = db.Where("type = ?", string(filter.Type))
		}
		if filter.AvailableNow != nil {
			db = db.Where("available_now = ?", *filter.AvailableNow)
		}
		if filter.UserID > 0 {
			db = db.Where("user_id = ?", filter.UserID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&listingModel{}).Scopes(where).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var rows []listingModel
	if err := r.db.WithContext(ctx).Scopes(where).Order("id").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}

	listings := make([]domain.Listing, len(rows))
	for i := range rows {
		listings[i] = listingFromModel(&rows[i])
	}
	return listings, total, nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	m := listingToModel(listing)
	res := r.db.WithContext(ctx).
		Model(&listingModel{ID: listing.ID}).
		Select("type", "available_now", "address", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return fmt.Errorf("update listing %d: %w", listing.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update listing %d: %w", listing.ID, repository.ErrNotFound)
	}
	listing.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&listingModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete listing %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete listing %d: %w", id, repository.ErrNotFound)
	}
	return nil
}
