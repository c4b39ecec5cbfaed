package repository

import (
	"context"

	"homelist/internal/domain"
)

// ListingRepository exposes persistence operations for listings.
type ListingRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, listing *domain.Listing) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Listing, error)
	List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error)
	Update(ctx context.Context, listing *domain.Listing) error
	Delete(ctx context.Context, id int64) error
}
