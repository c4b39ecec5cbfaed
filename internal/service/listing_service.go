package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"homelist/internal/domain"
	"homelist/internal/repository"
)

// ListingInput is the full set of fields for a new listing.
type ListingInput struct {
	Type         domain.ListingType
	AvailableNow bool
	Address      string
}

// ListingPatch is a partial listing update; nil fields are left untouched.
type ListingPatch struct {
	Type         *domain.ListingType
	AvailableNow *bool
	Address      *string
}

// ListingService coordinates listing operations and enforces ownership.
type ListingService interface {
	Get(ctx context.Context, id int64) (*domain.Listing, error)
	List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error)
	Create(ctx context.Context, ownerID int64, in ListingInput) (*domain.Listing, error)
	Update(ctx context.Context, actorID, id int64, patch ListingPatch) (*domain.Listing, error)
	Delete(ctx context.Context, actorID, id int64) error
}

type listingService struct {
	listings repository.ListingRepository
	photos   PhotoService
	logger   *logrus.Logger
}

// NewListingService builds the service. photos may be nil when object storage
// is not configured.
func NewListingService(listings repository.ListingRepository, photos PhotoService, logger *logrus.Logger) ListingService {
	if logger == nil {
		logger = logrus.New()
	}
	return &listingService{
		listings: listings,
		photos:   photos,
		logger:   logger,
	}
}

func (s *listingService) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	listing, err := s.listings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (s *listingService) List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, invalid("type", "type must be HOUSE or APARTMENT")
	}
	return s.listings.List(ctx, filter)
}

func (s *listingService) Create(ctx context.Context, ownerID int64, in ListingInput) (*domain.Listing, error) {
	if !in.Type.Valid() {
		return nil, invalid("type", "type must be HOUSE or APARTMENT")
	}
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, invalid("address", "address is required")
	}

	listing := &domain.Listing{
		Type:         in.Type,
		AvailableNow: in.AvailableNow,
		Address:      address,
		UserID:       ownerID,
	}
	if _, err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Update(ctx context.Context, actorID, id int64, patch ListingPatch) (*domain.Listing, error) {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.UserID != actorID {
		return nil, &ForbiddenError{Reason: "Only owner can edit"}
	}

	if patch.Type != nil {
		if !patch.Type.Valid() {
			return nil, invalid("type", "type must be HOUSE or APARTMENT")
		}
		listing.Type = *patch.Type
	}
	if patch.AvailableNow != nil {
		listing.AvailableNow = *patch.AvailableNow
	}
	if patch.Address != nil {
		address := strings.TrimSpace(*patch.Address)
		if address == "" {
			return nil, invalid("address", "address is required")
		}
		listing.Address = address
	}

	listing.UpdatedAt = time.Now().UTC()
	if err := s.listings.Update(ctx, listing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Delete(ctx context.Context, actorID, id int64) error {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if listing.UserID != actorID {
		return &ForbiddenError{Reason: "Only owner can delete"}
	}

	if err := s.listings.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrListingNotFound
		}
		return err
	}

	if s.photos != nil {
		if err := s.photos.DeleteAll(ctx, id); err != nil && !errors.Is(err, ErrStorageDisabled) {
			s.logger.WithError(err).WithField("listing_id", id).Warn("delete listing photos")
		}
	}
	return nil
}
