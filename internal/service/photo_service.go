package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"homelist/internal/domain"
	"homelist/internal/repository"
	"homelist/internal/storage"
)

const defaultMaxPhotoSize = 10 << 20

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type PhotoConfig struct {
	Bucket    string
	KeyPrefix string
	URLExpiry time.Duration
	MaxSize   int64
}

// PhotoService manages the images attached to a listing.
type PhotoService interface {
	Upload(ctx context.Context, actorID, listingID int64, contentType string, size int64, body io.Reader) (*domain.Photo, error)
	List(ctx context.Context, listingID int64) ([]domain.Photo, error)
	Delete(ctx context.Context, actorID, listingID int64, name string) error
	DeleteAll(ctx context.Context, listingID int64) error
}

type photoService struct {
	listings repository.ListingRepository
	store    storage.Service
	cfg      PhotoConfig
}

// NewPhotoService returns a service whose operations fail with
// ErrStorageDisabled when store is nil or no bucket is configured.
func NewPhotoService(listings repository.ListingRepository, store storage.Service, cfg PhotoConfig) PhotoService {
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = defaultMaxPhotoSize
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &photoService{
		listings: listings,
		store:    store,
		cfg:      cfg,
	}
}

func (s *photoService) enabled() bool {
	return s.store != nil && s.cfg.Bucket != ""
}

func (s *photoService) Upload(ctx context.Context, actorID, listingID int64, contentType string, size int64, body io.Reader) (*domain.Photo, error) {
	if !s.enabled() {
		return nil, ErrStorageDisabled
	}
	if err := s.authorize(ctx, actorID, listingID); err != nil {
		return nil, err
	}

	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := photoExtensions[mediaType]
	if !ok {
		return nil, invalid("file", "only jpeg, png, webp and gif images are accepted")
	}
	if size <= 0 {
		return nil, invalid("file", "file is empty")
	}
	if size > s.cfg.MaxSize {
		return nil, invalid("file", fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxSize))
	}

	name := uuid.NewString() + ext
	key := s.key(listingID, name)
	if err := s.store.Upload(ctx, s.cfg.Bucket, key, mediaType, io.LimitReader(body, s.cfg.MaxSize)); err != nil {
		return nil, err
	}

	url, err := s.store.GetObjectURL(ctx, s.cfg.Bucket, key, s.cfg.URLExpiry)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &domain.Photo{Key: name, URL: url, Size: size, LastModified: &now}, nil
}

func (s *photoService) List(ctx context.Context, listingID int64) ([]domain.Photo, error) {
	if !s.enabled() {
		return nil, ErrStorageDisabled
	}
	if _, err := s.listing(ctx, listingID); err != nil {
		return nil, err
	}

	objects, err := s.store.ListObjects(ctx, s.cfg.Bucket, s.prefix(listingID))
	if err != nil {
		return nil, err
	}
	photos := make([]domain.Photo, 0, len(objects))
	for _, obj := range objects {
		url, err := s.store.GetObjectURL(ctx, s.cfg.Bucket, obj.Key, s.cfg.URLExpiry)
		if err != nil {
			return nil, err
		}
		photos = append(photos, domain.Photo{
			Key:          path.Base(obj.Key),
			URL:          url,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return photos, nil
}

func (s *photoService) Delete(ctx context.Context, actorID, listingID int64, name string) error {
	if !s.enabled() {
		return ErrStorageDisabled
	}
	if err := s.authorize(ctx, actorID, listingID); err != nil {
		return err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return ErrPhotoNotFound
	}

	key := s.key(listingID, name)
	objects, err := s.store.ListObjects(ctx, s.cfg.Bucket, key)
	if err != nil {
		return err
	}
	found := false
	for _, obj := range objects {
		if obj.Key == key {
			found = true
			break
		}
	}
	if !found {
		return ErrPhotoNotFound
	}
	return s.store.DeleteObject(ctx, s.cfg.Bucket, key)
}

func (s *photoService) DeleteAll(ctx context.Context, listingID int64) error {
	if !s.enabled() {
		return ErrStorageDisabled
	}
	return s.store.DeletePrefix(ctx, s.cfg.Bucket, s.prefix(listingID))
}

func (s *photoService) authorize(ctx context.Context, actorID, listingID int64) error {
	listing, err := s.listing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.UserID != actorID {
		return &ForbiddenError{Reason: "Only owner can edit"}
	}
	return nil
}

func (s *photoService) listing(ctx context.Context, id int64) (*domain.Listing, error) {
	listing, err := s.listings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

// prefix ends in a slash so listing 1 never matches the photos of listing 10.
func (s *photoService) prefix(listingID int64) string {
	id := strconv.FormatInt(listingID, 10)
	if s.cfg.KeyPrefix == "" {
		return id + "/"
	}
	return s.cfg.KeyPrefix + "/" + id + "/"
}

func (s *photoService) key(listingID int64, name string) string {
	return s.prefix(listingID) + name
}
