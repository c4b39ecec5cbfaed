package gormdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"homelist/internal/domain"
	"homelist/internal/repository"
)

func TestListingRepositoryCRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "ali")

	listing := &domain.Listing{
		Type:         domain.ListingTypeHouse,
		AvailableNow: true,
		Address:      "12 Valiasr St",
		UserID:       owner.ID,
	}
	id, err := repo.Create(ctx, listing)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingTypeHouse, got.Type)
	assert.True(t, got.AvailableNow)
	assert.Equal(t, owner.ID, got.UserID)

	got.Type = domain.ListingTypeApartment
	got.AvailableNow = false
	got.Address = "7 Enghelab Sq"
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingTypeApartment, got.Type)
	assert.False(t, got.AvailableNow)
	assert.Equal(t, "7 Enghelab Sq", got.Address)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Get(ctx, id)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, id), repository.ErrNotFound)
}

func TestListingRepositoryRejectsUnknownOwner(t *testing.T) {
	repo := NewListingRepository(newTestDB(t))

	_, err := repo.Create(context.Background(), &domain.Listing{
		Type:    domain.ListingTypeHouse,
		Address: "nowhere",
		UserID:  404,
	})
	require.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestListingRepositoryListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()
	ali := createUser(t, db, "ali")
	sara := createUser(t, db, "sara")

	seed := []domain.Listing{
		{Type: domain.ListingTypeHouse, AvailableNow: true, Address: "a", UserID: ali.ID},
		{Type: domain.ListingTypeApartment, AvailableNow: true, Address: "b", UserID: ali.ID},
		{Type: domain.ListingTypeApartment, AvailableNow: false, Address: "c", UserID: sara.ID},
		{Type: domain.ListingTypeHouse, AvailableNow: false, Address: "d", UserID: sara.ID},
	}
	for i := range seed {
		_, err := repo.Create(ctx, &seed[i])
		require.NoError(t, err)
	}

	all, total, err := repo.List(ctx, domain.ListingFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, all, 4)
	assert.Equal(t, "a", all[0].Address)

	houses, total, err := repo.List(ctx, domain.ListingFilter{Type: domain.ListingTypeHouse})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, houses, 2)

	available := true
	avail, _, err := repo.List(ctx, domain.ListingFilter{AvailableNow: &available, UserID: ali.ID})
	require.NoError(t, err)
	assert.Len(t, avail, 2)

	page, total, err := repo.List(ctx, domain.ListingFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].Address)
}

func TestListingsCascadeWithOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "ali")

	id, err := repo.Create(ctx, &domain.Listing{Type: domain.ListingTypeHouse, Address: "a", UserID: owner.ID})
	require.NoError(t, err)

	require.NoError(t, db.Delete(&userModel{}, owner.ID).Error)
	_, err = repo.Get(ctx, id)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
