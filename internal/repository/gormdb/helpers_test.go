package gormdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"homelist/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(DriverSQLite, ":memory:", "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	ctx := context.Background()
	require.NoError(t, NewUserRepository(db).Init(ctx))
	require.NoError(t, NewListingRepository(db).Init(ctx))
	require.NoError(t, NewTokenRepository(db).Init(ctx))
	require.NoError(t, NewCounterRepository(db).Init(ctx))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Gender:       domain.GenderNotSpecified,
	}
	_, err := NewUserRepository(db).Create(context.Background(), user)
	require.NoError(t, err)
	return user
}
