package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homelist/internal/domain"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	dob := time.Date(1995, 3, 1, 0, 0, 0, 0, time.UTC)

	user, err := env.users.Register(context.Background(), RegisterInput{
		Username:    "  ali ",
		FullName:    "ali khandi",
		Email:       "alikhandi@gmail.com",
		Password:    "Alik@1234",
		DateOfBirth: &dob,
		Gender:      domain.GenderMale,
	})
	require.NoError(t, err)
	assert.Positive(t, user.ID)
	assert.Equal(t, "ali", user.Username)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, domain.GenderMale, user.Gender)
}

func TestRegisterDefaultsGender(t *testing.T) {
	env := newTestEnv(t)

	user := env.register(t, "fatemeh", "Fatemeh@1234")
	assert.Equal(t, domain.GenderNotSpecified, user.Gender)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ali", "Alik@1234")

	_, err := env.users.Register(context.Background(), RegisterInput{
		Username: "ali", Email: "other@example.com", Password: "Alik@1234",
	})
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	old := time.Date(1939, 12, 31, 0, 0, 0, 0, time.UTC)
	future := time.Now().AddDate(1, 0, 0)

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing username", RegisterInput{Email: "a@b.co", Password: "Alik@1234"}, "userName"},
		{"bad email", RegisterInput{Username: "a", Email: "nope", Password: "Alik@1234"}, "email"},
		{"weak password", RegisterInput{Username: "a", Email: "a@b.co", Password: "password"}, "password"},
		{"born before 1940", RegisterInput{Username: "a", Email: "a@b.co", Password: "Alik@1234", DateOfBirth: &old}, "DoB"},
		{"born in future", RegisterInput{Username: "a", Email: "a@b.co", Password: "Alik@1234", DateOfBirth: &future}, "DoB"},
		{"bad gender", RegisterInput{Username: "a", Email: "a@b.co", Password: "Alik@1234", Gender: "OTHER"}, "gender"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.users.Register(context.Background(), tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestAuthenticateUser(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ali", "Alik@1234")
	ctx := context.Background()

	user, err := env.users.Authenticate(ctx, "ali", "Alik@1234")
	require.NoError(t, err)
	assert.Equal(t, "ali", user.Username)
	assert.Empty(t, user.PasswordHash)

	_, err = env.users.Authenticate(ctx, "ali", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.users.Authenticate(ctx, "invalid_user", "invalid_password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.users.Authenticate(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "ali", "Alik@1234")
	ctx := context.Background()

	name := "Ali Khandi"
	gender := domain.GenderMale
	updated, err := env.users.UpdateProfile(ctx, user.ID, ProfilePatch{FullName: &name, Gender: &gender})
	require.NoError(t, err)
	assert.Equal(t, "Ali Khandi", updated.FullName)
	assert.Equal(t, domain.GenderMale, updated.Gender)
	assert.Equal(t, "ali@example.com", updated.Email)
	assert.False(t, updated.UpdatedAt.Before(user.UpdatedAt))

	newPassword := "Changed#2024"
	_, err = env.users.UpdateProfile(ctx, user.ID, ProfilePatch{Password: &newPassword})
	require.NoError(t, err)
	_, err = env.users.Authenticate(ctx, "ali", "Alik@1234")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.users.Authenticate(ctx, "ali", newPassword)
	require.NoError(t, err)

	weak := "weak"
	_, err = env.users.UpdateProfile(ctx, user.ID, ProfilePatch{Password: &weak})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = env.users.UpdateProfile(ctx, 999, ProfilePatch{FullName: &name})
	require.ErrorIs(t, err, ErrUserNotFound)
}
