package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"homelist/internal/auth"
	"homelist/internal/domain"
	"homelist/internal/repository"
)

const minBirthYear = 1940

// RegisterInput carries the fields accepted when a user signs up.
type RegisterInput struct {
	Username    string
	FullName    string
	Email       string
	Password    string
	DateOfBirth *time.Time
	Gender      domain.Gender
}

// ProfilePatch is a partial profile update; nil fields are left untouched.
type ProfilePatch struct {
	FullName    *string
	Email       *string
	DateOfBirth *time.Time
	Gender      *domain.Gender
	Password    *string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, invalid("userName", "username is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, invalid("password", err.Error())
	}
	if err := validateBirthDate(in.DateOfBirth); err != nil {
		return nil, err
	}
	gender := in.Gender
	if gender == "" {
		gender = domain.GenderNotSpecified
	}
	if !gender.Valid() {
		return nil, invalid("gender", "gender must be MALE, FEMALE or NOT_SPECIFIED")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: hash,
		DateOfBirth:  utcDate(in.DateOfBirth),
		Gender:       gender,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

// Authenticate checks the password and returns the user. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if patch.FullName != nil {
		user.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	if patch.DateOfBirth != nil {
		if err := validateBirthDate(patch.DateOfBirth); err != nil {
			return nil, err
		}
		user.DateOfBirth = utcDate(patch.DateOfBirth)
	}
	if patch.Gender != nil {
		if !patch.Gender.Valid() {
			return nil, invalid("gender", "gender must be MALE, FEMALE or NOT_SPECIFIED")
		}
		user.Gender = *patch.Gender
	}
	if patch.Password != nil {
		if err := auth.ValidatePassword(*patch.Password); err != nil {
			return nil, invalid("password", err.Error())
		}
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) Count(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", invalid("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "value is not a valid email address")
	}
	return email, nil
}

func validateBirthDate(dob *time.Time) error {
	if dob == nil {
		return nil
	}
	if dob.Year() < minBirthYear {
		return invalid("DoB", "year must be after 1940")
	}
	if dob.After(time.Now()) {
		return invalid("DoB", "date of birth is in the future")
	}
	return nil
}

func utcDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
