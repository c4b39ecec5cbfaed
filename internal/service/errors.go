package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers every reason a bearer token is not accepted.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserAlreadyExists is returned when attempting to register with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrListingNotFound   = errors.New("listing not found")
	ErrPhotoNotFound     = errors.New("photo not found")
	// ErrStorageDisabled is returned by photo operations when no bucket is configured.
	ErrStorageDisabled = errors.New("storage service not configured")
)

// ForbiddenError reports an operation attempted by someone other than the owner.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

// ValidationError reports input that breaks a field rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
