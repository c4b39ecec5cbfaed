package domain

import "time"

// Gender is the self-reported gender stored on a user profile.
type Gender string

const (
	GenderMale         Gender = "MALE"
	GenderFemale       Gender = "FEMALE"
	GenderNotSpecified Gender = "NOT_SPECIFIED"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderNotSpecified:
		return true
	}
	return false
}

// User represents an authenticated user of the system.
type User struct {
	ID           int64
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	DateOfBirth  *time.Time
	Gender       Gender
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
