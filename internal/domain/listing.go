package domain

import "time"

type ListingType string

const (
	ListingTypeHouse     ListingType = "HOUSE"
	ListingTypeApartment ListingType = "APARTMENT"
)

func (t ListingType) Valid() bool {
	return t == ListingTypeHouse || t == ListingTypeApartment
}

// Listing is a property offered by its owning user.
type Listing struct {
	ID           int64
	Type         ListingType
	AvailableNow bool
	Address      string
	UserID       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListingFilter narrows a listing query. Zero values mean "any".
type ListingFilter struct {
	Type         ListingType
	AvailableNow *bool
	UserID       int64
	Limit        int
	Offset       int
}

// Photo is an image stored for a listing in object storage.
type Photo struct {
	Key          string
	URL          string
	Size         int64
	LastModified *time.Time
}
