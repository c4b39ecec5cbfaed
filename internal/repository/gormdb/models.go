package gormdb

import (
	"time"

	"homelist/internal/domain"
)

type userModel struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:150;not null"`
	FullName     string `gorm:"not null;default:''"`
	Email        string `gorm:"size:320;not null"`
	PasswordHash string `gorm:"not null"`
	DateOfBirth  *time.Time
	Gender       string `gorm:"size:16;not null;default:NOT_SPECIFIED"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

type listingModel struct {
	ID           int64      `gorm:"primaryKey"`
	Type         string     `gorm:"size:16;not null;index"`
	AvailableNow bool       `gorm:"not null;default:false"`
	Address      string     `gorm:"not null"`
	UserID       int64      `gorm:"not null;index"`
	User         *userModel `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (listingModel) TableName() string { return "listings" }

type tokenModel struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"not null;index"`
	User      *userModel `gorm:"constraint:OnDelete:CASCADE"`
	JTI       string     `gorm:"column:jti;size:64;uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (tokenModel) TableName() string { return "tokens" }

type counterModel struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (counterModel) TableName() string { return "counters" }

func userToModel(u *domain.User) userModel {
	return userModel{
		ID:           u.ID,
		Username:     u.Username,
		FullName:     u.FullName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		DateOfBirth:  u.DateOfBirth,
		Gender:       string(u.Gender),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m *userModel) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		FullName:     m.FullName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		DateOfBirth:  m.DateOfBirth,
		Gender:       domain.Gender(m.Gender),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func listingToModel(l *domain.Listing) listingModel {
	return listingModel{
		ID:           l.ID,
		Type:         string(l.Type),
		AvailableNow: l.AvailableNow,
		Address:      l.Address,
		UserID:       l.UserID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func listingFromModel(m *listingModel) domain.Listing {
	return domain.Listing{
		ID:           m.ID,
		Type:         domain.ListingType(m.Type),
		AvailableNow: m.AvailableNow,
		Address:      m.Address,
		UserID:       m.UserID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
