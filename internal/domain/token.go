package domain

import "time"

// Token records an issued access token so it can be audited and revoked.
type Token struct {
	ID        int64
	UserID    int64
	JTI       string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
