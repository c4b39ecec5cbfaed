package repository

import (
	"context"
	"time"

	"homelist/internal/domain"
)

// TokenRepository keeps the relational record of issued access tokens.
type TokenRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, token *domain.Token) (int64, error)
	Revoke(ctx context.Context, jti string, at time.Time) error
}

// TokenCache is the key-value side of the session: the latest token issued to
// each user and the set of revoked tokens.
type TokenCache interface {
	// SwapUserToken stores token as the user's latest and returns the one it
	// replaced, or "" if there was none, in a single atomic step.
	SwapUserToken(ctx context.Context, userID int64, token string, ttl time.Duration) (string, error)
	// ClearUserToken removes the user's latest token only if it is still token.
	ClearUserToken(ctx context.Context, userID int64, token string) (bool, error)
	Blacklist(ctx context.Context, token string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
