package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"homelist/internal/repository"
)

const (
	userTokenPrefix = "jwt:"
	blacklistPrefix = "blacklist:"
)

// TokenCache keeps the latest token per user and the revoked-token blacklist
// in Redis. Blacklist entries expire together with the token they revoke.
type TokenCache struct {
	client *goredis.Client
}

// Open parses a redis:// URL and returns a cache backed by a new client.
func Open(url string) (*TokenCache, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	return NewTokenCache(goredis.NewClient(opts)), nil
}

func NewTokenCache(client *goredis.Client) *TokenCache {
	return &TokenCache{client: client}
}

// SwapUserToken relies on SET ... GET so concurrent logins each see the
// token they displaced and no issued token goes untracked.
func (c *TokenCache) SwapUserToken(ctx context.Context, userID int64, token string, ttl time.Duration) (string, error) {
	previous, err := c.client.SetArgs(ctx, userKey(userID), token, goredis.SetArgs{Get: true, TTL: ttl}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("swap user token: %w", err)
	}
	return previous, nil
}

var clearIfLatest = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (c *TokenCache) ClearUserToken(ctx context.Context, userID int64, token string) (bool, error) {
	n, err := clearIfLatest.Run(ctx, c.client, []string{userKey(userID)}, token).Int64()
	if err != nil {
		return false, fmt.Errorf("clear user token: %w", err)
	}
	return n > 0, nil
}

// Blacklist revokes token for ttl. A non-positive ttl means the token has
// already expired and nothing is stored.
func (c *TokenCache) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, blacklistKey(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (c *TokenCache) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}

func (c *TokenCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *TokenCache) Close() error {
	return c.client.Close()
}

func userKey(userID int64) string {
	return userTokenPrefix + strconv.FormatInt(userID, 10)
}

// tokens are hashed so keys stay short and raw credentials never sit in the keyspace
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistPrefix + hex.EncodeToString(sum[:])
}

var _ repository.TokenCache = (*TokenCache)(nil)
