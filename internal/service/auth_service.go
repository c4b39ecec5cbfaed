package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"homelist/internal/auth"
	"homelist/internal/domain"
	"homelist/internal/repository"
)

const TokenTypeBearer = "bearer"

// TokenResult is returned to a client after a successful login.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	ExpiresIn   time.Duration
}

// AuthService issues, verifies and revokes access tokens. Each user holds at
// most one live token: logging in again revokes the previous one.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*TokenResult, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	users  UserService
	tokens repository.TokenRepository
	cache  repository.TokenCache
	issuer *auth.Issuer
	logger *logrus.Logger
	now    func() time.Time
}

func NewAuthService(users UserService, tokens repository.TokenRepository, cache repository.TokenCache, issuer *auth.Issuer, logger *logrus.Logger) AuthService {
	if logger == nil {
		logger = logrus.New()
	}
	return &authService{
		users:  users,
		tokens: tokens,
		cache:  cache,
		issuer: issuer,
		logger: logger,
		now:    time.Now,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*TokenResult, error) {
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, claims, err := s.issuer.Issue(user.Username, user.ID)
	if err != nil {
		return nil, err
	}

	// the audit row goes in first so a failed insert leaves the cache untouched
	record := &domain.Token{
		UserID:    user.ID,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if _, err := s.tokens.Create(ctx, record); err != nil {
		return nil, err
	}

	previous, err := s.cache.SwapUserToken(ctx, user.ID, token, s.issuer.TTL())
	if err != nil {
		if rerr := s.tokens.Revoke(ctx, claims.ID, s.now()); rerr != nil {
			s.logger.WithError(rerr).WithField("user_id", user.ID).Warn("revoke undelivered token")
		}
		return nil, err
	}
	if previous != "" {
		if err := s.revoke(ctx, previous); err != nil {
			return nil, fmt.Errorf("revoke previous token: %w", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"rotated":  previous != "",
	}).Info("user logged in")

	return &TokenResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   claims.ExpiresAt.Time,
		ExpiresIn:   s.issuer.TTL(),
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	revoked, err := s.cache.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}

	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
		}
		return nil, err
	}
	// a username re-registered after deletion must not inherit old tokens
	if user.ID != claims.UserID {
		return nil, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := s.revoke(ctx, token); err != nil {
		return err
	}

	// a concurrent login may already have replaced this token as the latest
	if _, err := s.cache.ClearUserToken(ctx, claims.UserID, token); err != nil {
		return err
	}

	s.logger.WithField("user_id", claims.UserID).Info("user logged out")
	return nil
}

// revoke blacklists token for the rest of its lifetime and stamps its audit
// row. Tokens with a bad signature are ignored; they can never authenticate.
func (s *authService) revoke(ctx context.Context, token string) error {
	claims, err := s.issuer.Inspect(token)
	if err != nil {
		s.logger.WithError(err).Warn("skip revoking unverifiable token")
		return nil
	}
	now := s.now()
	if err := s.cache.Blacklist(ctx, token, claims.Remaining(now)); err != nil {
		return err
	}
	return s.tokens.Revoke(ctx, claims.ID, now)
}
