package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/sentiment-analyzer/internal/logs"
	"github.com/iliyamo/sentiment-analyzer/internal/model"
	"github.com/iliyamo/sentiment-analyzer/internal/repository"
	"github.com/iliyamo/sentiment-analyzer/internal/utils"
)

// DefaultTokenTTL is the validity window of a session token.
const DefaultTokenTTL = 24 * time.Hour

// TokenStore persists session tokens.
type TokenStore interface {
	Create(ctx context.Context, t *model.Token) error
	GetByToken(ctx context.Context, token string) (model.Token, error)
	DeleteByToken(ctx context.Context, token string) (bool, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenService issues, verifies and revokes opaque session tokens.
//
// A token is Valid while now < expires_at and Expired from expires_at on.
// Revoke deletes the row from either state.  Expired rows are never made
// valid again; SweepExpired only removes them.
type TokenService struct {
	store    TokenStore
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

func NewTokenService(store TokenStore, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		store:    store,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: utils.NewSessionToken,
	}
}

// Issue creates and persists a token for username.
func (s *TokenService) Issue(ctx context.Context, username string) (model.Token, error) {
	if strings.TrimSpace(username) == "" {
		return model.Token{}, fmt.Errorf("%w: empty username", ErrInvalidInput)
	}
	raw, err := s.newToken()
	if err != nil {
		return model.Token{}, fmt.Errorf("generate token: %w", err)
	}
	now := s.now()
	t := model.Token{
		Username:  username,
		Token:     raw,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Create(ctx, &t); err != nil {
		return model.Token{}, storageErr("issue token", err)
	}
	return t, nil
}

// Verify reports whether token exists and has not expired.  It fails
// closed: empty, malformed and unknown tokens are simply false.
func (s *TokenService) Verify(ctx context.Context, token string) (bool, error) {
	t, err := s.lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return t.ValidAt(s.now()), nil
}

// ResolveUsername returns the owner of token whether or not it is still
// valid.  Authorization decisions must call Verify as well.
func (s *TokenService) ResolveUsername(ctx context.Context, token string) (string, error) {
	t, err := s.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	return t.Username, nil
}

// Authenticate combines Verify and ResolveUsername over a single read.  Any
// token that would fail Verify yields ErrSessionExpired.
func (s *TokenService) Authenticate(ctx context.Context, token string) (string, error) {
	t, err := s.lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrSessionExpired
		}
		return "", err
	}
	if !t.ValidAt(s.now()) {
		return t.Username, ErrSessionExpired
	}
	return t.Username, nil
}

// Revoke deletes token.  Revoking an absent or malformed token is a no-op.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if !utils.IsWellFormedToken(token) {
		return nil
	}
	if _, err := s.store.DeleteByToken(ctx, token); err != nil {
		return storageErr("revoke token", err)
	}
	return nil
}

// SweepExpired deletes tokens that expired more than grace ago.
func (s *TokenService) SweepExpired(ctx context.Context, grace time.Duration) (int64, error) {
	n, err := s.store.DeleteExpiredBefore(ctx, s.now().Add(-grace))
	if err != nil {
		return 0, storageErr("sweep tokens", err)
	}
	return n, nil
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (s *TokenService) RunSweeper(ctx context.Context, interval, grace time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx, grace)
			if err != nil {
				logs.Logger.WithError(err).Warn("token sweep failed")
				continue
			}
			if n > 0 {
				logs.Logger.WithField("deleted", n).Info("expired tokens purged")
			}
		}
	}
}

func (s *TokenService) lookup(ctx context.Context, token string) (model.Token, error) {
	if !utils.IsWellFormedToken(token) {
		return model.Token{}, ErrNotFound
	}
	t, err := s.store.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Token{}, ErrNotFound
		}
		return model.Token{}, storageErr("lookup token", err)
	}
	return t, nil
}
