package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/sentiment-analyzer/internal/model"
	"github.com/iliyamo/sentiment-analyzer/internal/repository"
	"github.com/iliyamo/sentiment-analyzer/internal/utils"
)

const (
	maxUsernameLen = 100 // credentials.username VARCHAR(100)
	maxPasswordLen = 72  // bcrypt ignores input past 72 bytes
)

// CredentialStore persists hashed credentials.
type CredentialStore interface {
	Create(ctx context.Context, c model.Credential) error
	GetByUsername(ctx context.Context, username string) (model.Credential, error)
}

// CredentialService registers users and checks passwords.
type CredentialService struct {
	store     CredentialStore
	cost      int
	dummyHash string
}

// NewCredentialService hashes with bcrypt at cost.  It precomputes a hash of
// a throwaway password so lookups of unknown users pay the same bcrypt price
// as real ones.
func NewCredentialService(store CredentialStore, cost int) (*CredentialService, error) {
	dummy, err := utils.HashPassword("dummy-password-for-timing", cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt cost %d: %w", cost, err)
	}
	return &CredentialService{store: store, cost: cost, dummyHash: dummy}, nil
}

// Register stores a new credential.  ErrInvalidInput for empty or oversized
// fields, ErrAlreadyExists when the username is taken.
func (s *CredentialService) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if len(username) > maxUsernameLen || len(password) > maxPasswordLen {
		return fmt.Errorf("%w: username or password too long", ErrInvalidInput)
	}

	hash, err := utils.HashPassword(password, s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = s.store.Create(ctx, model.Credential{Username: username, PasswordHash: hash})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return ErrAlreadyExists
	default:
		return storageErr("register", err)
	}
}

// Validate reports whether password matches the stored hash for username.
// Unknown users and wrong passwords both yield false; only a storage
// failure yields an error.
func (s *CredentialService) Validate(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, nil
	}

	// bcrypt compares only the first 72 bytes, so a longer password could
	// match a stored prefix.  Register never accepts one.
	if len(password) > maxPasswordLen {
		utils.VerifyPassword(s.dummyHash, password)
		return false, nil
	}

	c, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.VerifyPassword(s.dummyHash, password)
			return false, nil
		}
		return false, storageErr("validate", err)
	}
	return utils.VerifyPassword(c.PasswordHash, password), nil
}
