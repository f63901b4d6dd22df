// Package service holds the business rules of the gateway: credential
// checks, session tokens, the activity log and serialized model training.
// Business negatives (wrong password, expired token, lock held) are folded
// into booleans and statuses; everything else is an error from the list
// below, matched with errors.Is.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks empty or malformed credentials, tokens or queries.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists marks a duplicate username on registration.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound marks an unknown token or username.
	ErrNotFound = errors.New("not found")
	// ErrSessionExpired marks a token that is unknown, expired or revoked.
	// The three cases are deliberately indistinguishable.
	ErrSessionExpired = errors.New("session expired")
	// ErrStorage marks an unreachable store or a failed write.  It is never
	// retried here and never reported as a validation failure.
	ErrStorage = errors.New("storage error")
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
