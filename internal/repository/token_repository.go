package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/sentiment-analyzer/internal/model"
)

// TokenRepo persists session tokens in `tokens`.  Expiry is stored but not
// enforced here; the token service compares expires_at against its clock.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Create inserts a token row and fills t.ID.  A collision on the unique
// token column returns ErrDuplicate; the existing row is never replaced.
func (r *TokenRepo) Create(ctx context.Context, t *model.Token) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tokens (username, token, created_at, expires_at) VALUES (?,?,?,?)",
		t.Username, t.Token, t.CreatedAt.UTC(), t.ExpiresAt.UTC())
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert token: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("token id: %w", err)
	}
	t.ID = uint64(id)
	return nil
}

// GetByToken returns the row for token regardless of expiry.
func (r *TokenRepo) GetByToken(ctx context.Context, token string) (model.Token, error) {
	var t model.Token
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, username, token, created_at, expires_at FROM tokens WHERE token=? LIMIT 1",
		token).Scan(&t.ID, &t.Username, &t.Token, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Token{}, ErrNotFound
		}
		return model.Token{}, fmt.Errorf("select token: %w", err)
	}
	return t, nil
}

// DeleteByToken removes the row and reports whether one existed.
func (r *TokenRepo) DeleteByToken(ctx context.Context, token string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tokens WHERE token=?", token)
	if err != nil {
		return false, fmt.Errorf("delete token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete token: %w", err)
	}
	return n > 0, nil
}

// DeleteExpiredBefore purges tokens whose expires_at is at or before cutoff
// and returns how many rows went.
func (r *TokenRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tokens WHERE expires_at <= ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge tokens: %w", err)
	}
	return n, nil
}
