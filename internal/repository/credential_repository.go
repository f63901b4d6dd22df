package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/sentiment-analyzer/internal/model"
)

// CredentialRepo persists one bcrypt hash per username in `credentials`.
type CredentialRepo struct{ DB *sql.DB }

func NewCredentialRepo(db *sql.DB) *CredentialRepo { return &CredentialRepo{DB: db} }

// Create inserts a credential row.  ErrDuplicate if the username exists.
func (r *CredentialRepo) Create(ctx context.Context, c model.Credential) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO credentials (username, password_hash) VALUES (?,?)",
		c.Username, c.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// GetByUsername fetches the stored hash for username.
func (r *CredentialRepo) GetByUsername(ctx context.Context, username string) (model.Credential, error) {
	var c model.Credential
	err := r.DB.QueryRowContext(ctx,
		"SELECT username, password_hash FROM credentials WHERE username=? LIMIT 1",
		username).Scan(&c.Username, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Credential{}, ErrNotFound
		}
		return model.Credential{}, fmt.Errorf("select credential: %w", err)
	}
	return c, nil
}
