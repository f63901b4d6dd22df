package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/sentiment-analyzer/internal/model"
)

// ActivityRepo maintains one `activity_log` row per username.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

// activityColumn maps each kind to its timestamp column.  The column name
// is interpolated into SQL, so it must only ever come from this switch.
func activityColumn(kind model.ActivityKind) (string, error) {
	switch kind {
	case model.ActivityLogin:
		return "last_login", nil
	case model.ActivityTraining:
		return "last_training", nil
	case model.ActivityInference:
		return "last_inference", nil
	}
	return "", fmt.Errorf("unknown activity kind %d", uint8(kind))
}

// Upsert sets the column for kind to at, creating the row when absent and
// leaving the other columns untouched.  The whole operation is a single
// INSERT ... ON DUPLICATE KEY UPDATE, so concurrent upserts of different
// kinds for the same user cannot overwrite each other.  GREATEST keeps each
// column from moving backwards when two calls race.
func (r *ActivityRepo) Upsert(ctx context.Context, username string, kind model.ActivityKind, at time.Time) error {
	col, err := activityColumn(kind)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(
		"INSERT INTO activity_log (username, %[1]s) VALUES (?,?) "+
			"ON DUPLICATE KEY UPDATE %[1]s = GREATEST(COALESCE(%[1]s, ?), ?)", col)
	at = at.UTC()
	if _, err := r.DB.ExecContext(ctx, q, username, at, at, at); err != nil {
		return fmt.Errorf("upsert activity: %w", err)
	}
	return nil
}

// GetByUsername returns the activity row for username.
func (r *ActivityRepo) GetByUsername(ctx context.Context, username string) (model.ActivityRecord, error) {
	var (
		rec                     model.ActivityRecord
		login, train, inference sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT username, last_login, last_training, last_inference FROM activity_log WHERE username=? LIMIT 1",
		username).Scan(&rec.Username, &login, &train, &inference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ActivityRecord{}, ErrNotFound
		}
		return model.ActivityRecord{}, fmt.Errorf("select activity: %w", err)
	}
	rec.LastLogin = nullTimePtr(login)
	rec.LastTraining = nullTimePtr(train)
	rec.LastInference = nullTimePtr(inference)
	return rec, nil
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
