package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sentiment-analyzer/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var dupErr = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

// ---------- credentials ----------

func TestCredentialCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCredentialRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credentials (username, password_hash) VALUES (?,?)")).
		WithArgs("alice", "$2a$hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), model.Credential{Username: "alice", PasswordHash: "$2a$hash"}))
}

func TestCredentialCreate_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCredentialRepo(db)

	mock.ExpectExec("INSERT INTO credentials").WillReturnError(dupErr)

	err := repo.Create(context.Background(), model.Credential{Username: "alice", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCredentialCreate_StorageError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCredentialRepo(db)

	down := errors.New("db down")
	mock.ExpectExec("INSERT INTO credentials").WillReturnError(down)

	err := repo.Create(context.Background(), model.Credential{Username: "alice", PasswordHash: "h"})
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, ErrDuplicate)
}

func TestCredentialGetByUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCredentialRepo(db)

	mock.ExpectQuery(`SELECT username, password_hash FROM credentials WHERE username=\?`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash"}).AddRow("alice", "h"))

	c, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, model.Credential{Username: "alice", PasswordHash: "h"}, c)
}

func TestCredentialGetByUsername_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCredentialRepo(db)

	mock.ExpectQuery("SELECT username, password_hash FROM credentials").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash"}))

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ---------- tokens ----------

func TestTokenCreate_SetsID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tok := &model.Token{Username: "alice", Token: "t1", CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tokens (username, token, created_at, expires_at) VALUES (?,?,?,?)")).
		WithArgs("alice", "t1", now, now.Add(24*time.Hour)).
		WillReturnResult(sqlmock.NewResult(42, 1))

	require.NoError(t, repo.Create(context.Background(), tok))
	assert.Equal(t, uint64(42), tok.ID)
}

func TestTokenCreate_CollisionIsNotOverwrite(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec("INSERT INTO tokens").WillReturnError(dupErr)

	err := repo.Create(context.Background(), &model.Token{Username: "alice", Token: "t1"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestTokenGetByToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, username, token, created_at, expires_at FROM tokens WHERE token=\?`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "token", "created_at", "expires_at"}).
			AddRow(7, "alice", "t1", created, created.Add(time.Hour)))

	got, err := repo.GetByToken(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.ExpiresAt.Equal(created.Add(time.Hour)))
}

func TestTokenGetByToken_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery("SELECT id, username, token").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByToken(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenDeleteByToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec(`DELETE FROM tokens WHERE token=\?`).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM tokens WHERE token=\?`).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeleteByToken(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByToken(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTokenDeleteExpiredBefore(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM tokens WHERE expires_at <= \?`).WithArgs(cutoff).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpiredBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

// ---------- activity ----------

func TestActivityUpsert_TouchesOnlyKindColumn(t *testing.T) {
	cases := []struct {
		kind model.ActivityKind
		col  string
	}{
		{model.ActivityLogin, "last_login"},
		{model.ActivityTraining, "last_training"},
		{model.ActivityInference, "last_inference"},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewActivityRepo(db)
			at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

			q := regexp.QuoteMeta("INSERT INTO activity_log (username, "+tc.col+") VALUES (?,?) "+
				"ON DUPLICATE KEY UPDATE "+tc.col+" = GREATEST(COALESCE("+tc.col+", ?), ?)") + "$"
			mock.ExpectExec(q).WithArgs("alice", at, at, at).WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, repo.Upsert(context.Background(), "alice", tc.kind, at))
		})
	}
}

func TestActivityUpsert_UnknownKind(t *testing.T) {
	db, _ := newMock(t)
	repo := NewActivityRepo(db)

	err := repo.Upsert(context.Background(), "alice", model.ActivityKind(0), time.Now())
	assert.Error(t, err)
}

func TestActivityGetByUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewActivityRepo(db)

	login := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT username, last_login, last_training, last_inference FROM activity_log").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "last_login", "last_training", "last_inference"}).
			AddRow("alice", login, nil, nil))

	rec, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, rec.LastLogin)
	assert.True(t, rec.LastLogin.Equal(login))
	assert.Nil(t, rec.LastTraining)
	assert.Nil(t, rec.LastInference)
}

func TestActivityGetByUsername_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewActivityRepo(db)

	mock.ExpectQuery("SELECT username").WithArgs("bob").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}
