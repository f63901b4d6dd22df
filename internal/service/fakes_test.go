package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/sentiment-analyzer/internal/model"
	"github.com/iliyamo/sentiment-analyzer/internal/queue"
	"github.com/iliyamo/sentiment-analyzer/internal/repository"
)

var errBoom = errors.New("boom")

// fakeCredentials is an in-memory CredentialStore.
type fakeCredentials struct {
	mu    sync.Mutex
	rows  map[string]string
	err   error
	reads int
}

func newFakeCredentials() *fakeCredentials { return &fakeCredentials{rows: map[string]string{}} }

func (f *fakeCredentials) Create(ctx context.Context, c model.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[c.Username]; ok {
		return repository.ErrDuplicate
	}
	f.rows[c.Username] = c.PasswordHash
	return nil
}

func (f *fakeCredentials) GetByUsername(ctx context.Context, username string) (model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return model.Credential{}, f.err
	}
	h, ok := f.rows[username]
	if !ok {
		return model.Credential{}, repository.ErrNotFound
	}
	return model.Credential{Username: username, PasswordHash: h}, nil
}

// fakeTokens is an in-memory TokenStore.
type fakeTokens struct {
	mu     sync.Mutex
	rows   map[string]model.Token
	nextID uint64
	err    error
	reads  int
}

func newFakeTokens() *fakeTokens { return &fakeTokens{rows: map[string]model.Token{}} }

func (f *fakeTokens) Create(ctx context.Context, t *model.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[t.Token]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	t.ID = f.nextID
	f.rows[t.Token] = *t
	return nil
}

func (f *fakeTokens) GetByToken(ctx context.Context, token string) (model.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return model.Token{}, f.err
	}
	t, ok := f.rows[token]
	if !ok {
		return model.Token{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTokens) DeleteByToken(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.rows[token]
	delete(f.rows, token)
	return ok, nil
}

func (f *fakeTokens) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for k, t := range f.rows {
		if !t.ExpiresAt.After(cutoff) {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

// fakeActivity mimics the single-statement upsert.
type fakeActivity struct {
	mu   sync.Mutex
	rows map[string]model.ActivityRecord
	err  error
}

func newFakeActivity() *fakeActivity { return &fakeActivity{rows: map[string]model.ActivityRecord{}} }

func (f *fakeActivity) Upsert(ctx context.Context, username string, kind model.ActivityKind, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	rec := f.rows[username]
	rec.Username = username
	at2 := at
	switch kind {
	case model.ActivityLogin:
		rec.LastLogin = &at2
	case model.ActivityTraining:
		rec.LastTraining = &at2
	case model.ActivityInference:
		rec.LastInference = &at2
	}
	f.rows[username] = rec
	return nil
}

func (f *fakeActivity) GetByUsername(ctx context.Context, username string) (model.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.ActivityRecord{}, f.err
	}
	rec, ok := f.rows[username]
	if !ok {
		return model.ActivityRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.ActivityRecordedEvent
	err    error
}

func (f *fakePublisher) PublishActivity(ctx context.Context, ev queue.ActivityRecordedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

type fakeClassifier struct {
	mu         sync.Mutex
	trainCalls int
	trainErr   error
	trainHook  func(ctx context.Context)
	label      string
	inferErr   error
	lastQuery  string
}

func (f *fakeClassifier) Train(ctx context.Context) error {
	f.mu.Lock()
	f.trainCalls++
	hook := f.trainHook
	f.mu.Unlock()
	if hook != nil {
		hook(ctx)
	}
	return f.trainErr
}

func (f *fakeClassifier) Infer(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = text
	return f.label, f.inferErr
}

func (f *fakeClassifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trainCalls
}

// fixedClock is a settable clock for token expiry tests.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
