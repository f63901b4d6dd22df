package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/sentiment-analyzer/internal/logs"
	"github.com/iliyamo/sentiment-analyzer/internal/model"
	"github.com/iliyamo/sentiment-analyzer/internal/queue"
	"github.com/iliyamo/sentiment-analyzer/internal/repository"
)

// ActivityStore upserts per-user activity timestamps.
type ActivityStore interface {
	Upsert(ctx context.Context, username string, kind model.ActivityKind, at time.Time) error
	GetByUsername(ctx context.Context, username string) (model.ActivityRecord, error)
}

// ActivityPublisher forwards recorded activity to the message broker.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, ev queue.ActivityRecordedEvent) error
}

// ActivityService records the last login, training and inference per user.
type ActivityService struct {
	store ActivityStore
	pub   ActivityPublisher
	now   func() time.Time
}

// NewActivityService returns a service writing to store.  pub may be nil,
// in which case no events are published.
func NewActivityService(store ActivityStore, pub ActivityPublisher) *ActivityService {
	return &ActivityService{
		store: store,
		pub:   pub,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Record sets the kind's timestamp for username to now.  The event publish
// that follows is best effort and never fails the call.
func (s *ActivityService) Record(ctx context.Context, username string, kind model.ActivityKind) error {
	if strings.TrimSpace(username) == "" || !kind.Valid() {
		return fmt.Errorf("%w: activity %s for %q", ErrInvalidInput, kind, username)
	}
	at := s.now()
	if err := s.store.Upsert(ctx, username, kind, at); err != nil {
		return storageErr("record activity", err)
	}
	if s.pub != nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		ev := queue.ActivityRecordedEvent{Username: username, Kind: kind.String(), At: at}
		if err := s.pub.PublishActivity(pctx, ev); err != nil {
			logs.Logger.WithError(err).WithField("kind", kind.String()).Warn("activity event not published")
		}
	}
	return nil
}

// Get returns the activity row for username, ErrNotFound if it has none.
func (s *ActivityService) Get(ctx context.Context, username string) (model.ActivityRecord, error) {
	rec, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ActivityRecord{}, ErrNotFound
		}
		return model.ActivityRecord{}, storageErr("get activity", err)
	}
	return rec, nil
}
