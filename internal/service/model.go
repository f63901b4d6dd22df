package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/sentiment-analyzer/internal/classifier"
	"github.com/iliyamo/sentiment-analyzer/internal/lock"
	"github.com/iliyamo/sentiment-analyzer/internal/logs"
	"github.com/iliyamo/sentiment-analyzer/internal/model"
)

// Defaults for the training lock.
const (
	DefaultTrainingLockKey = "training_lock"
	DefaultTrainingLockTTL = 300 * time.Second
)

// TrainStatus is the outcome of a training request.
type TrainStatus int

const (
	TrainCompleted TrainStatus = iota + 1
	TrainInProgress
	TrainFailed
)

func (s TrainStatus) String() string {
	switch s {
	case TrainCompleted:
		return "completed"
	case TrainInProgress:
		return "already_in_progress"
	case TrainFailed:
		return "failed"
	}
	return "unknown"
}

// ExclusiveRunner runs fn while holding a named lock; see lock.Locker.Run.
type ExclusiveRunner interface {
	Run(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

// ActivityRecorder is the part of ActivityService used after model calls.
type ActivityRecorder interface {
	Record(ctx context.Context, username string, kind model.ActivityKind) error
}

// PredictionCache memoizes labels between training runs.  Get hands out
// the slot a missed label must be stored in, so a label computed before a
// Purge cannot be filed under the generation that follows it.
type PredictionCache interface {
	Get(ctx context.Context, query string) (label, slot string, ok bool)
	Set(ctx context.Context, slot, label string)
	Purge(ctx context.Context) error
}

// ModelService fronts the classifier.  Training is serialized through the
// exclusive lock; inference runs freely.
type ModelService struct {
	clf      classifier.Classifier
	locker   ExclusiveRunner
	activity ActivityRecorder
	lockKey  string
	lockTTL  time.Duration
	cache    PredictionCache
}

func NewModelService(clf classifier.Classifier, locker ExclusiveRunner, activity ActivityRecorder, lockKey string, lockTTL time.Duration) *ModelService {
	if lockKey == "" {
		lockKey = DefaultTrainingLockKey
	}
	if lockTTL <= 0 {
		lockTTL = DefaultTrainingLockTTL
	}
	return &ModelService{clf: clf, locker: locker, activity: activity, lockKey: lockKey, lockTTL: lockTTL}
}

// UseCache serves repeated inference queries from c.  The cache is purged
// after every successful training run.
func (s *ModelService) UseCache(c PredictionCache) { s.cache = c }

// Train retrains the model unless another training run holds the lock, in
// which case it returns TrainInProgress without touching the classifier.
// The lock is released before the training activity is recorded.
func (s *ModelService) Train(ctx context.Context, username string) (TrainStatus, error) {
	log := logs.Logger.WithField("user", username)
	started := time.Now()

	err := s.locker.Run(ctx, s.lockKey, s.lockTTL, func(ctx context.Context) error {
		log.Info("training started")
		return s.clf.Train(ctx)
	})
	switch {
	case errors.Is(err, lock.ErrLockHeld):
		log.Info("training already in progress")
		return TrainInProgress, nil
	case errors.Is(err, lock.ErrUnavailable):
		return TrainFailed, storageErr("training lock", err)
	case err != nil:
		log.WithError(err).Error("training failed")
		return TrainFailed, fmt.Errorf("train: %w", err)
	}
	log.WithField("took", time.Since(started).Round(time.Millisecond)).Info("training completed")

	if s.cache != nil {
		if err := s.cache.Purge(ctx); err != nil {
			log.WithError(err).Warn("prediction cache not purged")
		}
	}

	if err := s.activity.Record(ctx, username, model.ActivityTraining); err != nil {
		return TrainCompleted, err
	}
	return TrainCompleted, nil
}

// Infer labels query and records the inference.  ErrInvalidInput for an
// empty query.
func (s *ModelService) Infer(ctx context.Context, username, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: no query passed", ErrInvalidInput)
	}
	var label, slot string
	hit := false
	if s.cache != nil {
		label, slot, hit = s.cache.Get(ctx, query)
	}
	if !hit {
		var err error
		label, err = s.clf.Infer(ctx, query)
		if err != nil {
			return "", fmt.Errorf("infer: %w", err)
		}
		if s.cache != nil {
			s.cache.Set(ctx, slot, label)
		}
	}
	if err := s.activity.Record(ctx, username, model.ActivityInference); err != nil {
		return label, err
	}
	return label, nil
}
