// Package cache keeps classifier predictions in Redis so repeated queries
// skip the external model.  Keys embed a generation number that Purge
// increments, which retires every entry at once without a key scan.
package cache

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/sentiment-analyzer/internal/config"
	"github.com/iliyamo/sentiment-analyzer/internal/logs"
)

// Predictions is a query → label cache.  A nil *Predictions is a valid,
// always-missing cache.
type Predictions struct {
	rdb redis.UniversalClient
	cfg config.CacheConfig
}

// NewPredictions returns nil when caching is disabled or rdb is nil.
func NewPredictions(cfg config.CacheConfig, rdb redis.UniversalClient) *Predictions {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	return &Predictions{rdb: rdb, cfg: cfg}
}

func (p *Predictions) genKey() string { return p.cfg.Prefix + ":gen" }

func (p *Predictions) key(ctx context.Context, query string) (string, error) {
	gen, err := p.rdb.Get(ctx, p.genKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	sum := sha1.Sum([]byte(strings.TrimSpace(query)))
	return fmt.Sprintf("%s:%d:%x", p.cfg.Prefix, gen, sum[:]), nil
}

func (p *Predictions) cacheable(query string) bool {
	return p != nil && (p.cfg.MaxQuery <= 0 || len(query) <= p.cfg.MaxQuery)
}

// Get returns the cached label for query.  On a miss it also returns the
// slot the label belongs in, bound to the generation current at lookup; an
// empty slot means the query is not cacheable.  Redis errors count as a
// miss.
func (p *Predictions) Get(ctx context.Context, query string) (label, slot string, ok bool) {
	if !p.cacheable(query) {
		return "", "", false
	}
	key, err := p.key(ctx, query)
	if err != nil {
		logs.Logger.WithError(err).Debug("prediction cache: generation lookup failed")
		return "", "", false
	}
	label, err = p.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logs.Logger.WithError(err).Debug("prediction cache: get failed")
		}
		return "", key, false
	}
	return label, key, true
}

// Set stores label in slot, as returned by Get.  A label computed before a
// Purge therefore lands in the retired generation and is never served.
// Failures are logged and dropped.
func (p *Predictions) Set(ctx context.Context, slot, label string) {
	if p == nil || slot == "" || label == "" {
		return
	}
	if err := p.rdb.Set(ctx, slot, label, p.cfg.TTL).Err(); err != nil {
		logs.Logger.WithError(err).Debug("prediction cache: set failed")
	}
}

// Purge retires every cached prediction.
func (p *Predictions) Purge(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if err := p.rdb.Incr(ctx, p.genKey()).Err(); err != nil {
		return fmt.Errorf("purge predictions: %w", err)
	}
	return nil
}
