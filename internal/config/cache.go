package config

import "time"

// CacheConfig controls the Redis cache of classifier predictions.  When
// Enabled is false every inference reaches the classifier.  Entries are
// namespaced under Prefix and expire after TTL; a successful training run
// bumps a generation counter so older entries are never served again.
type CacheConfig struct {
    Enabled  bool
    TTL      time.Duration
    Prefix   string
    MaxQuery int // longer queries bypass the cache
}

// LoadCacheConfig reads CACHE_* variables, falling back to defaults.
func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:  envBool("CACHE_ENABLED", true),
        TTL:      envDur("CACHE_TTL", 10*time.Minute),
        Prefix:   envStr("CACHE_PREFIX", "pred"),
        MaxQuery: envInt("CACHE_MAX_QUERY_BYTES", 4096),
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 10 * time.Minute
    }
    return cfg
}
