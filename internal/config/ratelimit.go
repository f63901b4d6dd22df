package config

import "time"

// RateLimitConfig tunes the Redis token buckets that guard the login route.
// Every attempt takes one token from the bucket of the submitted username
// and one from the bucket of the client IP; it is refused when either is
// empty.  UserCapacity throttles guessing against one account from many
// hosts, IPCapacity throttles one host spraying many accounts.  Both buckets
// regain RefillTokens every RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    UserCapacity   int
    IPCapacity     int // 0 disables the per-IP bucket
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration // idle buckets are dropped after TTL
    Prefix         string
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables and clamps them to
// usable values.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        UserCapacity:   envInt("RATE_LIMIT_USER_CAPACITY", 5),
        IPCapacity:     envInt("RATE_LIMIT_IP_CAPACITY", 20),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 12*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 15*time.Minute),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl:login"),
    }
    if cfg.UserCapacity < 1 {
        cfg.UserCapacity = 1
    }
    if cfg.IPCapacity < 0 {
        cfg.IPCapacity = 0
    }
    if cfg.RefillTokens < 1 {
        cfg.RefillTokens = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    // A bucket must outlive the time it takes to refill from empty.
    full := max(cfg.UserCapacity, cfg.IPCapacity)
    if minTTL := time.Duration(full/cfg.RefillTokens+1) * cfg.RefillInterval; cfg.TTL < minTTL {
        cfg.TTL = minTTL
    }
    return cfg
}
