package middleware

import (
    "bytes"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "io"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/sentiment-analyzer/internal/config"
    "github.com/iliyamo/sentiment-analyzer/internal/logs"
)

// maxPeek bounds how much of a JSON login body is buffered to find the
// username.  Larger bodies are charged to a shared bucket.
const maxPeek = 16 << 10

// takeScript refills every bucket in KEYS and then takes one token from each
// only if all of them have one.  ARGV: now_ms, interval_ms, refill, ttl_s,
// then one capacity per key.  Returns {allowed, min remaining, retry_ms}.
var takeScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local interval = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local tokens, stamps = {}, {}
local allowed, retry = 1, 0
for i, key in ipairs(KEYS) do
    local cap = tonumber(ARGV[4 + i])
    local st = redis.call('HMGET', key, 'tokens', 'stamp')
    local t, s = tonumber(st[1]), tonumber(st[2])
    if t == nil or s == nil then
        t, s = cap, now
    end
    local n = math.floor(math.max(0, now - s) / interval)
    if n > 0 then
        t = math.min(cap, t + n * refill)
        s = s + n * interval
    end
    if t < 1 then
        allowed = 0
        retry = math.max(retry, interval - (now - s))
    end
    tokens[i], stamps[i] = t, s
end

local remaining = -1
for i, key in ipairs(KEYS) do
    local t = tokens[i] - allowed
    if remaining < 0 or t < remaining then
        remaining = t
    end
    redis.call('HMSET', key, 'tokens', t, 'stamp', stamps[i])
    redis.call('EXPIRE', key, ttl)
end
return {allowed, remaining, retry}
`)

// NewTokenBucket throttles login attempts.  Each attempt is charged to the
// bucket of the submitted username, shared by every client, and to the
// bucket of the client IP.  An empty bucket on either side answers 429.
// When Redis is unreachable attempts are let through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb redis.UniversalClient) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            keys, caps := bucketsFor(cfg, c)
            args := []any{
                time.Now().UnixMilli(),
                cfg.RefillInterval.Milliseconds(),
                cfg.RefillTokens,
                int64(cfg.TTL / time.Second),
            }
            args = append(args, caps...)

            res, err := takeScript.Run(c.Request().Context(), rdb, keys, args...).Int64Slice()
            if err != nil || len(res) != 3 {
                logs.Logger.WithError(err).WithField("keys", keys).Warn("ratelimit: check skipped")
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.UserCapacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
            if res[0] == 1 {
                return next(c)
            }

            secs := int(math.Ceil(float64(max(res[2], 0)) / 1000))
            h.Set("Retry-After", strconv.Itoa(secs))
            logs.Logger.WithField("request_id", RequestIDFrom(c)).WithField("ip", c.RealIP()).Info("ratelimit: login throttled")
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "too_many_requests",
                "message":     "too many login attempts",
                "retry_after": secs,
            })
        }
    }
}

// bucketsFor returns the Redis keys charged by this attempt and their
// capacities.  Usernames are hashed so the key stays short and printable.
func bucketsFor(cfg config.RateLimitConfig, c echo.Context) ([]string, []any) {
    sum := sha256.Sum256([]byte(loginUsername(c)))
    keys := []string{cfg.Prefix + ":user:" + hex.EncodeToString(sum[:12])}
    caps := []any{cfg.UserCapacity}
    if cfg.IPCapacity > 0 {
        ip := c.RealIP()
        if ip == "" {
            ip = "unknown"
        }
        keys = append(keys, cfg.Prefix+":ip:"+ip)
        caps = append(caps, cfg.IPCapacity)
    }
    return keys, caps
}

type peekedBody struct {
    io.Reader
    io.Closer
}

// loginUsername reads the username the login handler will bind, without
// consuming the request body.
func loginUsername(c echo.Context) string {
    req := c.Request()
    if req.Method == http.MethodGet || req.Body == nil {
        return strings.TrimSpace(c.QueryParam("username"))
    }
    if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
        // ParseForm caches the values, so Bind still sees them.
        return strings.TrimSpace(c.FormValue("username"))
    }

    head, err := io.ReadAll(io.LimitReader(req.Body, maxPeek+1))
    req.Body = peekedBody{io.MultiReader(bytes.NewReader(head), req.Body), req.Body}
    if err != nil || len(head) > maxPeek {
        return ""
    }
    var body struct {
        Username string `json:"username"`
    }
    if json.Unmarshal(head, &body) != nil {
        return ""
    }
    return strings.TrimSpace(body.Username)
}
