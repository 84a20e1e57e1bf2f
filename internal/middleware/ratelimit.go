package middleware

import (
    "math"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/hotel-room-reservation/internal/config"
)

// bookingThrottleScript stores, per key, the theoretical arrival time (in
// ms) of the next attempt.  An attempt is admitted while that time is at
// most burst-1 periods ahead of now.  Returns {allowed, remaining,
// retry_after_ms}.
var bookingThrottleScript = redis.NewScript(`
    local now = tonumber(ARGV[1])
    local period = tonumber(ARGV[2])
    local burst = tonumber(ARGV[3])

    local tat = tonumber(redis.call('GET', KEYS[1]))
    if tat == nil or tat < now then
        tat = now
    end

    local next_tat = tat + period
    local allow_at = next_tat - burst * period
    if now < allow_at then
        return { 0, 0, allow_at - now }
    end

    redis.call('SET', KEYS[1], next_tat, 'PX', next_tat - now)
    local remaining = math.floor((burst * period - (next_tat - now)) / period)
    return { 1, remaining, 0 }
`)

// NewBookingLimiter throttles booking attempts per customer and room, so a
// client hammering one room cannot keep its lock busy for everyone else.
// It expects JWTAuth to run first and the route to carry the room as :id.
// When Redis fails the request is let through and the room lock still
// serializes admission.
func NewBookingLimiter(cfg config.RateLimitConfig, rdb redis.UniversalClient, logger *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if logger == nil {
        logger = zap.NewNop()
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := bookingKey(cfg.Prefix, c)
            vals, err := bookingThrottleScript.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(), cfg.Period.Milliseconds(), cfg.Burst).Int64Slice()
            if err != nil || len(vals) != 3 {
                logger.Warn("booking limiter unavailable", zap.String("key", key), zap.Error(err))
                return next(c)
            }
            allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }

            if !allowed {
                secs := int(math.Ceil(float64(retryMs) / 1000.0))
                if secs < 1 {
                    secs = 1
                }
                h.Set("Retry-After", strconv.Itoa(secs))
                logger.Debug("booking attempt throttled",
                    zap.String("customer", userID(c)),
                    zap.String("room", c.Param("id")),
                    zap.Int64("retry_ms", retryMs),
                )
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too many booking attempts for this room, please slow down",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

// bookingKey is <prefix>:booking:customer:<user>:room:<room>.
func bookingKey(prefix string, c echo.Context) string {
    room := c.Param("id")
    if room == "" {
        room = "none"
    }
    return prefix + ":booking:customer:" + userID(c) + ":room:" + room
}
