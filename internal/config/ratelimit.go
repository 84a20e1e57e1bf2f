package config

import "time"

// RateLimitConfig throttles booking attempts of one customer on one room.
// A customer may fire Burst attempts back to back and then regains one
// attempt every Period.  Other rooms and other customers are unaffected.
type RateLimitConfig struct {
    Enabled bool
    Burst   int           // attempts allowed without waiting
    Period  time.Duration // time to regain a single attempt
    Prefix  string        // key namespace, keys look like <prefix>:booking:customer:<id>:room:<id>
    Debug   bool          // expose the bucket key in X-RateLimit-Key
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  Defaults: 5 attempts,
// one more every 12s.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Burst:   envInt("RATE_LIMIT_BURST", 5),
        Period:  envDur("RATE_LIMIT_PERIOD", 12*time.Second),
        Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:   envBool("RATE_LIMIT_DEBUG", false),
    }
    if cfg.Burst < 1 {
        cfg.Burst = 1
    }
    if cfg.Period <= 0 {
        cfg.Period = 12 * time.Second
    }
    return cfg
}
