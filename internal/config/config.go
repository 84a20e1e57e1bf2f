package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Groups that have sensible defaults (lock,
// expiry, SMTP, rate limiting) are loaded by their own constructors so tests
// can build them without the required variables.
type Config struct {
    Env       string // application environment (e.g. "development", "production")
    Port      string // HTTP port to listen on
    DBUser    string // database username
    DBPass    string // database password (optional)
    DBHost    string // database host address
    DBPort    string // database port number
    DBName    string // database name
    JWTSecret string // secret used to verify JWTs issued by the auth service
    RabbitURL string // AMQP broker URL; empty disables events and consumers
    LogDir    string // directory for the reservation event log
    Lock      LockConfig
    Expiry    ExpiryConfig
    SMTP      SMTPConfig
    RateLimit RateLimitConfig
}

// LockConfig controls the distributed room lock.
type LockConfig struct {
    Prefix        string        // key namespace, keys look like <prefix>:room:<id>
    TTL           time.Duration // lock lifetime; the key expires even if never released
    WaitTimeout   time.Duration // how long a request queues for the lock
    RetryInterval time.Duration // pause between acquisition attempts
}

// ExpiryConfig controls the sweep that cancels unpaid prepaid reservations.
type ExpiryConfig struct {
    Enabled    bool
    PendingTTL time.Duration // age after which an unpaid PENDING reservation is cancelled
    SweepEvery time.Duration // job interval
}

// SMTPConfig configures notification mails.  Host empty disables mailing.
type SMTPConfig struct {
    Host     string
    Port     int
    Username string
    Password string
    From     string
}

// Load reads configuration values from the environment (and a .env file in
// the working directory when present).  Missing required variables are
// fatal.
func Load() Config {
    if err := godotenv.Load(); err != nil {
        log.Println("config: no .env file found, using environment variables")
    }
    return Config{
        Env:       envStr("APP_ENV", "development"),
        Port:      must("APP_PORT"),
        DBUser:    must("DB_USER"),
        DBPass:    os.Getenv("DB_PASS"),
        DBHost:    must("DB_HOST"),
        DBPort:    must("DB_PORT"),
        DBName:    must("DB_NAME"),
        JWTSecret: must("JWT_SECRET"),
        RabbitURL: rabbitURL(),
        LogDir:    envStr("LOG_DIR", "logs"),
        Lock:      LoadLockConfig(),
        Expiry:    LoadExpiryConfig(),
        SMTP:      LoadSMTPConfig(),
        RateLimit: LoadRateLimitConfig(),
    }
}

// LoadLockConfig reads LOCK_* variables.  Defaults: 15s lifetime, 600s wait,
// 100ms retry.
func LoadLockConfig() LockConfig {
    cfg := LockConfig{
        Prefix:        envStr("LOCK_PREFIX", "lock"),
        TTL:           envDur("LOCK_TTL", 15*time.Second),
        WaitTimeout:   envDur("LOCK_WAIT_TIMEOUT", 600*time.Second),
        RetryInterval: envDur("LOCK_RETRY_INTERVAL", 100*time.Millisecond),
    }
    if cfg.TTL <= 0 { cfg.TTL = 15 * time.Second }
    if cfg.WaitTimeout < 0 { cfg.WaitTimeout = 0 }
    if cfg.RetryInterval <= 0 { cfg.RetryInterval = 100 * time.Millisecond }
    return cfg
}

// LoadExpiryConfig reads PENDING_* variables.
func LoadExpiryConfig() ExpiryConfig {
    cfg := ExpiryConfig{
        Enabled:    envBool("PENDING_EXPIRY_ENABLED", true),
        PendingTTL: envDur("PENDING_TTL", 30*time.Minute),
        SweepEvery: envDur("PENDING_SWEEP_EVERY", time.Minute),
    }
    if cfg.SweepEvery <= 0 { cfg.SweepEvery = time.Minute }
    return cfg
}

// LoadSMTPConfig reads SMTP_* variables.
func LoadSMTPConfig() SMTPConfig {
    return SMTPConfig{
        Host:     os.Getenv("SMTP_HOST"),
        Port:     envInt("SMTP_PORT", 587),
        Username: os.Getenv("SMTP_USERNAME"),
        Password: os.Getenv("SMTP_PASSWORD"),
        From:     envStr("SMTP_FROM", "no-reply@hotel.local"),
    }
}

func rabbitURL() string {
    if v := os.Getenv("RABBITMQ_URL"); v != "" {
        return v
    }
    return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

func envStr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// envBool accepts 1/true/yes/on and 0/false/no/off in any case.
func envBool(key string, def bool) bool {
    switch strings.ToLower(os.Getenv(key)) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return def
}

func envInt(key string, def int) int {
    if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
        return n
    }
    return def
}

func envDur(key string, def time.Duration) time.Duration {
    if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
        return d
    }
    return def
}
