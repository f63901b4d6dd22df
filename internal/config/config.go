package config // package config loads application configuration from environment variables

import (
    "os"   // os provides access to environment variables
    "time" // time parses durations for token and lock lifetimes

    "github.com/iliyamo/sentiment-analyzer/internal/logs" // logs reports fatal configuration errors
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required connection settings are enforced by
// must(); tunables fall back to defaults (24h sessions, 300s training lock).
type Config struct {
    Env      string // application environment (e.g. "dev", "prod")
    Port     string // HTTP port to listen on
    DBUser   string // database username
    DBPass   string // database password (optional)
    DBHost   string // database host address
    DBPort   string // database port number
    DBName   string // database name
    DBMigrate bool  // run embedded migrations on startup

    DBMaxConns        int           // connection pool cap
    DBConnMaxLifetime time.Duration // recycle pooled connections after this

    BcryptCost int // bcrypt cost for password hashing

    TokenTTL           time.Duration // validity window of a session token
    TokenSweepInterval time.Duration // how often expired tokens are purged (0 disables)
    TokenSweepGrace    time.Duration // how long an expired token is kept before purge

    TrainingLockKey string        // redis key guarding model retraining
    TrainingLockTTL time.Duration // lock self-expiry; must exceed a training run

    ClassifierTrainCmd string // command line that retrains the model
    ClassifierInferCmd string // command line that classifies stdin
    ClassifierDir      string // working directory of both commands

    LogLevel  string // trace|debug|info|warning|error
    LogFormat string // text|json

    RabbitMQURL   string // broker for activity events; empty disables publishing
    ActivityQueue string // queue name for activity events
    ActivityLog   string // file the in-process consumer appends to; empty disables it

    ShutdownTimeout time.Duration // grace period for in-flight requests on exit
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:       must("APP_ENV"),                // environment (dev/test/prod)
        Port:      must("APP_PORT"),               // port to bind the HTTP server
        DBUser:    must("DB_USER"),                // database user
        DBPass:    os.Getenv("DB_PASS"),           // database password (empty allowed)
        DBHost:    must("DB_HOST"),                // database host
        DBPort:    must("DB_PORT"),                // database port
        DBName:    must("DB_NAME"),                // database name
        DBMigrate: envBool("DB_MIGRATE", true),    // apply schema migrations at boot

        DBMaxConns:        envInt("DB_MAX_CONNS", 25),
        DBConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),

        BcryptCost: envInt("BCRYPT_COST", 10),

        TokenTTL:           envDur("TOKEN_TTL", 24*time.Hour),
        TokenSweepInterval: envDur("TOKEN_SWEEP_INTERVAL", time.Hour),
        TokenSweepGrace:    envDur("TOKEN_SWEEP_GRACE", 24*time.Hour),

        TrainingLockKey: envStr("TRAINING_LOCK_KEY", "training_lock"),
        TrainingLockTTL: envDur("TRAINING_LOCK_TTL", 300*time.Second),

        ClassifierTrainCmd: envStr("CLASSIFIER_TRAIN_CMD", "python3 classifier.py train"),
        ClassifierInferCmd: envStr("CLASSIFIER_INFER_CMD", "python3 classifier.py infer"),
        ClassifierDir:      os.Getenv("CLASSIFIER_DIR"),

        LogLevel:  envStr("LOG_LEVEL", "info"),
        LogFormat: envStr("LOG_FORMAT", "text"),

        RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
        ActivityQueue: envStr("ACTIVITY_QUEUE", "activity.recorded"),
        ActivityLog:   os.Getenv("ACTIVITY_LOG_PATH"),

        ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        logs.Logger.Fatalf("missing required env var: %s", key)
    }
    return v
}

