package config // package config loads application configuration from environment variables

import (
    "fmt"     // fmt formats validation errors
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/hashicorp/go-multierror" // collects every invalid variable into one error
    "github.com/joho/godotenv"           // optional .env file support for local runs
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing
    AMQPURL        string // RabbitMQ connection string, empty disables ledger events
    LogLevel       string // zerolog level name
}

// LoadDotEnv reads a .env file (or the given files) into the process
// environment.  Variables that are already set win.  A missing file is
// not an error.
func LoadDotEnv(files ...string) {
    if len(files) == 0 {
        files = []string{".env"}
    }
    for _, f := range files {
        if _, err := os.Stat(f); err == nil {
            _ = godotenv.Load(f)
        }
    }
}

// Load reads configuration values from environment variables.  Every
// missing or malformed required variable is reported in the returned
// error, not just the first one.
func Load() (Config, error) {
    var errs *multierror.Error
    must := func(key string) string {
        v, ok := os.LookupEnv(key)
        if !ok || v == "" {
            errs = multierror.Append(errs, fmt.Errorf("missing required env var: %s", key))
        }
        return v
    }
    mustInt := func(key string) int {
        s := must(key)
        if s == "" {
            return 0
        }
        n, err := strconv.Atoi(s)
        if err != nil {
            errs = multierror.Append(errs, fmt.Errorf("invalid int for %s: %q", key, s))
        }
        return n
    }

    cfg := Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),
        AMQPURL:        amqpURL(),
        LogLevel:       envStr("LOG_LEVEL", "info"),
    }
    return cfg, errs.ErrorOrNil()
}

// LoadDatabase reads only the database variables.  The migrate command
// uses it so that schema bootstrap does not require JWT settings.
func LoadDatabase() (Config, error) {
    var errs *multierror.Error
    cfg := Config{DBPass: os.Getenv("DB_PASS")}
    for key, dst := range map[string]*string{
        "DB_USER": &cfg.DBUser,
        "DB_HOST": &cfg.DBHost,
        "DB_PORT": &cfg.DBPort,
        "DB_NAME": &cfg.DBName,
    } {
        v := os.Getenv(key)
        if v == "" {
            errs = multierror.Append(errs, fmt.Errorf("missing required env var: %s", key))
        }
        *dst = v
    }
    return cfg, errs.ErrorOrNil()
}

// amqpURL prefers RABBITMQ_URL and falls back to AMQP_URL.
func amqpURL() string {
    if v := os.Getenv("RABBITMQ_URL"); v != "" {
        return v
    }
    return os.Getenv("AMQP_URL")
}
