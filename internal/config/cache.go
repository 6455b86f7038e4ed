package config

import (
    "os"
    "strconv"
    "time"
)

// CacheConfig defines settings for the result cache.  When Enabled is
// false or no Redis client is configured, results are always computed.
// Only results of finished elections are ever stored, so TTL mainly
// bounds memory use rather than staleness.
type CacheConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.  Defaults
// are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled: getenv("CACHE_ENABLED", "true") == "true",
        TTL:     parseDur(getenv("CACHE_TTL", "10m")),
        Prefix:  getenv("CACHE_PREFIX", "result"),
    }
}

// PartylistConfig holds the apportionment policy.
type PartylistConfig struct {
    Seats         int
    ClampNegative bool
}

// LoadPartylistConfig reads PARTYLIST_SEATS (default 500) and
// PARTYLIST_CLAMP_NEGATIVE (default false).
func LoadPartylistConfig() PartylistConfig {
    seats := atoi(getenv("PARTYLIST_SEATS", "500"))
    if seats <= 0 {
        seats = 500
    }
    return PartylistConfig{
        Seats:         seats,
        ClampNegative: envBool("PARTYLIST_CLAMP_NEGATIVE", false),
    }
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Minute
    }
    return d
}
