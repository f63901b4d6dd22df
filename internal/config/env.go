package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// envStr returns the value of k, or d when unset or empty.
func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

// envBool accepts 1/true/yes/on and 0/false/no/off in any case.  Anything
// else falls back to d.
func envBool(k string, d bool) bool {
    switch strings.ToLower(os.Getenv(k)) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
        return n
    }
    return d
}

// envDur parses Go durations ("90s", "24h").
func envDur(k string, d time.Duration) time.Duration {
    if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
        return v
    }
    return d
}
