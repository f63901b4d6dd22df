package model

import (
    "fmt"
    "time"
)

// ActivityKind enumerates the user actions tracked by the activity log.
// Each kind owns exactly one timestamp column.
type ActivityKind uint8

const (
    ActivityLogin ActivityKind = iota + 1
    ActivityTraining
    ActivityInference
)

// String returns the wire name used in events and log lines.
func (k ActivityKind) String() string {
    switch k {
    case ActivityLogin:
        return "login"
    case ActivityTraining:
        return "training"
    case ActivityInference:
        return "inference"
    }
    return fmt.Sprintf("ActivityKind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds.
func (k ActivityKind) Valid() bool {
    return k >= ActivityLogin && k <= ActivityInference
}

// ActivityRecord represents a row in the `activity_log` table.  Exactly one
// row exists per username; each column is nil until the first activity of
// that kind.
type ActivityRecord struct {
    Username      string     // activity_log.username
    LastLogin     *time.Time // activity_log.last_login
    LastTraining  *time.Time // activity_log.last_training
    LastInference *time.Time // activity_log.last_inference
}
