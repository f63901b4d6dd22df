// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// ActivityRecordedEvent is published after a user's activity timestamp was
// stored.  Downstream consumers use it for reporting without querying the
// primary database.
type ActivityRecordedEvent struct {
    Username string    `json:"username"`
    Kind     string    `json:"kind"` // login | training | inference
    At       time.Time `json:"at"`
}
