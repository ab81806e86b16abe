package domain

import "time"

type ActivityType string

const (
	ActivityJoin  ActivityType = "join"
	ActivityLeave ActivityType = "leave"
)

// ActivityEvent is a human-readable office announcement. Constructed and
// broadcast immediately, never stored.
type ActivityEvent struct {
	Type      ActivityType `json:"type"`
	UserName  string       `json:"userName"`
	Timestamp time.Time    `json:"timestamp"`
	Message   string       `json:"message"`
}
