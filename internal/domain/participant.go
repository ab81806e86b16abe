// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxNameLen   = 36
	MaxStatusLen = 64
)

var (
	ErrNameEmpty   = errors.New("name empty")
	ErrNameTooLong = errors.New("name too long")
)

// ConnectionID is the opaque per-connection identifier assigned by the
// transport. It keys the registry and is never reused while the connection
// is live.
type ConnectionID string

// Participant is the mutable record of one connected user. It is owned by
// the registry; everything outside the registry sees copies.
type Participant struct {
	ConnectionID ConnectionID `json:"socketId"`
	Name         string       `json:"name"`
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	Status       string       `json:"status,omitempty"`
	VoiceEnabled bool         `json:"voiceEnabled"`
}

// ValidName reports whether a client-supplied display name is acceptable.
func ValidName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	return nil
}
