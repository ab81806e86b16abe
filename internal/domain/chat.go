package domain

import "time"

// ChatMessage is the payload delivered for both global and directed chat.
// To and Own are only set in directed mode. No history is kept.
type ChatMessage struct {
	From      ConnectionID `json:"from"`
	FromName  string       `json:"fromName"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	To        ConnectionID `json:"to,omitempty"`
	Own       bool         `json:"own,omitempty"`
}
