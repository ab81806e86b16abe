package core

import "github.com/hallwey/office/internal/domain"

// Emitter is the outbound half of the transport the router fans out through.
// Delivery is fire-and-forget: a target that is gone or backpressured drops
// the event. Implementations must never block; they are called while no
// registry lock is held but sit on the hot path of every inbound event.
type Emitter interface {
	// Emit sends one event to a single connection. It reports whether the
	// target was known; a false return is routine, not an error.
	Emit(to domain.ConnectionID, event string, payload any) bool

	// BroadcastExcept sends to every connection except sender.
	BroadcastExcept(sender domain.ConnectionID, event string, payload any)

	// Broadcast sends to every connection, sender included.
	Broadcast(event string, payload any)
}
