package core

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/hallwey/office/internal/domain"
)

// SignalEnvelope carries one opaque voice negotiation payload between two
// peers. Exactly one of Offer, Answer and Candidate is set, matching the
// event name; the relay never inspects the blob.
type SignalEnvelope struct {
	To        domain.ConnectionID `json:"to,omitempty"`
	From      domain.ConnectionID `json:"from,omitempty"`
	Offer     json.RawMessage     `json:"offer,omitempty"`
	Answer    json.RawMessage     `json:"answer,omitempty"`
	Candidate json.RawMessage     `json:"candidate,omitempty"`
}

func (e SignalEnvelope) blob() json.RawMessage {
	switch {
	case len(e.Offer) > 0:
		return e.Offer
	case len(e.Answer) > 0:
		return e.Answer
	default:
		return e.Candidate
	}
}

// Relay is the stateless pass-through for voice signaling. It needs no
// registry access; destinations are addressed by connection id alone.
type Relay struct {
	emitter Emitter
}

func NewRelay(emitter Emitter) *Relay {
	return &Relay{emitter: emitter}
}

// Forward re-emits the envelope to its destination with From set to the
// sender. Envelopes missing a destination or a payload are malformed and
// dropped; a gone destination drops silently.
func (r *Relay) Forward(from domain.ConnectionID, event string, raw json.RawMessage) {
	var env SignalEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Err(err).Str("module", "core.relay").Str("event", event).Msg("bad signal payload")
		return
	}
	if env.To == "" || len(env.blob()) == 0 {
		log.Warn().Str("module", "core.relay").Str("event", event).Str("from", string(from)).Msg("signal missing destination or payload")
		return
	}

	env.From = from
	if !r.emitter.Emit(env.To, event, env) {
		log.Debug().Str("module", "core.relay").Str("event", event).Str("to", string(env.To)).Msg("signal target gone")
	}
}
