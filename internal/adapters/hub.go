package adapters

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hallwey/office/internal/domain"
)

// frame is the wire shape of every outbound and inbound event.
type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encodeFrame(event string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(frame{Event: event, Payload: body})
}

// Hub tracks live connections by id and implements core.Emitter. Frames are
// encoded once per fanout and handed to each connection's buffer; slow or
// gone targets drop the frame.
type Hub struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]*Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[domain.ConnectionID]*Conn)}
}

// Register binds c as the live connection for id and returns the connection
// it displaced, if any. The caller closes the displaced one; a second
// upgrade with the same client token supersedes the first.
func (h *Hub) Register(id domain.ConnectionID, c *Conn) *Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.conns[id]
	h.conns[id] = c
	log.Info().Str("module", "adapters.hub").Str("sid", string(id)).Int("conns", len(h.conns)).Msg("connection registered")
	return prev
}

// Unregister removes id only if c is still its live connection, so a
// superseded connection's teardown cannot evict its replacement.
func (h *Hub) Unregister(id domain.ConnectionID, c *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[id] != c {
		return false
	}
	delete(h.conns, id)
	log.Info().Str("module", "adapters.hub").Str("sid", string(id)).Int("conns", len(h.conns)).Msg("connection unregistered")
	return true
}

func (h *Hub) Emit(to domain.ConnectionID, event string, payload any) bool {
	h.mu.RLock()
	c, ok := h.conns[to]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	data, err := encodeFrame(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.hub").Str("event", event).Msg("encode frame")
		return false
	}
	if err := c.TrySend(data); err != nil {
		log.Debug().Err(err).Str("module", "adapters.hub").Str("event", event).Str("to", string(to)).Msg("unicast dropped")
	}
	return true
}

func (h *Hub) BroadcastExcept(sender domain.ConnectionID, event string, payload any) {
	h.fanout(event, payload, &sender)
}

func (h *Hub) Broadcast(event string, payload any) {
	h.fanout(event, payload, nil)
}

func (h *Hub) fanout(event string, payload any, except *domain.ConnectionID) {
	data, err := encodeFrame(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.hub").Str("event", event).Msg("encode frame")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	sent, dropped := 0, 0
	for id, c := range h.conns {
		if except != nil && id == *except {
			continue
		}
		if err := c.TrySend(data); err != nil {
			dropped++
			continue
		}
		sent++
	}
	log.Debug().Str("module", "adapters.hub").Str("event", event).Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
}
