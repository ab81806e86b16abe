package core

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hallwey/office/internal/domain"
)

// ChatMode selects the deployment's chat fanout policy.
type ChatMode string

const (
	// ChatModeGlobal broadcasts chat to everyone, sender included.
	ChatModeGlobal ChatMode = "global"
	// ChatModeDirected unicasts chat to its addressee and echoes a
	// confirmation marked own=true back to the sender.
	ChatModeDirected ChatMode = "directed"
)

// Inbound event names.
const (
	EvUserJoin    = "user:join"
	EvUserMove    = "user:move"
	EvUserStatus  = "user:status"
	EvChatMessage = "chat:message"
	EvChatTyping  = "chat:typing"
	EvChatRequest = "chat:request"
	EvVoiceStatus = "voice:status"
	EvVoiceOffer  = "voice:offer"
	EvVoiceAnswer = "voice:answer"
	EvVoiceICE    = "voice:ice-candidate"
)

// Outbound event names.
const (
	EvUsersList          = "users:list"
	EvUserJoined         = "user:joined"
	EvUserMoved          = "user:moved"
	EvUserStatusChanged  = "user:status-changed"
	EvUserLeft           = "user:left"
	EvOfficeActivity     = "office:activity"
	EvVoiceStatusChanged = "voice:status-changed"
	EvVoiceStatusUpdated = "voice:status-updated"
)

type handlerFunc func(sid domain.ConnectionID, payload json.RawMessage)

// Router maps each inbound event to its registry operation and fanout. The
// event table is fixed at construction; dispatch itself holds no state, so
// one router serves all connections.
type Router struct {
	registry *Registry
	emitter  Emitter
	notifier *Notifier
	relay    *Relay
	chatMode ChatMode
	handlers map[string]handlerFunc
	now      func() time.Time
}

func NewRouter(registry *Registry, emitter Emitter, notifier *Notifier, relay *Relay, chatMode ChatMode) *Router {
	r := &Router{
		registry: registry,
		emitter:  emitter,
		notifier: notifier,
		relay:    relay,
		chatMode: chatMode,
		now:      time.Now,
	}
	r.handlers = map[string]handlerFunc{
		EvUserJoin:    r.handleJoin,
		EvUserMove:    r.handleMove,
		EvUserStatus:  r.handleStatus,
		EvChatMessage: r.handleChat,
		EvChatTyping:  r.handleTyping,
		EvChatRequest: r.handleChatRequest,
		EvVoiceStatus: r.handleVoiceStatus,
		EvVoiceOffer:  r.handleSignal(EvVoiceOffer),
		EvVoiceAnswer: r.handleSignal(EvVoiceAnswer),
		EvVoiceICE:    r.handleSignal(EvVoiceICE),
	}
	return r
}

// Dispatch routes one inbound event. Unknown events are dropped; this is a
// best-effort relay and never surfaces errors to the sender.
func (r *Router) Dispatch(sid domain.ConnectionID, event string, payload json.RawMessage) {
	h, ok := r.handlers[event]
	if !ok {
		log.Warn().Str("module", "core.router").Str("event", event).Str("sid", string(sid)).Msg("unknown event")
		return
	}
	h(sid, payload)
}

// OnDisconnect removes the connection's record and announces the departure.
// Callers guarantee exactly-once invocation per connection; a disconnect for
// a never-joined or already-removed id emits nothing.
func (r *Router) OnDisconnect(sid domain.ConnectionID) {
	p, existed := r.registry.Remove(sid)
	if !existed {
		return
	}
	r.emitter.Broadcast(EvOfficeActivity, r.notifier.Left(p.Name))
	r.emitter.BroadcastExcept(sid, EvUserLeft, leftPayload{SocketID: sid})
}

type leftPayload struct {
	SocketID domain.ConnectionID `json:"socketId"`
}

type movedPayload struct {
	SocketID domain.ConnectionID `json:"socketId"`
	X        float64             `json:"x"`
	Y        float64             `json:"y"`
}

type statusPayload struct {
	SocketID domain.ConnectionID `json:"socketId"`
	Status   string              `json:"status"`
}

type voiceStatusPayload struct {
	SocketID     domain.ConnectionID `json:"socketId"`
	VoiceEnabled bool                `json:"voiceEnabled"`
}

type typingPayload struct {
	From     domain.ConnectionID `json:"from"`
	FromName string              `json:"fromName"`
	Typing   bool                `json:"typing"`
}

type requestPayload struct {
	From     domain.ConnectionID `json:"from"`
	FromName string              `json:"fromName"`
}

func (r *Router) handleJoin(sid domain.ConnectionID, payload json.RawMessage) {
	var p struct {
		Name   string  `json:"name"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Status string  `json:"status"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "core.router").Str("sid", string(sid)).Msg("bad join payload")
		return
	}
	if err := domain.ValidName(p.Name); err != nil {
		log.Warn().Err(err).Str("module", "core.router").Str("sid", string(sid)).Msg("join rejected")
		return
	}

	rec := r.registry.Join(sid, domain.Participant{
		Name:   p.Name,
		X:      p.X,
		Y:      p.Y,
		Status: p.Status,
	})

	// The newcomer gets the full roster first, then everyone else hears
	// about the newcomer.
	r.emitter.Emit(sid, EvUsersList, r.registry.Snapshot())
	r.emitter.BroadcastExcept(sid, EvUserJoined, rec)
	r.emitter.Broadcast(EvOfficeActivity, r.notifier.Joined(rec.Name))
}

func (r *Router) handleMove(sid domain.ConnectionID, payload json.RawMessage) {
	var p struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "core.router").Str("sid", string(sid)).Msg("bad move payload")
		return
	}
	if _, ok := r.registry.UpdatePosition(sid, p.X, p.Y); !ok {
		return
	}
	r.emitter.BroadcastExcept(sid, EvUserMoved, movedPayload{SocketID: sid, X: p.X, Y: p.Y})
}

func (r *Router) handleStatus(sid domain.ConnectionID, payload json.RawMessage) {
	var p struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "core.router").Str("sid", string(sid)).Msg("bad status payload")
		return
	}
	if len(p.Status) > domain.MaxStatusLen {
		log.Warn().Str("module", "core.router").Str("sid", string(sid)).Msg("status too long")
		return
	}
	if _, ok := r.registry.UpdateStatus(sid, p.Status); !ok {
		return
	}
	r.emitter.BroadcastExcept(sid, EvUserStatusChanged, statusPayload{SocketID: sid, Status: p.Status})
}

func (r *Router) handleChat(sid domain.ConnectionID, payload json.RawMessage) {
	var p struct {
		Message string              `json:"message"`
		To      domain.ConnectionID `json:"to"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "core.router").Str("sid", string(sid)).Msg("bad chat payload")
		return
	}
	sender, ok := r.registry.Get(sid)
	if !ok || p.Message == "" {
		return
	}

	msg := domain.ChatMessage{
		From:      sid,
		FromName:  sender.Name,
		Message:   p.Message,
		Timestamp: r.now(),
	}

	switch r.chatMode {
	case ChatModeDirected:
		if p.To == "" {
			log.Warn().Str("module", "core.router").Str("sid", string(sid)).Msg("directed chat missing destination")
			return
		}
		msg.To = p.To
		r.emitter.Emit(p.To, EvChatMessage, msg)
		msg.Own = true
		r.emitter.Emit(sid, EvChatMessage, msg)
	default:
		r.emitter.Broadcast(EvChatMessage, msg)
	}
}

func (r *Router) handleTyping(sid domain.ConnectionID, payload json.RawMessage) {
	var p struct {
		To     domain.ConnectionID `json:"to"`
		Typing bool                `json:"typing"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "core.router").Str("sid", string(sid)).Msg("bad typing payload")
		return
	}
	sender, ok := r.registry.Get(sid)
	if !ok {
		return
	}
	out := typingPayload{From: sid, FromName: sender.Name, Typing: p.Typing}

	if r.chatMode == ChatModeDirected {
		if p.To == "" {
			return
		}
		r.emitter.Emit(p.To, EvChatTyping, out)
		return
	}
	r.emitter.BroadcastExcept(sid, EvChatTyping, out)
}

func (r *Router) handleChatRequest(sid domain.ConnectionID, payload json.RawMessage) {
	var p struct {
		To domain.ConnectionID `json:"to"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "core.router").Str("sid", string(sid)).Msg("bad chat request payload")
		return
	}
	if p.To == "" {
		log.Warn().Str("module", "core.router").Str("sid", string(sid)).Msg("chat request missing destination")
		return
	}

	fromName := "Someone"
	if sender, ok := r.registry.Get(sid); ok && sender.Name != "" {
		fromName = sender.Name
	}
	r.emitter.Emit(p.To, EvChatRequest, requestPayload{From: sid, FromName: fromName})
}

func (r *Router) handleVoiceStatus(sid domain.ConnectionID, payload json.RawMessage) {
	var p struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "core.router").Str("sid", string(sid)).Msg("bad voice status payload")
		return
	}
	rec, ok := r.registry.UpdateVoice(sid, p.Enabled)
	if !ok {
		return
	}

	out := voiceStatusPayload{SocketID: sid, VoiceEnabled: rec.VoiceEnabled}
	r.emitter.BroadcastExcept(sid, EvVoiceStatusChanged, out)
	r.emitter.Emit(sid, EvVoiceStatusUpdated, out)
}

func (r *Router) handleSignal(event string) handlerFunc {
	return func(sid domain.ConnectionID, payload json.RawMessage) {
		r.relay.Forward(sid, event, payload)
	}
}
