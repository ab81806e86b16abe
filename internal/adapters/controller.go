package adapters

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hallwey/office/internal/config"
	"github.com/hallwey/office/internal/core"
	"github.com/hallwey/office/internal/domain"
)

// WSController upgrades office clients and runs their pumps. Each connection
// gets one read loop, processing its events in arrival order, and one write
// loop draining the send buffer.
type WSController struct {
	Hub      *Hub
	Router   *core.Router
	upgrader websocket.Upgrader

	readLimit  int64
	pingPeriod time.Duration
}

func NewWSController(cfg *config.Config, hub *Hub, router *core.Router) *WSController {
	return &WSController{
		Hub:    hub,
		Router: router,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(cfg.AllowedOrigin),
		},
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
	}
}

func (ctl *WSController) HandleWS(ctx context.Context, c *gin.Context) {
	sid := domain.ConnectionID(c.GetString("client_token"))
	log.Info().Str("module", "adapters.ws").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("ws upgrade")
		return
	}

	conn := NewConn(ws)
	if prev := ctl.Hub.Register(sid, conn); prev != nil {
		// Same client token reconnected; the old endpoint is superseded.
		prev.Close()
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}

func (ctl *WSController) writePump(ctx context.Context, c *Conn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump set deadline")
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump drives the connection's whole lifecycle: its exit is the one
// place that triggers disconnect handling, so a close notification racing
// other in-flight events still removes and announces the participant once.
func (ctl *WSController) readPump(ctx context.Context, cancel context.CancelFunc, sid domain.ConnectionID, c *Conn) {
	defer func() {
		log.Info().Str("module", "adapters.ws").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		if ctl.Hub.Unregister(sid, c) {
			ctl.Router.OnDisconnect(sid)
		}
		c.Close()
	}()

	pongWait := ctl.pingPeriod * 10 / 9
	c.ws.SetReadLimit(ctl.readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "adapters.ws").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleFrame(sid, data)
		}
	}
}

func (ctl *WSController) handleFrame(sid domain.ConnectionID, data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn().Err(err).Str("module", "adapters.ws").Str("sid", string(sid)).Msg("bad frame")
		return
	}
	if f.Event == "" {
		log.Warn().Str("module", "adapters.ws").Str("sid", string(sid)).Msg("frame without event")
		return
	}
	ctl.Router.Dispatch(sid, f.Event, f.Payload)
}
