package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/hireside/proctor-gateway/internal/model"
	"github.com/hireside/proctor-gateway/internal/session"
	"github.com/hireside/proctor-gateway/internal/signal"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the proctoring signal stream: the browser shell reports
// raw environment events inbound, and receives warnings, the terminal
// submitted event, and the lock release outbound.
type WSHandler struct {
	manager  *session.Manager
	notifier *Notifier
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(manager *session.Manager, notifier *Notifier, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		manager:  manager,
		notifier: notifier,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SignalStream godoc
// WS /ws/v1/assessment/signals
// Upgrades to WebSocket and feeds reported environment signals into the
// active session's violation monitor.
func (h *WSHandler) SignalStream(c *gin.Context) {
	ctrl, err := h.manager.Active()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := signal.NewConn(ws)
	defer conn.Close()

	stream := signal.NewStream()
	detach := ctrl.AttachSignals(stream)
	defer detach()

	h.notifier.add(conn)
	defer h.notifier.remove(conn)

	h.log.Info().Msg("Signal stream connected")

	for {
		var msg signal.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				h.log.Debug().Msg("Signal stream closed")
			}
			return
		}

		switch msg.Action {
		case signal.ActionReport:
			kind := model.ViolationKind(msg.Kind)
			if !model.ValidKind(kind) {
				conn.WriteError("unknown signal kind: " + msg.Kind)
				continue
			}
			stream.Emit(kind)
			conn.WriteTyped(signal.AckResponse{
				Event:          signal.EventAck,
				ViolationCount: ctrl.Snapshot().Session.ViolationCount,
			})
		case signal.ActionPing:
			conn.WriteTyped(signal.PongResponse{Event: signal.EventPong})
		default:
			h.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}
