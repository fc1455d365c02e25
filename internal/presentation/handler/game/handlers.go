package game

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/oekaki/internal/application/game"
	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
	"github.com/hilthontt/oekaki/internal/infrastructure/ws"
)

type Handler struct {
	relay    *game.Relay
	upgrader websocket.Upgrader
	opts     ws.Options
	logger   logging.Logger
}

type Options struct {
	Client         ws.Options
	AllowedOrigins []string
	// StrictOrigin rejects upgrades whose Origin is not in AllowedOrigins.
	StrictOrigin bool
}

func NewHandler(relay *game.Relay, opts Options, logger logging.Logger) *Handler {
	h := &Handler{
		relay:  relay,
		opts:   opts.Client,
		logger: logger,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if !opts.StrictOrigin {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(opts.AllowedOrigins, "*") || slices.Contains(opts.AllowedOrigins, origin)
		},
	}

	return h
}

// ServeWS upgrades the request and runs the game protocol until the
// client goes away.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.Websocket, logging.Join, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ClientIp:     r.RemoteAddr,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(conn, h.opts, h.logger)
	h.logger.Debug(logging.Websocket, logging.Join, "client connected", map[logging.ExtraKey]any{
		logging.ConnID:   client.ID(),
		logging.ClientIp: r.RemoteAddr,
	})

	client.Run(h.relay.Attach(client))

	h.logger.Debug(logging.Websocket, logging.Leave, "client disconnected", map[logging.ExtraKey]any{
		logging.ConnID: client.ID(),
	})
}
