package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"quiz-room-service/internal/app"
)

// Sessions is the slice of the engine the transport drives.
type Sessions interface {
	Connect(conn app.Conn) string
	Disconnect(id string)
	HandleMessage(ctx context.Context, id string, data []byte)
}

type WSHandler struct {
	sessions Sessions
	upgrader websocket.Upgrader
}

func NewWSHandler(sessions Sessions) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register mounts the websocket endpoint and the health probe.
func (h *WSHandler) Register(router *httprouter.Router) {
	router.GET("/ws", h.ServeWS)
	router.GET("/healthz", serveHealth)
}

// ServeWS upgrades the request and feeds every text frame to the session engine
// until the socket closes, then releases the connection's room membership.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	c := newClient(conn)
	c.id = h.sessions.Connect(c)
	log.Debug().Str("conn", c.id).Str("remote", r.RemoteAddr).Msg("ws connected")

	go c.writePump()

	ctx := context.WithoutCancel(r.Context())
	c.readPump(func(data []byte) {
		h.sessions.HandleMessage(ctx, c.id, data)
	})

	h.sessions.Disconnect(c.id)
	c.close()
	log.Debug().Str("conn", c.id).Msg("ws disconnected")
}

func serveHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
