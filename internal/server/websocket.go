package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/codepair/codepair/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // room ids are the only access boundary
	},
}

// handleWebSocket upgrades the connection, runs the write pump, and feeds
// every inbound frame to the hub until the peer goes away. An abrupt close is
// handled the same as a graceful one: the hub synthesizes the disconnect
// broadcast before the connection is forgotten.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	client := session.NewClient(uuid.New().String())
	log.Info().Str("socketId", client.ID).Msg("connection opened")

	go writePump(conn, client)

	defer func() {
		s.hub.Disconnect(client)
		client.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("socketId", client.ID).Msg("websocket read ended")
			}
			return
		}
		s.hub.Dispatch(client, raw)
	}
}

// writePump is the single writer for one connection, preserving per-recipient
// delivery order. It exits when the client's outbound stream is closed.
func writePump(conn *websocket.Conn, client *session.Client) {
	for msg := range client.Outbound() {
		data, err := json.Marshal(msg)
		if err != nil {
			log.Error().Err(err).Str("socketId", client.ID).Msg("websocket marshal error")
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Err(err).Str("socketId", client.ID).Msg("websocket write error")
			return
		}
	}
}
