package handlers

import (
	"net/http"

	"gamereview-backend/internal/middleware"
	"gamereview-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades feed connections
type WebSocketHandler struct {
	hub       *services.FeedHub
	validator middleware.TokenValidator
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.FeedHub, validator middleware.TokenValidator) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, validator: validator}
}

// HandleWebSocket handles GET /ws. The token travels as a query parameter
// because browsers cannot set headers on WebSocket upgrades.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.ValidateWebSocketToken(r.URL.Query().Get("token"), h.validator)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID)

	// Drain the connection; the feed is push-only, so any read error
	// (including a normal close) ends the session.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
