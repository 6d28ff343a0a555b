package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"gamereview-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// FeedMessage is the wire shape of a live feed event.
type FeedMessage struct {
	Type string           `json:"type"`
	Post *models.PostView `json:"post,omitempty"`
}

// FeedHub manages WebSocket connections and fans new-post events out to
// the author's online followers. Delivery is best-effort; a failed write
// drops the connection, never the post.
type FeedHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewFeedHub creates a new feed hub
func NewFeedHub() *FeedHub {
	return &FeedHub{connections: make(map[string]*websocket.Conn)}
}

// Register registers a WebSocket connection for a user, replacing any
// existing one.
func (h *FeedHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("Feed connection registered")
}

// Unregister removes a user's WebSocket connection
func (h *FeedHub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.connections[userID]; ok {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("Feed connection unregistered")
	}
}

// IsOnline checks if a user has a live feed connection
func (h *FeedHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// SendToUser sends a message to a specific user
func (h *FeedHub) SendToUser(userID string, message FeedMessage) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// PublishPost pushes a new-post event to every online follower.
func (h *FeedHub) PublishPost(post *models.PostView, followerIDs []string) {
	message := FeedMessage{Type: "new_post", Post: post}
	for _, followerID := range followerIDs {
		if !h.IsOnline(followerID) {
			continue
		}
		if err := h.SendToUser(followerID, message); err != nil {
			log.Warn().Err(err).Str("user_id", followerID).Msg("Failed to push feed event")
		}
	}
}
