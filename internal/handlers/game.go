package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"gamereview-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// GameHandler handles game-related HTTP requests
type GameHandler struct {
	gameService *services.GameService
	postService *services.PostService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameService *services.GameService, postService *services.PostService) *GameHandler {
	return &GameHandler{gameService: gameService, postService: postService}
}

// CreateGameRequest represents a game creation request
type CreateGameRequest struct {
	Name        string    `json:"name" validate:"required"`
	Banner      string    `json:"banner"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Genre       string    `json:"genre"`
	Mode        string    `json:"mode" validate:"omitempty,oneof=singleplayer multiplayer"`
	Studio      string    `json:"studio"`
	Launch      time.Time `json:"launch"`
}

// ListGames handles GET /api/v1/games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	games, total, err := h.gameService.ListGames(r.Context(), limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"games": games,
		"total": total,
	})
}

// GetGame handles GET /api/v1/games/{game_id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameService.GetGame(r.Context(), chi.URLParam(r, "game_id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, game)
}

// GetGamePosts handles GET /api/v1/games/{game_id}/posts
func (h *GameHandler) GetGamePosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	posts, total, err := h.postService.ListGamePosts(r.Context(), chi.URLParam(r, "game_id"), limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"posts": posts,
		"total": total,
	})
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidation(w, "name is required and mode must be singleplayer or multiplayer")
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), services.CreateGameInput{
		Name:        req.Name,
		Banner:      req.Banner,
		Description: req.Description,
		Tags:        req.Tags,
		Genre:       req.Genre,
		Mode:        req.Mode,
		Studio:      req.Studio,
		Launch:      req.Launch,
	})
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("Failed to create game")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, game)
}
