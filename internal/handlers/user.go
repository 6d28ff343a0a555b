package handlers

import (
	"encoding/json"
	"net/http"

	"gamereview-backend/internal/middleware"
	"gamereview-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService   *services.UserService
	followService *services.FollowService
	postService   *services.PostService
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	userService *services.UserService,
	followService *services.FollowService,
	postService *services.PostService,
) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
		postService:   postService,
	}
}

// GetUser handles GET /api/v1/users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "user_id")
	requestingID := middleware.GetUserID(ctx)

	profile, err := h.userService.GetProfile(ctx, userID, requestingID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// GetUserPosts handles GET /api/v1/users/{user_id}/posts
func (h *UserHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "user_id")
	limit, offset := parsePagination(r)

	posts, total, err := h.postService.ListUserPosts(ctx, userID, limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"posts": posts,
		"total": total,
	})
}

// Follow handles POST /api/v1/users/{user_id}/followers
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID := chi.URLParam(r, "user_id")
	requesterID := middleware.GetUserID(ctx)

	if err := h.followService.Follow(ctx, targetID, requesterID); err != nil {
		log.Error().Err(err).Str("target_id", targetID).Str("requester_id", requesterID).Msg("Failed to follow user")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"new_follower":  requesterID,
		"new_following": targetID,
	})
}

// Unfollow handles DELETE /api/v1/users/{user_id}/followers
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID := chi.URLParam(r, "user_id")
	requesterID := middleware.GetUserID(ctx)

	if err := h.followService.Unfollow(ctx, targetID, requesterID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"unfollowed": targetID})
}

// AddFavGame handles PUT /api/v1/users/me/fav-games/{game_id}
func (h *UserHandler) AddFavGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	gameID := chi.URLParam(r, "game_id")

	if err := h.userService.AddFavGame(ctx, userID, gameID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"fav_game": gameID})
}

// RemoveFavGame handles DELETE /api/v1/users/me/fav-games/{game_id}
func (h *UserHandler) RemoveFavGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	gameID := chi.URLParam(r, "game_id")

	if err := h.userService.RemoveFavGame(ctx, userID, gameID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PushTokenRequest carries a device token; null clears it.
type PushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// SetPushToken handles PUT /api/v1/users/me/push-token
func (h *UserHandler) SetPushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}

	if err := h.userService.SetPushToken(ctx, userID, req.PushToken); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
