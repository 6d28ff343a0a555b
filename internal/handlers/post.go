package handlers

import (
	"io"
	"net/http"
	"strconv"

	"gamereview-backend/internal/middleware"
	"gamereview-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxPhotoSize = 10 << 20 // 10 MiB

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// createPostForm is the shape-validated part of a create request.
type createPostForm struct {
	GameID   string `validate:"required_without=GameName"`
	GameName string `validate:"required_without=GameID"`
	Review   string `validate:"required,max=240"`
	Rating   int    `validate:"gte=0,lte=5"`
}

// ListPosts handles GET /api/v1/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	posts, total, err := h.postService.ListFeed(r.Context(), limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"posts": posts,
		"total": total,
	})
}

// CreatePost handles POST /api/v1/posts (multipart, photo optional)
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		respondValidation(w, "Invalid multipart form")
		return
	}

	rating, err := strconv.Atoi(r.FormValue("rating"))
	if err != nil {
		respondValidation(w, "rating must be a number")
		return
	}

	form := createPostForm{
		GameID:   r.FormValue("game_id"),
		GameName: r.FormValue("game"),
		Review:   r.FormValue("review"),
		Rating:   rating,
	}
	if err := validate.Struct(form); err != nil {
		respondValidation(w, "a game reference, a review of at most 240 characters and a rating between 0 and 5 are required")
		return
	}

	input := services.CreatePostInput{
		AuthorID: userID,
		GameID:   form.GameID,
		GameName: form.GameName,
		Review:   form.Review,
		Rating:   form.Rating,
	}

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photo, err := io.ReadAll(file)
		if err != nil {
			respondValidation(w, "Failed to read photo")
			return
		}
		input.Photo = photo
		input.PhotoContentType = header.Header.Get("Content-Type")
	}

	post, err := h.postService.CreatePost(ctx, input)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create post")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, post)
}

// DeletePost handles DELETE /api/v1/posts/{post_id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := chi.URLParam(r, "post_id")
	userID := middleware.GetUserID(ctx)

	if err := h.postService.DeletePost(ctx, postID, userID); err != nil {
		log.Error().Err(err).Str("post_id", postID).Str("user_id", userID).Msg("Failed to delete post")
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LikePost handles POST /api/v1/posts/{post_id}/likes
func (h *PostHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	if err := h.postService.LikePost(r.Context(), chi.URLParam(r, "post_id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnlikePost handles DELETE /api/v1/posts/{post_id}/likes
func (h *PostHandler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	if err := h.postService.UnlikePost(r.Context(), chi.URLParam(r, "post_id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
