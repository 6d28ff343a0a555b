package handlers

import (
	"encoding/json"
	"net/http"

	"gamereview-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration and login requests
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidation(w, "email and a password of at least 8 characters are required")
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidation(w, "email and password are required")
		return
	}

	token, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User logged in")
	respondJSON(w, http.StatusOK, LoginResponse{AccessToken: token, UserID: user.ID})
}
