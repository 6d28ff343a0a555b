package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamereview-backend/internal/apperrors"
	"gamereview-backend/internal/models"
	"gamereview-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const jwtExpDays = 30

// UserService handles registration, login and user read views.
type UserService struct {
	userRepo  repository.UserRepository
	gameRepo  repository.GameRepository
	jwtSecret string
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, gameRepo repository.GameRepository, jwtSecret string) *UserService {
	return &UserService{
		userRepo:  userRepo,
		gameRepo:  gameRepo,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new user with empty reference lists. The display name
// defaults to the local part of the email.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperrors.Internal("failed to check email").WithCause(err)
	}
	if exists {
		return nil, apperrors.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password").WithCause(err)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  string(hash),
		Name:      strings.SplitN(email, "@", 2)[0],
		Posts:     []string{},
		Followers: []string{},
		Following: []string{},
		FavGames:  []string{},
		CreatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperrors.Internal("failed to create user").WithCause(err)
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login verifies credentials and returns a signed token plus the user.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return "", nil, apperrors.Unauthorized("invalid credentials")
		}
		return "", nil, apperrors.Internal("failed to load user").WithCause(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperrors.Unauthorized("invalid credentials")
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return "", nil, apperrors.Internal("failed to sign token").WithCause(err)
	}
	return token, user, nil
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// GetProfile builds the read view of a user as seen by requestingUserID:
// trimmed fields, favorite game summaries, follower and following counts,
// and whether the requesting user is a follower. The password hash never
// leaves the repository layer here.
func (s *UserService) GetProfile(ctx context.Context, userID, requestingUserID string) (*models.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to load user").WithCause(err)
	}

	favGames := make([]models.GameSummary, 0, len(user.FavGames))
	for _, gameID := range user.FavGames {
		game, err := s.gameRepo.GetByID(ctx, gameID)
		if err != nil {
			if errors.Is(err, repository.ErrNoRecord) {
				// Stale reference, the checker's problem. Skip it here.
				continue
			}
			return nil, apperrors.Internal("failed to join favorite game").WithCause(err)
		}
		favGames = append(favGames, game.Summary())
	}

	isFollower := false
	for _, id := range user.Followers {
		if id == requestingUserID {
			isFollower = true
			break
		}
	}

	return &models.Profile{
		User:           user.Summary(),
		Biography:      user.Biography,
		FavGames:       favGames,
		FollowersCount: len(user.Followers),
		FollowingCount: len(user.Following),
		IsFollower:     isFollower,
	}, nil
}

// AddFavGame adds a game to the user's favorites set.
func (s *UserService) AddFavGame(ctx context.Context, userID, gameID string) error {
	if _, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return apperrors.NotFound("game not found")
		}
		return apperrors.Internal("failed to load game").WithCause(err)
	}

	n, err := s.userRepo.AddFavGame(ctx, userID, gameID)
	if err != nil {
		return apperrors.Internal("failed to add favorite game").WithCause(err)
	}
	if n == 0 {
		// User gone or game already a favorite; the latter is the common
		// case and treated as a conflict.
		if _, err := s.userRepo.GetByID(ctx, userID); errors.Is(err, repository.ErrNoRecord) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Conflict("game already in favorites")
	}
	return nil
}

// RemoveFavGame removes a game from the user's favorites set, idempotently.
func (s *UserService) RemoveFavGame(ctx context.Context, userID, gameID string) error {
	if _, err := s.userRepo.RemoveFavGame(ctx, userID, gameID); err != nil {
		return apperrors.Internal("failed to remove favorite game").WithCause(err)
	}
	return nil
}

// SetPushToken stores or clears the user's device token.
func (s *UserService) SetPushToken(ctx context.Context, userID string, pushToken *string) error {
	if err := s.userRepo.UpdatePushToken(ctx, userID, pushToken); err != nil {
		return apperrors.Internal("failed to update push token").WithCause(err)
	}
	return nil
}
