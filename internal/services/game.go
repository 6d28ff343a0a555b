package services

import (
	"context"
	"errors"
	"time"

	"gamereview-backend/internal/apperrors"
	"gamereview-backend/internal/models"
	"gamereview-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GameService handles the game catalog.
type GameService struct {
	gameRepo repository.GameRepository
	postRepo repository.PostRepository
}

// NewGameService creates a new game service
func NewGameService(gameRepo repository.GameRepository, postRepo repository.PostRepository) *GameService {
	return &GameService{gameRepo: gameRepo, postRepo: postRepo}
}

// CreateGameInput carries an already shape-validated game.
type CreateGameInput struct {
	Name        string
	Banner      string
	Description string
	Tags        []string
	Genre       string
	Mode        string
	Studio      string
	Launch      time.Time
}

// CreateGame adds a game to the catalog. Names are unique so posts can
// resolve their game by name.
func (s *GameService) CreateGame(ctx context.Context, in CreateGameInput) (*models.Game, error) {
	_, err := s.gameRepo.GetByName(ctx, in.Name)
	if err == nil {
		return nil, apperrors.Conflict("game already exists")
	}
	if !errors.Is(err, repository.ErrNoRecord) {
		return nil, apperrors.Internal("failed to check game name").WithCause(err)
	}

	game := &models.Game{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Banner:      in.Banner,
		Description: in.Description,
		Tags:        in.Tags,
		Genre:       in.Genre,
		Mode:        in.Mode,
		Studio:      in.Studio,
		Launch:      in.Launch,
		Posts:       []string{},
		CreatedAt:   time.Now(),
	}
	if game.Tags == nil {
		game.Tags = []string{}
	}

	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, apperrors.Internal("failed to create game").WithCause(err)
	}

	log.Info().Str("game_id", game.ID).Str("name", game.Name).Msg("Game created")
	return game, nil
}

// GameDetail is a game joined with its derived aggregate rating. The
// aggregate is computed from the game's posts at read time and never
// stored, so it cannot drift from the per-review ratings.
type GameDetail struct {
	models.Game
	Rating float64 `json:"rating"`
}

// GetGame returns a game with its derived rating.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*GameDetail, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, apperrors.NotFound("game not found")
		}
		return nil, apperrors.Internal("failed to load game").WithCause(err)
	}

	rating, err := s.postRepo.AverageRating(ctx, gameID)
	if err != nil {
		return nil, apperrors.Internal("failed to aggregate rating").WithCause(err)
	}

	return &GameDetail{Game: *game, Rating: rating}, nil
}

// ListGames returns games newest launch first.
func (s *GameService) ListGames(ctx context.Context, limit, offset int) ([]*models.Game, int, error) {
	if err := validatePage(limit, offset); err != nil {
		return nil, 0, err
	}
	games, total, err := s.gameRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("failed to list games").WithCause(err)
	}
	return games, total, nil
}
