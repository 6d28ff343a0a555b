package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gamereview-backend/internal/apperrors"
	"gamereview-backend/internal/models"
	"gamereview-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGameDuplicateName(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewGameService(store.Games(), store.Posts())

	_, err := svc.CreateGame(ctx, CreateGameInput{Name: "Chrono Trigger"})
	require.NoError(t, err)

	_, err = svc.CreateGame(ctx, CreateGameInput{Name: "Chrono Trigger"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestGetGameDerivedRating(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewGameService(store.Games(), store.Posts())

	newGame(t, store, "g1", "Chrono Trigger")

	detail, err := svc.GetGame(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, detail.Rating)

	for i, rating := range []int{5, 4, 3} {
		post := &models.Post{
			ID:        fmt.Sprintf("p%d", i),
			UserID:    "alice",
			GameID:    "g1",
			Review:    "r",
			Rating:    rating,
			CreatedAt: time.Now(),
		}
		require.NoError(t, store.Posts().Create(ctx, post))
	}

	detail, err = svc.GetGame(ctx, "g1")
	require.NoError(t, err)
	assert.InDelta(t, 4.0, detail.Rating, 0.001)

	_, err = svc.GetGame(ctx, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListGamesPagination(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewGameService(store.Games(), store.Posts())

	base := time.Now()
	for i := 0; i < 12; i++ {
		game := &models.Game{
			ID:        fmt.Sprintf("g%02d", i),
			Name:      fmt.Sprintf("Game %02d", i),
			Tags:      []string{},
			Posts:     []string{},
			Launch:    base.Add(time.Duration(i) * time.Hour),
			CreatedAt: base,
		}
		require.NoError(t, store.Games().Create(ctx, game))
	}

	_, _, err := svc.ListGames(ctx, 11, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	games, total, err := svc.ListGames(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, games, 10)
	// Newest launch first.
	assert.Equal(t, "g11", games[0].ID)

	rest, _, err := svc.ListGames(ctx, 10, 10)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "g01", rest[0].ID)
}
