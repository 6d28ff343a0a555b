package services

import (
	"context"
	"testing"

	"gamereview-backend/internal/apperrors"
	"gamereview-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(store *repository.MemoryStore) *UserService {
	return NewUserService(store.Users(), store.Games(), "test-secret")
}

func TestRegisterDefaults(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newUserService(store)

	user, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.NotEqual(t, "hunter2hunter2", user.Password)
	assert.NotNil(t, user.Posts)
	assert.Empty(t, user.Posts)
	assert.Empty(t, user.Followers)
	assert.Empty(t, user.Following)
	assert.Empty(t, user.FavGames)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newUserService(store)

	_, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.com", "another-password")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newUserService(store)

	registered, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	userID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)
}

func TestLoginBadCredentials(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newUserService(store)

	_, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestValidateJWTRejectsTampered(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newUserService(store)
	other := NewUserService(store.Users(), store.Games(), "other-secret")

	token, err := other.GenerateJWT("alice")
	require.NoError(t, err)

	_, err = svc.ValidateJWT(token)
	assert.Error(t, err)
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newUserService(store)

	newUser(t, store, "alice")
	newUser(t, store, "bob")
	newUser(t, store, "carol")
	newGame(t, store, "g1", "Chrono Trigger")

	_, err := store.Users().AddFollower(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = store.Users().AddFollowing(ctx, "alice", "carol")
	require.NoError(t, err)
	_, err = store.Users().AddFavGame(ctx, "alice", "g1")
	require.NoError(t, err)
	// A favorite whose game record is gone must be skipped, not fail.
	_, err = store.Users().AddFavGame(ctx, "alice", "deleted-game")
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.User.Username)
	assert.Equal(t, 1, profile.FollowersCount)
	assert.Equal(t, 1, profile.FollowingCount)
	assert.True(t, profile.IsFollower)
	require.Len(t, profile.FavGames, 1)
	assert.Equal(t, "Chrono Trigger", profile.FavGames[0].Name)

	profile, err = svc.GetProfile(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.False(t, profile.IsFollower)

	_, err = svc.GetProfile(ctx, "ghost", "bob")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFavGames(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newUserService(store)

	newUser(t, store, "alice")
	newGame(t, store, "g1", "Chrono Trigger")

	require.NoError(t, svc.AddFavGame(ctx, "alice", "g1"))
	assert.ErrorIs(t, svc.AddFavGame(ctx, "alice", "g1"), apperrors.ErrConflict)
	assert.ErrorIs(t, svc.AddFavGame(ctx, "alice", "ghost"), apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.AddFavGame(ctx, "ghost", "g1"), apperrors.ErrNotFound)

	require.NoError(t, svc.RemoveFavGame(ctx, "alice", "g1"))
	// Removing an absent favorite stays quiet.
	require.NoError(t, svc.RemoveFavGame(ctx, "alice", "g1"))

	user, err := store.Users().GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, user.FavGames)
}
