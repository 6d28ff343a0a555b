package repository

import (
	"context"
	"testing"
	"time"

	"gamereview-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, store *MemoryStore, id string) {
	t.Helper()
	require.NoError(t, store.Users().Create(context.Background(), &models.User{
		ID:        id,
		Email:     id + "@example.com",
		Username:  id,
		Posts:     []string{},
		Followers: []string{},
		Following: []string{},
		FavGames:  []string{},
		CreatedAt: time.Now(),
	}))
}

func TestPostRefCountsMatchedNotModified(t *testing.T) {
	// Post reference updates report whether the record matched, so a
	// repeated append still reports 1 and stays single-entry.
	ctx := context.Background()
	store := NewMemoryStore()
	seedUser(t, store, "alice")

	n, err := store.Users().AddPostRef(ctx, "alice", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Users().AddPostRef(ctx, "alice", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	user, err := store.Users().GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, user.Posts)

	// Removing an absent reference still matches the record.
	n, err = store.Users().RemovePostRef(ctx, "alice", "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// A missing record matches nothing.
	n, err = store.Users().AddPostRef(ctx, "ghost", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestFollowEdgeCountsModifiedNotMatched(t *testing.T) {
	// Follow edge updates report whether the set changed: a duplicate
	// append and an absent removal both report 0 even though the user
	// record exists.
	ctx := context.Background()
	store := NewMemoryStore()
	seedUser(t, store, "alice")

	n, err := store.Users().AddFollower(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Users().AddFollower(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = store.Users().RemoveFollower(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Users().RemoveFollower(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = store.Users().AddFollowing(ctx, "ghost", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestPostDeleteCount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Posts().Create(ctx, &models.Post{
		ID: "p1", UserID: "alice", GameID: "g1", CreatedAt: time.Now(),
	}))

	n, err := store.Posts().Delete(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Posts().Delete(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestLikeCounts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Posts().Create(ctx, &models.Post{
		ID: "p1", UserID: "alice", GameID: "g1", CreatedAt: time.Now(),
	}))

	// Unliking at zero reports 0 instead of going negative.
	n, err := store.Posts().RemoveLike(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = store.Posts().AddLike(ctx, "p1")
	require.NoError(t, err)
	n, err = store.Posts().RemoveLike(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedUser(t, store, "alice")

	user, err := store.Users().GetByID(ctx, "alice")
	require.NoError(t, err)
	user.Posts = append(user.Posts, "p1")

	again, err := store.Users().GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, again.Posts)
}
