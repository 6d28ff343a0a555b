package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gamereview-backend/internal/apperrors"
	"gamereview-backend/internal/models"
	"gamereview-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T, store *repository.MemoryStore, id, name string) *models.Game {
	t.Helper()
	game := &models.Game{
		ID:        id,
		Name:      name,
		Tags:      []string{},
		Posts:     []string{},
		Launch:    time.Now(),
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Games().Create(context.Background(), game))
	return game
}

func newPostService(store *repository.MemoryStore) *PostService {
	return NewPostService(store.Posts(), store.Users(), store.Games(), nil, nil)
}

type fakeStorage struct {
	uploadErr  error
	deleteErr  error
	uploaded   []string
	deleted    []string
	uploadBase string
}

func (f *fakeStorage) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, key)
	return f.uploadBase + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, url string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, url)
	return nil
}

func TestCreatePostLinksUserAndGame(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newPostService(store)

	newUser(t, store, "alice")
	newGame(t, store, "g1", "Chrono Trigger")

	view, err := svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "alice",
		GameID:   "g1",
		Review:   "a classic",
		Rating:   5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, view.ID)
	assert.Equal(t, "alice", view.UserID)
	assert.Equal(t, "g1", view.GameID)
	assert.Equal(t, 0, view.Likes)
	assert.Equal(t, "Chrono Trigger", view.Game.Name)
	assert.Equal(t, "alice", view.User.Username)

	alice, err := store.Users().GetByID(ctx, "alice")
	require.NoError(t, err)
	game, err := store.Games().GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{view.ID}, alice.Posts)
	assert.Equal(t, []string{view.ID}, game.Posts)
}

func TestCreatePostResolvesGameByName(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newPostService(store)

	newUser(t, store, "alice")
	newGame(t, store, "g1", "Outer Wilds")

	view, err := svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "alice",
		GameName: "Outer Wilds",
		Review:   "go in blind",
		Rating:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, "g1", view.GameID)
}

func TestCreatePostUnknownGame(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newPostService(store)

	newUser(t, store, "alice")

	_, err := svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "alice",
		GameID:   "ghost",
		Review:   "?",
		Rating:   1,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Nothing was persisted: the game is resolved before the post exists.
	posts, err := store.Posts().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestCreatePostAuthorVanishedLeavesOrphan(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newPostService(store)

	newGame(t, store, "g1", "Hades")
	// The author does not exist, so the link append cannot apply.

	_, err := svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "ghost",
		GameID:   "g1",
		Review:   "unreachable",
		Rating:   3,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// The post record exists but is orphaned; the consistency checker is
	// responsible for it, not a rollback.
	posts, err := store.Posts().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	game, err := store.Games().GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, game.Posts)
}

func TestCreatePostUploadFailureDropsPhoto(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	storage := &fakeStorage{uploadErr: errors.New("bucket offline")}
	svc := NewPostService(store.Posts(), store.Users(), store.Games(), storage, nil)

	newUser(t, store, "alice")
	newGame(t, store, "g1", "Hades")

	view, err := svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "alice",
		GameID:   "g1",
		Review:   "still works",
		Rating:   4,
		Photo:    []byte{1, 2, 3},
	})
	require.NoError(t, err)
	assert.Empty(t, view.Photo)
}

func TestDeletePostCompleteness(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newPostService(store)

	newUser(t, store, "alice")
	newGame(t, store, "g1", "Celeste")

	view, err := svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "alice", GameID: "g1", Review: "tough", Rating: 5,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, view.ID, "alice"))

	alice, err := store.Users().GetByID(ctx, "alice")
	require.NoError(t, err)
	game, err := store.Games().GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, alice.Posts)
	assert.Empty(t, game.Posts)

	_, err = store.Posts().GetByID(ctx, view.ID)
	assert.ErrorIs(t, err, repository.ErrNoRecord)
}

func TestDeletePostForbiddenForNonAuthor(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newPostService(store)

	newUser(t, store, "alice")
	newUser(t, store, "bob")
	newGame(t, store, "g1", "Celeste")

	view, err := svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "alice", GameID: "g1", Review: "mine", Rating: 4,
	})
	require.NoError(t, err)

	err = svc.DeletePost(ctx, view.ID, "bob")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Nothing was touched.
	alice, err := store.Users().GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{view.ID}, alice.Posts)
}

func TestDeletePostNotFound(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newPostService(store)

	err := svc.DeletePost(ctx, "ghost", "alice")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeletePostPhotoFailureNonFatal(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	storage := &fakeStorage{deleteErr: errors.New("asset stuck")}
	svc := NewPostService(store.Posts(), store.Users(), store.Games(), storage, nil)

	newUser(t, store, "alice")
	newGame(t, store, "g1", "Celeste")

	view, err := svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "alice", GameID: "g1", Review: "with photo", Rating: 4,
		Photo: []byte{1},
	})
	require.NoError(t, err)
	require.NotEmpty(t, view.Photo)

	// An orphaned asset must not block the delete.
	require.NoError(t, svc.DeletePost(ctx, view.ID, "alice"))
	_, err = store.Posts().GetByID(ctx, view.ID)
	assert.ErrorIs(t, err, repository.ErrNoRecord)
}

func TestLikeUnlike(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newPostService(store)

	newUser(t, store, "alice")
	newGame(t, store, "g1", "Celeste")

	view, err := svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "alice", GameID: "g1", Review: "liked", Rating: 4,
	})
	require.NoError(t, err)

	require.NoError(t, svc.LikePost(ctx, view.ID))
	require.NoError(t, svc.LikePost(ctx, view.ID))
	require.NoError(t, svc.UnlikePost(ctx, view.ID))

	post, err := store.Posts().GetByID(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, post.Likes)

	// Unliking at zero is a no-op, liking a missing post is not found.
	require.NoError(t, svc.UnlikePost(ctx, view.ID))
	require.NoError(t, svc.UnlikePost(ctx, view.ID))
	assert.ErrorIs(t, svc.LikePost(ctx, "ghost"), apperrors.ErrNotFound)
}

func TestListFeedPaginationCeiling(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newPostService(store)

	newUser(t, store, "alice")
	base := time.Now()
	for i := 0; i < 12; i++ {
		post := &models.Post{
			ID:        fmt.Sprintf("p%02d", i),
			UserID:    "alice",
			GameID:    "g1",
			Review:    "r",
			Rating:    3,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.Posts().Create(ctx, post))
	}

	_, _, err := svc.ListFeed(ctx, 11, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = svc.ListFeed(ctx, 10, -1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = svc.ListFeed(ctx, 0, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	posts, total, err := svc.ListFeed(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, posts, 10)
	// Newest first.
	assert.Equal(t, "p11", posts[0].ID)
	assert.Equal(t, "p02", posts[9].ID)

	rest, _, err := svc.ListFeed(ctx, 10, 10)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "p01", rest[0].ID)
	assert.Equal(t, "p00", rest[1].ID)
}

func TestListUserPostsJoinsSummaries(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newPostService(store)

	newUser(t, store, "alice")
	newGame(t, store, "g1", "Celeste")

	view, err := svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "alice", GameID: "g1", Review: "joined", Rating: 4,
	})
	require.NoError(t, err)

	posts, total, err := svc.ListUserPosts(ctx, "alice", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, view.ID, posts[0].ID)
	assert.Equal(t, "alice", posts[0].User.Username)
	assert.Equal(t, "Celeste", posts[0].Game.Name)
}

type fakeFeed struct {
	published [][]string
}

func (f *fakeFeed) PublishPost(_ *models.PostView, followerIDs []string) {
	f.published = append(f.published, followerIDs)
}

func TestCreatePostPublishesToFollowers(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	feed := &fakeFeed{}
	svc := NewPostService(store.Posts(), store.Users(), store.Games(), nil, feed)

	newUser(t, store, "alice")
	newUser(t, store, "bob")
	newGame(t, store, "g1", "Celeste")
	_, err := store.Users().AddFollower(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = store.Users().AddFollowing(ctx, "bob", "alice")
	require.NoError(t, err)

	_, err = svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "alice", GameID: "g1", Review: "fanout", Rating: 4,
	})
	require.NoError(t, err)

	require.Len(t, feed.published, 1)
	assert.Equal(t, []string{"bob"}, feed.published[0])
}
