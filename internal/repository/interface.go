// Package repository is the entity store: persistent keyed records for
// users, games and posts. Every operation is atomic at the single-record
// level; the applied count returned by reference-list updates is the only
// signal callers get that the target record existed, so multi-entity
// sequences in the services layer fold their existence checks into it.
package repository

import (
	"context"

	"gamereview-backend/internal/models"
)

// UserRepository handles storage operations for users.
//
// AddPostRef and RemovePostRef report the number of matched records (1 when
// the user exists, whether or not the list changed). AddFollower,
// AddFollowing and the follow removals report the number of modified
// records: an append on an edge that is already present, or a removal of an
// edge that is already absent, reports 0 even when the user exists.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)

	AddPostRef(ctx context.Context, userID, postID string) (int64, error)
	RemovePostRef(ctx context.Context, userID, postID string) (int64, error)

	AddFollower(ctx context.Context, userID, followerID string) (int64, error)
	RemoveFollower(ctx context.Context, userID, followerID string) (int64, error)
	AddFollowing(ctx context.Context, userID, followingID string) (int64, error)
	RemoveFollowing(ctx context.Context, userID, followingID string) (int64, error)

	AddFavGame(ctx context.Context, userID, gameID string) (int64, error)
	RemoveFavGame(ctx context.Context, userID, gameID string) (int64, error)

	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// GameRepository handles storage operations for games.
// Post reference updates follow the same applied-count contract as
// UserRepository.AddPostRef/RemovePostRef.
type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id string) (*models.Game, error)
	GetByName(ctx context.Context, name string) (*models.Game, error)
	List(ctx context.Context, limit, offset int) ([]*models.Game, int, error)
	ListAll(ctx context.Context) ([]*models.Game, error)

	AddPostRef(ctx context.Context, gameID, postID string) (int64, error)
	RemovePostRef(ctx context.Context, gameID, postID string) (int64, error)
}

// PostRepository handles storage operations for posts. Delete reports the
// number of deleted records (0 when the post was already gone). Listings
// are newest first.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Delete(ctx context.Context, id string) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, int, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Post, int, error)
	ListByGame(ctx context.Context, gameID string, limit, offset int) ([]*models.Post, int, error)
	ListAll(ctx context.Context) ([]*models.Post, error)

	AddLike(ctx context.Context, id string) (int64, error)
	RemoveLike(ctx context.Context, id string) (int64, error)

	// AverageRating reports the mean rating across a game's posts, 0 when
	// the game has none. Game-level rating is always derived, never stored.
	AverageRating(ctx context.Context, gameID string) (float64, error)
}
