package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamereview-backend/internal/apperrors"
	"gamereview-backend/internal/models"
	"gamereview-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ObjectStorage stores post photos. Failures are recoverable: a create
// proceeds without a photo, a delete proceeds leaving an orphaned asset.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// FeedPublisher pushes new-post events to connected followers, best-effort.
type FeedPublisher interface {
	PublishPost(post *models.PostView, followerIDs []string)
}

// PostService coordinates the multi-entity write sequences around posts.
// A post and the two reverse-reference lists pointing at it live in three
// independently stored records; there is no transaction spanning them.
// Each sequence is ordered so that a failure at any step leaves a state
// the consistency checker can detect and repair, and every zero applied
// count is translated into a classified error at the point of detection.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	gameRepo repository.GameRepository
	storage  ObjectStorage
	feed     FeedPublisher
}

// NewPostService creates a new post service. storage and feed may be nil.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	gameRepo repository.GameRepository,
	storage ObjectStorage,
	feed FeedPublisher,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		gameRepo: gameRepo,
		storage:  storage,
		feed:     feed,
	}
}

// CreatePostInput carries an already shape-validated create request.
// Either GameID or GameName resolves the reviewed game.
type CreatePostInput struct {
	AuthorID         string
	GameID           string
	GameName         string
	Review           string
	Rating           int
	Photo            []byte
	PhotoContentType string
}

// CreatePost persists a post and links it into the author's and the game's
// posts lists, in that order. The post record is written first so a reverse
// reference never points at a post that does not exist yet; the two appends
// that follow are independent and may each fail with NotFound, leaving the
// post orphaned on that side until the checker reconciles it.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostView, error) {
	game, err := s.resolveGame(ctx, in.GameID, in.GameName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	post := &models.Post{
		ID:        uuid.New().String(),
		UserID:    in.AuthorID,
		GameID:    game.ID,
		Review:    in.Review,
		Rating:    in.Rating,
		Likes:     0,
		CreatedAt: now,
	}

	if len(in.Photo) > 0 && s.storage != nil {
		key := fmt.Sprintf("posts/PostPhoto-%s-%d.webp", in.AuthorID, now.UnixMilli())
		url, err := s.storage.Upload(ctx, key, in.Photo, in.PhotoContentType)
		if err != nil {
			// Recoverable: the post is created without a photo.
			log.Warn().Err(err).Str("user_id", in.AuthorID).Msg("Photo upload failed, creating post without photo")
		} else {
			post.Photo = url
		}
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, apperrors.Internal("failed to create post").WithCause(err)
	}

	n, err := s.userRepo.AddPostRef(ctx, in.AuthorID, post.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to link post to user").WithCause(err)
	}
	if n == 0 {
		// The post record exists but the author is gone: orphaned from the
		// user side, left for the consistency checker. No rollback.
		log.Warn().Str("post_id", post.ID).Str("user_id", in.AuthorID).Msg("Post orphaned: author vanished before linking")
		return nil, apperrors.NotFound("user not found")
	}

	n, err = s.gameRepo.AddPostRef(ctx, game.ID, post.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to link post to game").WithCause(err)
	}
	if n == 0 {
		log.Warn().Str("post_id", post.ID).Str("game_id", game.ID).Msg("Post orphaned: game vanished before linking")
		return nil, apperrors.NotFound("game not found")
	}

	view := &models.PostView{Post: *post, Game: game.Summary()}
	author, err := s.userRepo.GetByID(ctx, in.AuthorID)
	if err == nil {
		view.User = author.Summary()
		if s.feed != nil {
			s.feed.PublishPost(view, author.Followers)
		}
	} else {
		log.Warn().Err(err).Str("user_id", in.AuthorID).Msg("Could not join author summary on created post")
	}

	log.Info().Str("post_id", post.ID).Str("user_id", in.AuthorID).Str("game_id", game.ID).Msg("Post created")
	return view, nil
}

func (s *PostService) resolveGame(ctx context.Context, gameID, gameName string) (*models.Game, error) {
	var (
		game *models.Game
		err  error
	)
	switch {
	case gameID != "":
		game, err = s.gameRepo.GetByID(ctx, gameID)
	case gameName != "":
		game, err = s.gameRepo.GetByName(ctx, gameName)
	default:
		return nil, apperrors.Validation("game reference is required")
	}
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, apperrors.NotFound("game not found")
		}
		return nil, apperrors.Internal("failed to resolve game").WithCause(err)
	}
	return game, nil
}

// DeletePost removes a post after an ownership check. Reverse references
// are cleaned up before the post record is deleted, so a crash mid-sequence
// leaves at worst a live post no list points to, never a list entry whose
// target is unrecoverable.
func (s *PostService) DeletePost(ctx context.Context, postID, requestingUserID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return apperrors.NotFound("post not found")
		}
		return apperrors.Internal("failed to load post").WithCause(err)
	}

	if post.UserID != requestingUserID {
		return apperrors.Forbidden("only the author can delete a post")
	}

	if post.Photo != "" && s.storage != nil {
		// An orphaned asset is cheaper than a blocked delete.
		if err := s.storage.Delete(ctx, post.Photo); err != nil {
			log.Warn().Err(err).Str("post_id", postID).Msg("Failed to delete post photo, continuing")
		}
	}

	n, err := s.userRepo.RemovePostRef(ctx, post.UserID, postID)
	if err != nil {
		return apperrors.Internal("failed to unlink post from user").WithCause(err)
	}
	if n == 0 {
		return apperrors.NotFound("user not found")
	}

	n, err = s.gameRepo.RemovePostRef(ctx, post.GameID, postID)
	if err != nil {
		return apperrors.Internal("failed to unlink post from game").WithCause(err)
	}
	if n == 0 {
		return apperrors.NotFound("game not found")
	}

	n, err = s.postRepo.Delete(ctx, postID)
	if err != nil {
		return apperrors.Internal("failed to delete post").WithCause(err)
	}
	if n == 0 {
		// Lost a race with a concurrent delete after the load above.
		return apperrors.Internal("post vanished during delete")
	}

	log.Info().Str("post_id", postID).Str("user_id", requestingUserID).Msg("Post deleted")
	return nil
}

// LikePost increments the like counter, the only mutable post field.
func (s *PostService) LikePost(ctx context.Context, postID string) error {
	n, err := s.postRepo.AddLike(ctx, postID)
	if err != nil {
		return apperrors.Internal("failed to like post").WithCause(err)
	}
	if n == 0 {
		return apperrors.NotFound("post not found")
	}
	return nil
}

// UnlikePost decrements the like counter. Unliking a post with zero likes
// is a no-op.
func (s *PostService) UnlikePost(ctx context.Context, postID string) error {
	_, err := s.postRepo.RemoveLike(ctx, postID)
	if err != nil {
		return apperrors.Internal("failed to unlike post").WithCause(err)
	}
	return nil
}

// ListFeed returns the newest posts joined with author and game summaries.
func (s *PostService) ListFeed(ctx context.Context, limit, offset int) ([]*models.PostView, int, error) {
	if err := validatePage(limit, offset); err != nil {
		return nil, 0, err
	}
	posts, total, err := s.postRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("failed to list posts").WithCause(err)
	}
	views, err := s.join(ctx, posts)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListUserPosts returns a user's newest posts joined with summaries.
func (s *PostService) ListUserPosts(ctx context.Context, userID string, limit, offset int) ([]*models.PostView, int, error) {
	if err := validatePage(limit, offset); err != nil {
		return nil, 0, err
	}
	posts, total, err := s.postRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("failed to list user posts").WithCause(err)
	}
	views, err := s.join(ctx, posts)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListGamePosts returns a game's newest posts joined with summaries.
func (s *PostService) ListGamePosts(ctx context.Context, gameID string, limit, offset int) ([]*models.PostView, int, error) {
	if err := validatePage(limit, offset); err != nil {
		return nil, 0, err
	}
	posts, total, err := s.postRepo.ListByGame(ctx, gameID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("failed to list game posts").WithCause(err)
	}
	views, err := s.join(ctx, posts)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// join enriches posts with trimmed user and game summaries. Lookups are
// cached per call; a post whose author or game record is missing keeps a
// zero summary rather than failing the whole listing.
func (s *PostService) join(ctx context.Context, posts []*models.Post) ([]*models.PostView, error) {
	users := make(map[string]models.UserSummary)
	games := make(map[string]models.GameSummary)

	views := make([]*models.PostView, 0, len(posts))
	for _, post := range posts {
		view := &models.PostView{Post: *post}

		if summary, ok := users[post.UserID]; ok {
			view.User = summary
		} else if user, err := s.userRepo.GetByID(ctx, post.UserID); err == nil {
			users[post.UserID] = user.Summary()
			view.User = users[post.UserID]
		} else if !errors.Is(err, repository.ErrNoRecord) {
			return nil, apperrors.Internal("failed to join post author").WithCause(err)
		}

		if summary, ok := games[post.GameID]; ok {
			view.Game = summary
		} else if game, err := s.gameRepo.GetByID(ctx, post.GameID); err == nil {
			games[post.GameID] = game.Summary()
			view.Game = games[post.GameID]
		} else if !errors.Is(err, repository.ErrNoRecord) {
			return nil, apperrors.Internal("failed to join post game").WithCause(err)
		}

		views = append(views, view)
	}
	return views, nil
}
