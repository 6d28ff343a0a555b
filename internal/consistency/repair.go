package consistency

import (
	"context"
	"errors"
	"fmt"

	"gamereview-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// Repairer re-synchronizes the weaker side of each discrepancy toward the
// authoritative side. The referencing entity is authoritative because it
// is written first in every coordinator sequence: the owner's posts list
// for post links, the following side for follow edges. A post its owner
// does not list is treated as a delete in progress and finished; a follow
// entry without a mirror is completed or pruned depending on direction.
type Repairer struct {
	users repository.UserRepository
	games repository.GameRepository
	posts repository.PostRepository
}

// NewRepairer creates a new repairer over the given repositories.
func NewRepairer(users repository.UserRepository, games repository.GameRepository, posts repository.PostRepository) *Repairer {
	return &Repairer{users: users, games: games, posts: posts}
}

// Repair applies the repair rule for each discrepancy and returns the
// number repaired. Individual failures are logged and skipped so one bad
// record cannot block the rest of the sweep.
func (r *Repairer) Repair(ctx context.Context, discrepancies []Discrepancy) (int, error) {
	repaired := 0
	for _, d := range discrepancies {
		if err := r.repairOne(ctx, d); err != nil {
			log.Error().Err(err).Str("problem", string(d.Problem)).Str("id", d.ID).Msg("Repair failed, skipping")
			continue
		}
		repaired++
	}
	return repaired, nil
}

func (r *Repairer) repairOne(ctx context.Context, d Discrepancy) error {
	switch d.Problem {
	case PostOwnerMissing, PostNotInUserList, PostGameMissing:
		// The owner side does not vouch for the post (or a referenced
		// record is gone entirely): finish the delete.
		return r.deletePost(ctx, d.ID)

	case PostNotInGameList:
		// Owner vouches for the post: finish the create on the game side.
		post, err := r.posts.GetByID(ctx, d.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNoRecord) {
				return nil // vanished since the check, nothing to do
			}
			return err
		}
		_, err = r.games.AddPostRef(ctx, post.GameID, post.ID)
		return err

	case StaleUserPostRef:
		_, err := r.users.RemovePostRef(ctx, d.ID, d.Ref)
		return err

	case StaleGamePostRef:
		_, err := r.games.RemovePostRef(ctx, d.ID, d.Ref)
		return err

	case FollowerNotMirrored:
		// No following entry vouches for this follower edge: prune it.
		_, err := r.users.RemoveFollower(ctx, d.ID, d.Ref)
		return err

	case FollowingNotMirrored:
		// The following side is authoritative: mirror the edge into the
		// followed user's followers, unless that user no longer exists.
		n, err := r.users.AddFollower(ctx, d.Ref, d.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := r.users.GetByID(ctx, d.Ref); errors.Is(err, repository.ErrNoRecord) {
				_, err := r.users.RemoveFollowing(ctx, d.ID, d.Ref)
				return err
			}
		}
		return nil

	case SelfFollow:
		if _, err := r.users.RemoveFollower(ctx, d.ID, d.ID); err != nil {
			return err
		}
		_, err := r.users.RemoveFollowing(ctx, d.ID, d.ID)
		return err

	default:
		return fmt.Errorf("unknown problem %q", d.Problem)
	}
}

// deletePost removes a post and both reverse references, tolerating
// records that are already gone.
func (r *Repairer) deletePost(ctx context.Context, postID string) error {
	post, err := r.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil
		}
		return err
	}
	if _, err := r.users.RemovePostRef(ctx, post.UserID, postID); err != nil {
		return err
	}
	if _, err := r.games.RemovePostRef(ctx, post.GameID, postID); err != nil {
		return err
	}
	_, err = r.posts.Delete(ctx, postID)
	return err
}
