package services

import (
	"context"
	"errors"

	"gamereview-backend/internal/apperrors"
	"gamereview-backend/internal/models"
	"gamereview-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// PushNotifier delivers best-effort push notifications.
type PushNotifier interface {
	NewFollower(ctx context.Context, deviceToken string, follower models.UserSummary) error
}

// FollowService coordinates the follow graph. A follow edge is two entries
// in two independently stored user records that must mirror each other; the
// two appends (and the two removals) run without a surrounding transaction,
// so a failure between them leaves a one-sided edge that is reported as an
// internal error and left to the consistency checker.
type FollowService struct {
	userRepo repository.UserRepository
	notifier PushNotifier
}

// NewFollowService creates a new follow service. notifier may be nil.
func NewFollowService(userRepo repository.UserRepository, notifier PushNotifier) *FollowService {
	return &FollowService{userRepo: userRepo, notifier: notifier}
}

// Follow makes requesterID a follower of targetID: requesterID is appended
// to the target's followers, then targetID to the requester's following.
func (s *FollowService) Follow(ctx context.Context, targetID, requesterID string) error {
	if targetID == requesterID {
		return apperrors.Conflict("cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Internal("failed to load user").WithCause(err)
	}
	for _, id := range target.Followers {
		if id == requesterID {
			return apperrors.Conflict("already following")
		}
	}

	n, err := s.userRepo.AddFollower(ctx, targetID, requesterID)
	if err != nil {
		return apperrors.Internal("failed to add follower").WithCause(err)
	}
	if n == 0 {
		// Target vanished, or a concurrent follow won the race.
		return apperrors.Internal("follower edge not applied")
	}

	n, err = s.userRepo.AddFollowing(ctx, requesterID, targetID)
	if err != nil {
		return apperrors.Internal("failed to add following").WithCause(err)
	}
	if n == 0 {
		// One-sided edge: the follower entry exists but the following entry
		// does not. Reported, not rolled back; the checker reconciles it.
		log.Warn().Str("target_id", targetID).Str("requester_id", requesterID).Msg("Follow edge one-sided: following append not applied")
		return apperrors.Internal("following edge not applied")
	}

	s.notifyNewFollower(ctx, target, requesterID)

	log.Info().Str("target_id", targetID).Str("requester_id", requesterID).Msg("User followed")
	return nil
}

// Unfollow removes the follow edge. Both removals run independently and
// removing an already-missing entry is a no-op, so a repeated unfollow
// fails only on the initial membership check.
func (s *FollowService) Unfollow(ctx context.Context, targetID, requesterID string) error {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Internal("failed to load user").WithCause(err)
	}

	following := false
	for _, id := range target.Followers {
		if id == requesterID {
			following = true
			break
		}
	}
	if !following {
		return apperrors.NotFound("not following")
	}

	if _, err := s.userRepo.RemoveFollower(ctx, targetID, requesterID); err != nil {
		return apperrors.Internal("failed to remove follower").WithCause(err)
	}
	if _, err := s.userRepo.RemoveFollowing(ctx, requesterID, targetID); err != nil {
		return apperrors.Internal("failed to remove following").WithCause(err)
	}

	log.Info().Str("target_id", targetID).Str("requester_id", requesterID).Msg("User unfollowed")
	return nil
}

func (s *FollowService) notifyNewFollower(ctx context.Context, target *models.User, requesterID string) {
	if s.notifier == nil || target.PushToken == nil {
		return
	}
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return
	}
	if err := s.notifier.NewFollower(ctx, *target.PushToken, requester.Summary()); err != nil {
		log.Warn().Err(err).Str("user_id", target.ID).Msg("Failed to push new-follower notification")
	}
}
