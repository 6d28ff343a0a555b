package consistency

import (
	"context"
	"time"

	"gamereview-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// Runner periodically loads a snapshot and logs every discrepancy it
// finds. It only reports; repair stays an explicit operation.
type Runner struct {
	users    repository.UserRepository
	games    repository.GameRepository
	posts    repository.PostRepository
	interval time.Duration
	quit     chan struct{}
	doneCh   chan struct{}
}

// NewRunner creates a new periodic checker.
func NewRunner(users repository.UserRepository, games repository.GameRepository, posts repository.PostRepository, interval time.Duration) *Runner {
	return &Runner{
		users:    users,
		games:    games,
		posts:    posts,
		interval: interval,
		quit:     make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the runner in a background goroutine.
func (r *Runner) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the runner to stop and returns immediately.
// Call Done() to wait for it to exit.
func (r *Runner) Stop() {
	close(r.quit)
}

// Done returns a channel that is closed when the runner has fully stopped.
func (r *Runner) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.doneCh)

	interval := r.interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Runner) sweep(ctx context.Context) {
	snapshot, err := Load(ctx, r.users, r.games, r.posts)
	if err != nil {
		log.Error().Err(err).Msg("Consistency sweep failed to load snapshot")
		return
	}

	discrepancies := Check(snapshot)
	for _, d := range discrepancies {
		log.Warn().
			Str("problem", string(d.Problem)).
			Str("kind", d.Kind).
			Str("id", d.ID).
			Str("ref", d.Ref).
			Msg("Consistency discrepancy")
	}

	log.Info().
		Int("users", len(snapshot.Users)).
		Int("games", len(snapshot.Games)).
		Int("posts", len(snapshot.Posts)).
		Int("discrepancies", len(discrepancies)).
		Msg("Consistency sweep complete")
}
