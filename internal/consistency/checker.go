// Package consistency verifies the denormalized reference graph: every
// post must appear in exactly the posts lists of its user and its game,
// and the followers/following sets of every user pair must mirror each
// other. The coordinator's write sequences are best-effort, so drift is
// expected after partial failures; this package detects it and, as a
// separate explicit operation, repairs it.
package consistency

import (
	"context"
	"fmt"

	"gamereview-backend/internal/models"
	"gamereview-backend/internal/repository"
)

// Problem classifies a discrepancy.
type Problem string

const (
	// PostOwnerMissing: a post's user record does not exist.
	PostOwnerMissing Problem = "post_owner_missing"
	// PostGameMissing: a post's game record does not exist.
	PostGameMissing Problem = "post_game_missing"
	// PostNotInUserList: the owner exists but its posts list lacks the post.
	PostNotInUserList Problem = "post_not_in_user_list"
	// PostNotInGameList: the owner lists the post but the game's list lacks it.
	PostNotInGameList Problem = "post_not_in_game_list"
	// StaleUserPostRef: a user's posts list references a post that does not
	// exist or belongs to someone else.
	StaleUserPostRef Problem = "stale_user_post_ref"
	// StaleGamePostRef: a game's posts list references a post that does not
	// exist or reviews a different game.
	StaleGamePostRef Problem = "stale_game_post_ref"
	// FollowerNotMirrored: A is in B's followers but B is not in A's
	// following (or A does not exist).
	FollowerNotMirrored Problem = "follower_not_mirrored"
	// FollowingNotMirrored: B is in A's following but A is not in B's
	// followers (or B does not exist).
	FollowingNotMirrored Problem = "following_not_mirrored"
	// SelfFollow: a user appears in its own followers or following set.
	SelfFollow Problem = "self_follow"
)

// Discrepancy describes one broken reference. Kind and ID name the entity
// holding the problem, Ref the reference involved.
type Discrepancy struct {
	Problem Problem `json:"problem"`
	Kind    string  `json:"kind"` // "user", "game" or "post"
	ID      string  `json:"id"`
	Ref     string  `json:"ref"`
	Detail  string  `json:"detail"`
}

func (d Discrepancy) String() string {
	return fmt.Sprintf("%s %s %s (ref %s): %s", d.Problem, d.Kind, d.ID, d.Ref, d.Detail)
}

// Snapshot is the full entity set the checker runs against.
type Snapshot struct {
	Users []*models.User
	Games []*models.Game
	Posts []*models.Post
}

// Load reads a full snapshot through the repositories.
func Load(ctx context.Context, users repository.UserRepository, games repository.GameRepository, posts repository.PostRepository) (*Snapshot, error) {
	allUsers, err := users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	allGames, err := games.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	allPosts, err := posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	return &Snapshot{Users: allUsers, Games: allGames, Posts: allPosts}, nil
}

// Check verifies the snapshot and returns every discrepancy found. It
// never mutates anything; repair is a separate operation.
func Check(s *Snapshot) []Discrepancy {
	users := make(map[string]*models.User, len(s.Users))
	for _, u := range s.Users {
		users[u.ID] = u
	}
	games := make(map[string]*models.Game, len(s.Games))
	for _, g := range s.Games {
		games[g.ID] = g
	}
	posts := make(map[string]*models.Post, len(s.Posts))
	for _, p := range s.Posts {
		posts[p.ID] = p
	}

	var out []Discrepancy

	for _, p := range s.Posts {
		owner, ownerOK := users[p.UserID]
		game, gameOK := games[p.GameID]

		switch {
		case !ownerOK:
			out = append(out, Discrepancy{
				Problem: PostOwnerMissing, Kind: "post", ID: p.ID, Ref: p.UserID,
				Detail: "owning user record does not exist",
			})
		case !contains(owner.Posts, p.ID):
			out = append(out, Discrepancy{
				Problem: PostNotInUserList, Kind: "post", ID: p.ID, Ref: p.UserID,
				Detail: "post is absent from its owner's posts list",
			})
		case !gameOK:
			out = append(out, Discrepancy{
				Problem: PostGameMissing, Kind: "post", ID: p.ID, Ref: p.GameID,
				Detail: "reviewed game record does not exist",
			})
		case !contains(game.Posts, p.ID):
			out = append(out, Discrepancy{
				Problem: PostNotInGameList, Kind: "post", ID: p.ID, Ref: p.GameID,
				Detail: "post is absent from its game's posts list",
			})
		}
	}

	for _, u := range s.Users {
		for _, postID := range u.Posts {
			p, ok := posts[postID]
			if !ok || p.UserID != u.ID {
				out = append(out, Discrepancy{
					Problem: StaleUserPostRef, Kind: "user", ID: u.ID, Ref: postID,
					Detail: "posts list references a post that does not exist or is not owned by this user",
				})
			}
		}
	}

	for _, g := range s.Games {
		for _, postID := range g.Posts {
			p, ok := posts[postID]
			if !ok || p.GameID != g.ID {
				out = append(out, Discrepancy{
					Problem: StaleGamePostRef, Kind: "game", ID: g.ID, Ref: postID,
					Detail: "posts list references a post that does not exist or reviews a different game",
				})
			}
		}
	}

	for _, u := range s.Users {
		if contains(u.Followers, u.ID) || contains(u.Following, u.ID) {
			out = append(out, Discrepancy{
				Problem: SelfFollow, Kind: "user", ID: u.ID, Ref: u.ID,
				Detail: "user appears in its own follow sets",
			})
		}

		for _, followerID := range u.Followers {
			if followerID == u.ID {
				continue
			}
			follower, ok := users[followerID]
			if !ok || !contains(follower.Following, u.ID) {
				out = append(out, Discrepancy{
					Problem: FollowerNotMirrored, Kind: "user", ID: u.ID, Ref: followerID,
					Detail: "follower edge has no matching following entry",
				})
			}
		}

		for _, followedID := range u.Following {
			if followedID == u.ID {
				continue
			}
			followed, ok := users[followedID]
			if !ok || !contains(followed.Followers, u.ID) {
				out = append(out, Discrepancy{
					Problem: FollowingNotMirrored, Kind: "user", ID: u.ID, Ref: followedID,
					Detail: "following edge has no matching follower entry",
				})
			}
		}
	}

	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
