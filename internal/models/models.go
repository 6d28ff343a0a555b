package models

import "time"

// User represents a registered user. Reference lists hold ids of other
// entities, never embedded records; every cross-entity link is a plain id.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Biography string    `json:"biography"`
	Posts     []string  `json:"posts"`     // post ids, insertion order = creation order
	Followers []string  `json:"followers"` // user ids, set semantics
	Following []string  `json:"following"` // user ids, set semantics
	FavGames  []string  `json:"fav_games"` // game ids, set semantics
	PushToken *string   `json:"push_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Game represents a video game that can be reviewed.
type Game struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Banner      string    `json:"banner"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Genre       string    `json:"genre"`
	Mode        string    `json:"mode"` // "singleplayer" or "multiplayer"
	Studio      string    `json:"studio"`
	Launch      time.Time `json:"launch"`
	Posts       []string  `json:"posts"` // post ids
	CreatedAt   time.Time `json:"created_at"`
}

// Post is a review of a game written by a user. UserID and GameID are set
// at creation and never change; Likes is the only mutable field.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	GameID    string    `json:"game"`
	Review    string    `json:"review"`
	Rating    int       `json:"rating"`
	Photo     string    `json:"photo,omitempty"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSummary is the trimmed user shape embedded in read views.
// It never carries the password hash.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Avatar   string `json:"avatar"`
}

// GameSummary is the trimmed game shape embedded in read views.
type GameSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Banner string `json:"banner"`
}

// Summary returns the trimmed view of a user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Surname:  u.Surname,
		Avatar:   u.Avatar,
	}
}

// Summary returns the trimmed view of a game.
func (g *Game) Summary() GameSummary {
	return GameSummary{
		ID:     g.ID,
		Name:   g.Name,
		Banner: g.Banner,
	}
}

// PostView is a post joined with its author and game summaries.
type PostView struct {
	Post
	User UserSummary `json:"user_summary"`
	Game GameSummary `json:"game_summary"`
}

// Profile is the read view of a user as seen by another user.
type Profile struct {
	User           UserSummary   `json:"user"`
	Biography      string        `json:"biography"`
	FavGames       []GameSummary `json:"fav_games"`
	FollowersCount int           `json:"followers_count"`
	FollowingCount int           `json:"following_count"`
	IsFollower     bool          `json:"is_follower"`
}
