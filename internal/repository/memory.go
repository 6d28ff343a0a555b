package repository

import (
	"context"
	"sort"
	"sync"

	"gamereview-backend/internal/models"
)

// MemoryStore is an in-memory implementation of the three repositories with
// the same applied-count semantics as the PostgreSQL implementations. It
// backs the service and consistency tests and lets the checker run against
// a snapshot without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
	games map[string]*models.Game
	posts map[string]*models.Post
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.User),
		games: make(map[string]*models.Game),
		posts: make(map[string]*models.Post),
	}
}

// Users returns the store as a UserRepository.
func (m *MemoryStore) Users() UserRepository { return (*memoryUsers)(m) }

// Games returns the store as a GameRepository.
func (m *MemoryStore) Games() GameRepository { return (*memoryGames)(m) }

// Posts returns the store as a PostRepository.
func (m *MemoryStore) Posts() PostRepository { return (*memoryPosts)(m) }

type memoryUsers MemoryStore
type memoryGames MemoryStore
type memoryPosts MemoryStore

func copyUser(u *models.User) *models.User {
	c := *u
	c.Posts = append([]string(nil), u.Posts...)
	c.Followers = append([]string(nil), u.Followers...)
	c.Following = append([]string(nil), u.Following...)
	c.FavGames = append([]string(nil), u.FavGames...)
	return &c
}

func copyGame(g *models.Game) *models.Game {
	c := *g
	c.Tags = append([]string(nil), g.Tags...)
	c.Posts = append([]string(nil), g.Posts...)
	return &c
}

func copyPost(p *models.Post) *models.Post {
	c := *p
	return &c
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func (m *memoryUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNoRecord
	}
	return copyUser(u), nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, ErrNoRecord
}

func (m *memoryUsers) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) List(_ context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (m *memoryUsers) AddPostRef(_ context.Context, userID, postID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return 0, nil
	}
	if !contains(u.Posts, postID) {
		u.Posts = append(u.Posts, postID)
	}
	return 1, nil
}

func (m *memoryUsers) RemovePostRef(_ context.Context, userID, postID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return 0, nil
	}
	u.Posts = remove(u.Posts, postID)
	return 1, nil
}

func (m *memoryUsers) appendUnique(userID, value string, field func(*models.User) *[]string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return 0, nil
	}
	list := field(u)
	if contains(*list, value) {
		return 0, nil
	}
	*list = append(*list, value)
	return 1, nil
}

func (m *memoryUsers) removePresent(userID, value string, field func(*models.User) *[]string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return 0, nil
	}
	list := field(u)
	if !contains(*list, value) {
		return 0, nil
	}
	*list = remove(*list, value)
	return 1, nil
}

func (m *memoryUsers) AddFollower(_ context.Context, userID, followerID string) (int64, error) {
	return m.appendUnique(userID, followerID, func(u *models.User) *[]string { return &u.Followers })
}

func (m *memoryUsers) RemoveFollower(_ context.Context, userID, followerID string) (int64, error) {
	return m.removePresent(userID, followerID, func(u *models.User) *[]string { return &u.Followers })
}

func (m *memoryUsers) AddFollowing(_ context.Context, userID, followingID string) (int64, error) {
	return m.appendUnique(userID, followingID, func(u *models.User) *[]string { return &u.Following })
}

func (m *memoryUsers) RemoveFollowing(_ context.Context, userID, followingID string) (int64, error) {
	return m.removePresent(userID, followingID, func(u *models.User) *[]string { return &u.Following })
}

func (m *memoryUsers) AddFavGame(_ context.Context, userID, gameID string) (int64, error) {
	return m.appendUnique(userID, gameID, func(u *models.User) *[]string { return &u.FavGames })
}

func (m *memoryUsers) RemoveFavGame(_ context.Context, userID, gameID string) (int64, error) {
	return m.removePresent(userID, gameID, func(u *models.User) *[]string { return &u.FavGames })
}

func (m *memoryUsers) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.PushToken = pushToken
	}
	return nil
}

// DeleteUser removes a user record outright. Only tests use it, to
// simulate a user vanishing mid-sequence.
func (m *MemoryStore) DeleteUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// DeleteGame removes a game record outright. Only tests use it.
func (m *MemoryStore) DeleteGame(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
}

func (m *memoryGames) Create(_ context.Context, game *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[game.ID] = copyGame(game)
	return nil
}

func (m *memoryGames) GetByID(_ context.Context, id string) (*models.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNoRecord
	}
	return copyGame(g), nil
}

func (m *memoryGames) GetByName(_ context.Context, name string) (*models.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.games {
		if g.Name == name {
			return copyGame(g), nil
		}
	}
	return nil, ErrNoRecord
}

func (m *memoryGames) List(_ context.Context, limit, offset int) ([]*models.Game, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	games := make([]*models.Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, copyGame(g))
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Launch.After(games[j].Launch) })
	total := len(games)
	return paginate(games, limit, offset), total, nil
}

func (m *memoryGames) ListAll(_ context.Context) ([]*models.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	games := make([]*models.Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, copyGame(g))
	}
	sort.Slice(games, func(i, j int) bool { return games[i].CreatedAt.Before(games[j].CreatedAt) })
	return games, nil
}

func (m *memoryGames) AddPostRef(_ context.Context, gameID, postID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return 0, nil
	}
	if !contains(g.Posts, postID) {
		g.Posts = append(g.Posts, postID)
	}
	return 1, nil
}

func (m *memoryGames) RemovePostRef(_ context.Context, gameID, postID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return 0, nil
	}
	g.Posts = remove(g.Posts, postID)
	return 1, nil
}

func (m *memoryPosts) Create(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[post.ID] = copyPost(post)
	return nil
}

func (m *memoryPosts) GetByID(_ context.Context, id string) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNoRecord
	}
	return copyPost(p), nil
}

func (m *memoryPosts) Delete(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return 0, nil
	}
	delete(m.posts, id)
	return 1, nil
}

func (m *memoryPosts) sorted(filter func(*models.Post) bool) []*models.Post {
	var posts []*models.Post
	for _, p := range m.posts {
		if filter == nil || filter(p) {
			posts = append(posts, copyPost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts
}

func (m *memoryPosts) List(_ context.Context, limit, offset int) ([]*models.Post, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	posts := m.sorted(nil)
	return paginate(posts, limit, offset), len(posts), nil
}

func (m *memoryPosts) ListByUser(_ context.Context, userID string, limit, offset int) ([]*models.Post, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	posts := m.sorted(func(p *models.Post) bool { return p.UserID == userID })
	return paginate(posts, limit, offset), len(posts), nil
}

func (m *memoryPosts) ListByGame(_ context.Context, gameID string, limit, offset int) ([]*models.Post, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	posts := m.sorted(func(p *models.Post) bool { return p.GameID == gameID })
	return paginate(posts, limit, offset), len(posts), nil
}

func (m *memoryPosts) ListAll(_ context.Context) ([]*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	posts := m.sorted(nil)
	// ListAll mirrors the SQL implementation: oldest first.
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
	return posts, nil
}

func (m *memoryPosts) AverageRating(_ context.Context, gameID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum, n int
	for _, p := range m.posts {
		if p.GameID == gameID {
			sum += p.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (m *memoryPosts) AddLike(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return 0, nil
	}
	p.Likes++
	return 1, nil
}

func (m *memoryPosts) RemoveLike(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || p.Likes == 0 {
		return 0, nil
	}
	p.Likes--
	return 1, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
