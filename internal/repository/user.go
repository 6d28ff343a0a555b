package repository

import (
	"context"
	"fmt"

	"gamereview-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserRepository is the PostgreSQL-backed user store. Reference
// lists (posts, followers, following, fav_games) are text[] columns mutated
// with single-statement array updates so each update is atomic per record.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, email, password, name, surname, username, avatar, biography,
		posts, followers, following, fav_games, push_token, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Password, &user.Name, &user.Surname,
		&user.Username, &user.Avatar, &user.Biography,
		&user.Posts, &user.Followers, &user.Following, &user.FavGames,
		&user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Password, user.Name, user.Surname,
		user.Username, user.Avatar, user.Biography,
		user.Posts, user.Followers, user.Following, user.FavGames,
		user.PushToken, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// EmailExists checks if an email is already registered
func (r *PostgresUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// List retrieves all users
func (r *PostgresUserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// AddPostRef appends a post id to the user's posts list. The append is
// idempotent; the returned count reports 1 whenever the user exists.
func (r *PostgresUserRepository) AddPostRef(ctx context.Context, userID, postID string) (int64, error) {
	query := `
		UPDATE users
		SET posts = CASE WHEN $2 = ANY(posts) THEN posts ELSE array_append(posts, $2) END
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, userID, postID)
	if err != nil {
		return 0, fmt.Errorf("failed to add post ref: %w", err)
	}
	return result.RowsAffected(), nil
}

// RemovePostRef removes a post id from the user's posts list. Removing an
// absent id is a no-op; the returned count reports 1 whenever the user exists.
func (r *PostgresUserRepository) RemovePostRef(ctx context.Context, userID, postID string) (int64, error) {
	query := `UPDATE users SET posts = array_remove(posts, $2) WHERE id = $1`
	result, err := r.db.Exec(ctx, query, userID, postID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove post ref: %w", err)
	}
	return result.RowsAffected(), nil
}

// AddFollower appends a follower id to the user's followers set. Reports 0
// when the user does not exist or the follower is already present.
func (r *PostgresUserRepository) AddFollower(ctx context.Context, userID, followerID string) (int64, error) {
	return r.appendUnique(ctx, "followers", userID, followerID)
}

// RemoveFollower removes a follower id from the user's followers set.
// Reports 0 when the user does not exist or the edge was already absent.
func (r *PostgresUserRepository) RemoveFollower(ctx context.Context, userID, followerID string) (int64, error) {
	return r.removePresent(ctx, "followers", userID, followerID)
}

// AddFollowing appends a followed-user id to the user's following set.
func (r *PostgresUserRepository) AddFollowing(ctx context.Context, userID, followingID string) (int64, error) {
	return r.appendUnique(ctx, "following", userID, followingID)
}

// RemoveFollowing removes a followed-user id from the user's following set.
func (r *PostgresUserRepository) RemoveFollowing(ctx context.Context, userID, followingID string) (int64, error) {
	return r.removePresent(ctx, "following", userID, followingID)
}

// AddFavGame appends a game id to the user's favorite games set.
func (r *PostgresUserRepository) AddFavGame(ctx context.Context, userID, gameID string) (int64, error) {
	return r.appendUnique(ctx, "fav_games", userID, gameID)
}

// RemoveFavGame removes a game id from the user's favorite games set.
func (r *PostgresUserRepository) RemoveFavGame(ctx context.Context, userID, gameID string) (int64, error) {
	return r.removePresent(ctx, "fav_games", userID, gameID)
}

// UpdatePushToken updates the push token for a user
func (r *PostgresUserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// appendUnique appends value to a set-valued column, counting only rows
// actually modified. column is always a compile-time constant.
func (r *PostgresUserRepository) appendUnique(ctx context.Context, column, userID, value string) (int64, error) {
	query := fmt.Sprintf(
		`UPDATE users SET %s = array_append(%s, $2) WHERE id = $1 AND NOT ($2 = ANY(%s))`,
		column, column, column,
	)
	result, err := r.db.Exec(ctx, query, userID, value)
	if err != nil {
		return 0, fmt.Errorf("failed to append to %s: %w", column, err)
	}
	return result.RowsAffected(), nil
}

// removePresent removes value from a set-valued column, counting only rows
// that held the value.
func (r *PostgresUserRepository) removePresent(ctx context.Context, column, userID, value string) (int64, error) {
	query := fmt.Sprintf(
		`UPDATE users SET %s = array_remove(%s, $2) WHERE id = $1 AND $2 = ANY(%s)`,
		column, column, column,
	)
	result, err := r.db.Exec(ctx, query, userID, value)
	if err != nil {
		return 0, fmt.Errorf("failed to remove from %s: %w", column, err)
	}
	return result.RowsAffected(), nil
}
