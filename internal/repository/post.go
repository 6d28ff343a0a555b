package repository

import (
	"context"
	"fmt"

	"gamereview-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPostRepository is the PostgreSQL-backed post store.
type PostgresPostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

const postColumns = `id, user_id, game_id, review, rating, photo, likes, created_at`

func scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID, &post.UserID, &post.GameID, &post.Review, &post.Rating,
		&post.Photo, &post.Likes, &post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Create creates a new post
func (r *PostgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		post.ID, post.UserID, post.GameID, post.Review, post.Rating,
		post.Photo, post.Likes, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// Delete deletes a post by ID, reporting the number of deleted records.
func (r *PostgresPostRepository) Delete(ctx context.Context, id string) (int64, error) {
	query := `DELETE FROM posts WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete post: %w", err)
	}
	return result.RowsAffected(), nil
}

// List retrieves posts with pagination, newest first
func (r *PostgresPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, int, error) {
	return r.listWhere(ctx, "", "", limit, offset)
}

// ListByUser retrieves a user's posts with pagination, newest first
func (r *PostgresPostRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Post, int, error) {
	return r.listWhere(ctx, "user_id", userID, limit, offset)
}

// ListByGame retrieves a game's posts with pagination, newest first
func (r *PostgresPostRepository) ListByGame(ctx context.Context, gameID string, limit, offset int) ([]*models.Post, int, error) {
	return r.listWhere(ctx, "game_id", gameID, limit, offset)
}

func (r *PostgresPostRepository) listWhere(ctx context.Context, column, value string, limit, offset int) ([]*models.Post, int, error) {
	where := ""
	countArgs := []any{}
	listArgs := []any{limit, offset}
	if column != "" {
		where = fmt.Sprintf("WHERE %s = $1", column)
		countArgs = append(countArgs, value)
		listArgs = []any{value, limit, offset}
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM posts %s`, where)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	limitPos, offsetPos := 1, 2
	if column != "" {
		limitPos, offsetPos = 2, 3
	}
	query := fmt.Sprintf(`
		SELECT `+postColumns+`
		FROM posts
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, limitPos, offsetPos)

	rows, err := r.db.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, total, nil
}

// ListAll retrieves all posts
func (r *PostgresPostRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}

// AddLike increments the like counter. Reports 0 when the post is gone.
func (r *PostgresPostRepository) AddLike(ctx context.Context, id string) (int64, error) {
	query := `UPDATE posts SET likes = likes + 1 WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to add like: %w", err)
	}
	return result.RowsAffected(), nil
}

// AverageRating reports the mean rating across a game's posts.
func (r *PostgresPostRepository) AverageRating(ctx context.Context, gameID string) (float64, error) {
	query := `SELECT COALESCE(AVG(rating), 0) FROM posts WHERE game_id = $1`
	var avg float64
	if err := r.db.QueryRow(ctx, query, gameID).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average ratings: %w", err)
	}
	return avg, nil
}

// RemoveLike decrements the like counter, never below zero.
func (r *PostgresPostRepository) RemoveLike(ctx context.Context, id string) (int64, error) {
	query := `UPDATE posts SET likes = likes - 1 WHERE id = $1 AND likes > 0`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to remove like: %w", err)
	}
	return result.RowsAffected(), nil
}
