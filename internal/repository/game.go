package repository

import (
	"context"
	"fmt"

	"gamereview-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGameRepository is the PostgreSQL-backed game store.
type PostgresGameRepository struct {
	db *pgxpool.Pool
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *pgxpool.Pool) *PostgresGameRepository {
	return &PostgresGameRepository{db: db}
}

const gameColumns = `id, name, banner, description, tags, genre, mode, studio, launch, posts, created_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var game models.Game
	err := row.Scan(
		&game.ID, &game.Name, &game.Banner, &game.Description, &game.Tags,
		&game.Genre, &game.Mode, &game.Studio, &game.Launch, &game.Posts,
		&game.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// Create creates a new game
func (r *PostgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (` + gameColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		game.ID, game.Name, game.Banner, game.Description, game.Tags,
		game.Genre, game.Mode, game.Studio, game.Launch, game.Posts,
		game.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// GetByID retrieves a game by ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	game, err := scanGame(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// GetByName retrieves a game by its exact name
func (r *PostgresGameRepository) GetByName(ctx context.Context, name string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE name = $1 LIMIT 1`
	game, err := scanGame(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to get game by name: %w", err)
	}
	return game, nil
}

// List retrieves games with pagination, newest launch first
func (r *PostgresGameRepository) List(ctx context.Context, limit, offset int) ([]*models.Game, int, error) {
	countQuery := `SELECT COUNT(*) FROM games`
	var total int
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count games: %w", err)
	}

	query := `
		SELECT ` + gameColumns + `
		FROM games
		ORDER BY launch DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating games: %w", err)
	}
	return games, total, nil
}

// ListAll retrieves all games
func (r *PostgresGameRepository) ListAll(ctx context.Context) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}
	return games, nil
}

// AddPostRef appends a post id to the game's posts list, idempotently.
// The returned count reports 1 whenever the game exists.
func (r *PostgresGameRepository) AddPostRef(ctx context.Context, gameID, postID string) (int64, error) {
	query := `
		UPDATE games
		SET posts = CASE WHEN $2 = ANY(posts) THEN posts ELSE array_append(posts, $2) END
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, gameID, postID)
	if err != nil {
		return 0, fmt.Errorf("failed to add post ref: %w", err)
	}
	return result.RowsAffected(), nil
}

// RemovePostRef removes a post id from the game's posts list. The returned
// count reports 1 whenever the game exists.
func (r *PostgresGameRepository) RemovePostRef(ctx context.Context, gameID, postID string) (int64, error) {
	query := `UPDATE games SET posts = array_remove(posts, $2) WHERE id = $1`
	result, err := r.db.Exec(ctx, query, gameID, postID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove post ref: %w", err)
	}
	return result.RowsAffected(), nil
}
