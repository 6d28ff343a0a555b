package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		surname    TEXT NOT NULL DEFAULT '',
		username   TEXT NOT NULL DEFAULT '',
		avatar     TEXT NOT NULL DEFAULT '',
		biography  TEXT NOT NULL DEFAULT '',
		posts      TEXT[] NOT NULL DEFAULT '{}',
		followers  TEXT[] NOT NULL DEFAULT '{}',
		following  TEXT[] NOT NULL DEFAULT '{}',
		fav_games  TEXT[] NOT NULL DEFAULT '{}',
		push_token TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		banner      TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		tags        TEXT[] NOT NULL DEFAULT '{}',
		genre       TEXT NOT NULL DEFAULT '',
		mode        TEXT NOT NULL DEFAULT '',
		studio      TEXT NOT NULL DEFAULT '',
		launch      TIMESTAMPTZ NOT NULL DEFAULT now(),
		posts       TEXT[] NOT NULL DEFAULT '{}',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		game_id    TEXT NOT NULL,
		review     TEXT NOT NULL,
		rating     INT NOT NULL,
		photo      TEXT NOT NULL DEFAULT '',
		likes      INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_games_name ON games (name)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_game_id ON posts (game_id)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC)`,
}

// Migrate creates the tables if they do not exist. Posts deliberately carry
// no foreign keys to users or games: cross-entity links are plain ids kept
// in sync by the services layer, and a dangling reference must stay
// representable so the consistency checker can find and repair it.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
