package migrations

// The unique index on posts.slug is the authoritative uniqueness guard; the
// slug generator's pre-check only narrows the race window.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreatePosts, downCreatePosts)
}

func upCreatePosts(ctx context.Context, tx *sql.Tx) error {
	var stmts []string
	switch dialect {
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS posts (
    id              VARCHAR(36) PRIMARY KEY,
    slug            VARCHAR(86) NOT NULL,
    title           VARCHAR(86) NOT NULL,
    description     VARCHAR(256) NOT NULL,
    content         MEDIUMTEXT NOT NULL,
    author_id       VARCHAR(36) NOT NULL,
    published_at    TIMESTAMP NOT NULL,
    last_updated_at TIMESTAMP NULL,
    UNIQUE KEY idx_posts_slug (slug),
    INDEX idx_posts_author (author_id),
    CONSTRAINT fk_posts_author FOREIGN KEY (author_id) REFERENCES users (id)
)`,
		}
	default: // sqlite3, postgres
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS posts (
    id              TEXT PRIMARY KEY,
    slug            TEXT NOT NULL,
    title           TEXT NOT NULL,
    description     TEXT NOT NULL,
    content         TEXT NOT NULL,
    author_id       TEXT NOT NULL REFERENCES users (id),
    published_at    TIMESTAMP NOT NULL,
    last_updated_at TIMESTAMP
)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_slug ON posts (slug)`,
			`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author_id)`,
		}
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create posts table: %w", err)
		}
	}
	return nil
}

func downCreatePosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS posts`)
	return err
}
