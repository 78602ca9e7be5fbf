package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateComments, downCreateComments)
}

func upCreateComments(ctx context.Context, tx *sql.Tx) error {
	var stmts []string
	switch dialect {
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS comments (
    id         VARCHAR(36) PRIMARY KEY,
    post_id    VARCHAR(36) NOT NULL,
    author_id  VARCHAR(36) NOT NULL,
    parent_id  VARCHAR(36),
    body       TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    INDEX idx_comments_post (post_id),
    CONSTRAINT fk_comments_post FOREIGN KEY (post_id) REFERENCES posts (id) ON DELETE CASCADE,
    CONSTRAINT fk_comments_author FOREIGN KEY (author_id) REFERENCES users (id),
    CONSTRAINT fk_comments_parent FOREIGN KEY (parent_id) REFERENCES comments (id) ON DELETE CASCADE
)`,
		}
	default: // sqlite3, postgres
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS comments (
    id         TEXT PRIMARY KEY,
    post_id    TEXT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
    author_id  TEXT NOT NULL REFERENCES users (id),
    parent_id  TEXT REFERENCES comments (id) ON DELETE CASCADE,
    body       TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_id)`,
		}
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create comments table: %w", err)
		}
	}
	return nil
}

func downCreateComments(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS comments`)
	return err
}
