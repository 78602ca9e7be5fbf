package migrations

// Magic-link login tokens. Only the SHA-256 of the token is stored; the
// plaintext leaves the process once, inside the emailed link.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateLoginTokens, downCreateLoginTokens)
}

func upCreateLoginTokens(ctx context.Context, tx *sql.Tx) error {
	var stmts []string
	switch dialect {
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS login_tokens (
    id          VARCHAR(36) PRIMARY KEY,
    user_id     VARCHAR(36) NOT NULL,
    token_hash  VARCHAR(64) NOT NULL,
    expires_at  TIMESTAMP NOT NULL,
    consumed_at TIMESTAMP NULL,
    created_at  TIMESTAMP NOT NULL,
    UNIQUE KEY idx_login_tokens_hash (token_hash),
    CONSTRAINT fk_login_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
)`,
		}
	default: // sqlite3, postgres
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS login_tokens (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    token_hash  TEXT NOT NULL,
    expires_at  TIMESTAMP NOT NULL,
    consumed_at TIMESTAMP,
    created_at  TIMESTAMP NOT NULL
)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_login_tokens_hash ON login_tokens (token_hash)`,
		}
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create login_tokens table: %w", err)
		}
	}
	return nil
}

func downCreateLoginTokens(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS login_tokens`)
	return err
}
