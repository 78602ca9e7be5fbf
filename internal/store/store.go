// Package store provides sqlx-backed persistence for users, posts, and
// comments. Queries use ? placeholders and are rebound per driver so the same
// store runs on SQLite, PostgreSQL, and MySQL.
package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlugTaken is returned when an insert or update loses the race on the
	// unique index over posts.slug. The pre-check in the slug generator is an
	// optimization; this is the authoritative signal.
	ErrSlugTaken = errors.New("slug has already been taken")

	// ErrEmailTaken is returned when a registration collides on users.email.
	ErrEmailTaken = errors.New("email is already registered")
)

// isUniqueConstraintError checks whether err indicates a unique constraint
// violation. Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
