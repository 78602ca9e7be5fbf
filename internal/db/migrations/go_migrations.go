// Package migrations contains dialect-aware Go database migrations. The
// schema differs by driver (column types, index syntax), so each migration
// switches on the dialect set by the parent db package.
package migrations

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}
