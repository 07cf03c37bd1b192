package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
)

// Dialect hides the differences between the supported backends from the duel and theme repositories
type Dialect interface {
	DriverName() string

	// DSN builds the connection string, adding whatever the version checks on duels depend on
	DSN(config DialectConfig) string

	// RewriteQuery turns ? placeholders into the backend's native form
	RewriteQuery(query string) string

	// ConfigureConnection sizes the pool and sets session options for many short duel writes
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the directory under migrations/ holding this backend's schema
	MigrationsSubdir() string

	CreateMigrationsTableQuery() string

	// InClause filters column by a set of values. Repositories write it with ? placeholders
	// and pass the returned args in place of values.
	InClause(column string, values []string) (string, []any)
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// SQLite file
	Path string

	// PostgreSQL or MySQL URL
	URL string
}

var placeholderRegexp = regexp.MustCompile(`\?`)

func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// expandInClause writes one placeholder per value, for backends without array parameters
func expandInClause(column string, values []string) (string, []any) {
	if len(values) == 0 {
		return "1 = 0", nil
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return column + " IN (?" + strings.Repeat(", ?", len(values)-1) + ")", args
}
