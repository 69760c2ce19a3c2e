package dialect

import (
	"fmt"
	"strings"
)

type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	// RenderValue formats v as a SQL literal.
	RenderValue(v any) string
	// EscapeString escapes s for use inside a single-quoted literal.
	EscapeString(s string) string
	// DeleteOne builds a statement deleting at most one row of table matching where.
	DeleteOne(table, where string) string
}

// ByName resolves a driver or dialect name.
func ByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "mysql", "mariadb":
		return NewMySQLDialect(), nil
	case "tidb":
		return NewTiDBDialect(), nil
	case "postgres", "postgresql", "pgx":
		return NewPostgresDialect(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteDialect(), nil
	}
	return nil, fmt.Errorf("unknown dialect: %s", name)
}

func doubleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
