package store

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Dialect captures the SQL differences between the supported databases.
type Dialect struct {
	Name   string
	Driver string
	// DDL creates the records table when missing.
	DDL string
	// Bind renders the n-th (1-based) placeholder.
	Bind func(n int) string
}

var (
	SQLite = Dialect{
		Name:   "sqlite",
		Driver: "sqlite",
		DDL: `CREATE TABLE IF NOT EXISTS records (
		entity TEXT NOT NULL,
		id INTEGER NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (entity, id)
	)`,
		Bind: func(int) string { return "?" },
	}

	Postgres = Dialect{
		Name:   "postgres",
		Driver: "pgx",
		DDL: `CREATE TABLE IF NOT EXISTS records (
		entity TEXT NOT NULL,
		id BIGINT NOT NULL,
		payload JSONB NOT NULL,
		PRIMARY KEY (entity, id)
	)`,
		Bind: func(n int) string { return "$" + strconv.Itoa(n) },
	}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("store: unsupported driver %q", name)
	}
}

// query rewrites "?" placeholders into the dialect's syntax.
func (d Dialect) query(stmt string) string {
	if d.Bind == nil {
		return stmt
	}
	var b strings.Builder
	n := 0
	for _, r := range stmt {
		if r == '?' {
			n++
			b.WriteString(d.Bind(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
