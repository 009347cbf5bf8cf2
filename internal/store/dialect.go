package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// dialect isolates the SQL differences between the supported engines.
type dialect interface {
	name() string
	driverName() string
	schema() string
	configure(db *sql.DB) error
	migrate(db *sql.DB) error
	rebind(query string) string
	resetEntrySequence(ctx context.Context, tx *sql.Tx) error
}

type sqliteDialect struct{}

func (sqliteDialect) name() string       { return DriverSQLite }
func (sqliteDialect) driverName() string { return "sqlite3" }
func (sqliteDialect) schema() string     { return sqliteSchema }
func (sqliteDialect) rebind(q string) string {
	return q
}

// configure limits the pool to one connection (SQLite has a single writer)
// and applies the required pragmas.
func (sqliteDialect) configure(db *sql.DB) error {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (sqliteDialect) migrate(db *sql.DB) error {
	return runSQLiteMigrations(db)
}

// resetEntrySequence drops the AUTOINCREMENT counter of entries. SQLite
// then assigns max(id)+1, which is 1 for an empty table.
func (sqliteDialect) resetEntrySequence(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'entries'`)
	return err
}

type postgresDialect struct{}

func (postgresDialect) name() string       { return DriverPostgres }
func (postgresDialect) driverName() string { return "postgres" }
func (postgresDialect) schema() string     { return postgresSchema }

func (postgresDialect) configure(db *sql.DB) error {
	db.SetMaxOpenConns(1)
	return nil
}

func (postgresDialect) migrate(db *sql.DB) error { return nil }

// rebind rewrites ? placeholders to $1, $2, ...
func (postgresDialect) rebind(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// resetEntrySequence restarts the id sequence after the highest remaining
// id, which is 1 for an empty table. Restarting at 1 unconditionally would
// collide with entries of other books.
func (postgresDialect) resetEntrySequence(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		SELECT setval(pg_get_serial_sequence('entries', 'id'),
		              COALESCE((SELECT MAX(id) FROM entries), 0) + 1,
		              false)
	`)
	return err
}
