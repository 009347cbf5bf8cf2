package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// Schema version tracking (SQLite PRAGMA user_version):
// 0 - Initial schema
// 1 - Imported rows of the legacy single-table "Ledger" layout, if present
// 2 - Decimal columns (books.apr, entries.amount) stored as TEXT
const currentSchemaVersion = 2

// runSQLiteMigrations applies incremental schema migrations based on user_version.
func runSQLiteMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if version < 2 {
		if err := migrateToV2(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 imports a legacy Ledger(id, ledger, date, desc, amount) table
// into books and entries, keeping entry ids. The legacy table is left in place.
func migrateToV1(db *sql.DB) error {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'Ledger'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	if n == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate to v1: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.Exec(`
		INSERT INTO books (name)
		SELECT DISTINCT ledger FROM Ledger
		WHERE true
		ON CONFLICT(name) DO NOTHING
	`); err != nil {
		return fmt.Errorf("migrate to v1: import books: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO entries (id, book, date, description, amount)
		SELECT id, ledger, date, NULLIF("desc", ''), amount FROM Ledger
		WHERE true
		ON CONFLICT(id) DO NOTHING
	`); err != nil {
		return fmt.Errorf("migrate to v1: import entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate to v1: commit: %w", err)
	}
	return nil
}

// migrateToV2 rebuilds books and entries when their decimal columns still
// carry NUMERIC affinity, which SQLite narrows to a float64. Values already
// rounded by that affinity cannot be recovered; they are kept as text.
// Entry ids and the AUTOINCREMENT high-water mark are preserved.
//
// The pool holds a single connection, so the foreign_keys toggle applies
// to the transaction below.
func migrateToV2(db *sql.DB) error {
	var colType string
	err := db.QueryRow(`SELECT type FROM pragma_table_info('entries') WHERE name = 'amount'`).Scan(&colType)
	if err != nil {
		return fmt.Errorf("migrate to v2: inspect entries: %w", err)
	}
	if strings.EqualFold(colType, "TEXT") {
		return nil
	}

	var seq int64
	err = db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM sqlite_sequence WHERE name = 'entries'`).Scan(&seq)
	if err != nil {
		return fmt.Errorf("migrate to v2: read sequence: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("migrate to v2: disable foreign keys: %w", err)
	}
	defer db.Exec("PRAGMA foreign_keys = ON")

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate to v2: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmts := []string{
		`CREATE TABLE books_v2 (
			name        TEXT PRIMARY KEY,
			description TEXT,
			apr         TEXT
		)`,
		`INSERT INTO books_v2 (name, description, apr)
			SELECT name, description, CAST(apr AS TEXT) FROM books`,
		`CREATE TABLE entries_v2 (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			book        TEXT NOT NULL REFERENCES books(name),
			date        TEXT NOT NULL,
			description TEXT,
			amount      TEXT NOT NULL
		)`,
		`INSERT INTO entries_v2 (id, book, date, description, amount)
			SELECT id, book, date, description, CAST(amount AS TEXT) FROM entries`,
		`DROP TABLE entries`,
		`DROP TABLE books`,
		`ALTER TABLE books_v2 RENAME TO books`,
		`ALTER TABLE entries_v2 RENAME TO entries`,
		`CREATE INDEX IF NOT EXISTS idx_entries_book_date ON entries(book, date, id)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
	}

	if seq > 0 {
		if _, err := tx.Exec(`DELETE FROM sqlite_sequence WHERE name IN ('entries', 'entries_v2')`); err != nil {
			return fmt.Errorf("migrate to v2: reset sequence: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO sqlite_sequence (name, seq) VALUES ('entries', ?)`, seq); err != nil {
			return fmt.Errorf("migrate to v2: restore sequence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate to v2: commit: %w", err)
	}
	return nil
}
