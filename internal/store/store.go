package store

import (
	"database/sql"
	"fmt"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store implements ledger.Storage over database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	return open(sqliteDialect{}, path)
}

// OpenPostgres connects to a PostgreSQL database and creates the schema
// if it does not exist.
func OpenPostgres(dsn string) (*Store, error) {
	return open(postgresDialect{}, dsn)
}

// OpenDriver opens a store for the named driver ("sqlite" or "postgres").
// For sqlite the dsn is a file path.
func OpenDriver(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, "":
		return Open(dsn)
	case DriverPostgres:
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func open(d dialect, dsn string) (*Store, error) {
	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := d.configure(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := applySchema(db, d); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, dialect: d}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	if s.dialect == nil {
		return ""
	}
	return s.dialect.name()
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB, d dialect) error {
	if _, err := db.Exec(d.schema()); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := d.migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
