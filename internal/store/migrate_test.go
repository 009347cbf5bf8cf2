package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// createLegacyDatabase writes a database in the old single-table layout.
func createLegacyDatabase(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE Ledger (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ledger TEXT NOT NULL,
			date TEXT NOT NULL,
			desc TEXT,
			amount REAL NOT NULL
		)`,
		`INSERT INTO Ledger (ledger, date, desc, amount) VALUES ('rent', '2024-01-01', 'jan', -1200)`,
		`INSERT INTO Ledger (ledger, date, desc, amount) VALUES ('savings', '2024-01-05', '', 250.5)`,
		`INSERT INTO Ledger (ledger, date, desc, amount) VALUES ('rent', '2024-02-01', NULL, -1200)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("legacy setup %q failed: %v", stmt, err)
		}
	}
}

func TestMigrateToV1_ImportsLegacyLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turb_tax.db")
	createLegacyDatabase(t, path)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if got := countRows(t, s, "SELECT COUNT(*) FROM books"); got != 2 {
		t.Errorf("books = %d, want 2", got)
	}

	rent, err := s.ListEntries(ctx, "rent")
	if err != nil {
		t.Fatalf("ListEntries() failed: %v", err)
	}
	if len(rent) != 2 {
		t.Fatalf("rent entries = %d, want 2", len(rent))
	}
	if rent[0].ID != 1 || rent[1].ID != 3 {
		t.Errorf("ids = %d,%d, want 1,3 (preserved)", rent[0].ID, rent[1].ID)
	}
	if rent[0].Description == nil || *rent[0].Description != "jan" {
		t.Errorf("description = %v, want %q", rent[0].Description, "jan")
	}

	savings, err := s.ListEntries(ctx, "savings")
	if err != nil {
		t.Fatalf("ListEntries() failed: %v", err)
	}
	if len(savings) != 1 || savings[0].Description != nil {
		t.Errorf("empty legacy description should import as NULL, got %+v", savings)
	}

	next := insertTestEntry(t, s, "rent", "2024-03-01", "-1200")
	if next.ID != 4 {
		t.Errorf("next id = %d, want 4", next.ID)
	}
}

func TestMigrateToV1_RunsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turb_tax.db")
	createLegacyDatabase(t, path)

	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if got := countRows(t, s, "SELECT COUNT(*) FROM entries"); got != 3 {
		t.Errorf("entries = %d, want 3 (no duplicate import)", got)
	}
}

// createV1Database writes a version 1 database whose decimal columns use
// NUMERIC affinity. Entry 3 is deleted so the sequence runs ahead of MAX(id).
func createV1Database(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE books (name TEXT PRIMARY KEY, description TEXT, apr NUMERIC)`,
		`CREATE TABLE entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			book TEXT NOT NULL REFERENCES books(name),
			date TEXT NOT NULL,
			description TEXT,
			amount NUMERIC NOT NULL
		)`,
		`INSERT INTO books (name, description, apr) VALUES ('savings', 'fund', '0.05'), ('rent', NULL, NULL)`,
		`INSERT INTO entries (book, date, description, amount) VALUES ('savings', '2024-01-01', NULL, '1000')`,
		`INSERT INTO entries (book, date, description, amount) VALUES ('rent', '2024-01-01', 'jan', '-1200.5')`,
		`INSERT INTO entries (book, date, description, amount) VALUES ('rent', '2024-02-01', NULL, '-1200')`,
		`DELETE FROM entries WHERE id = 3`,
		`PRAGMA user_version = 1`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("v1 setup %q failed: %v", stmt, err)
		}
	}
}

func columnType(t *testing.T, s *Store, table, column string) string {
	t.Helper()
	var typ string
	err := s.db.QueryRow(`SELECT type FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&typ)
	if err != nil {
		t.Fatalf("table_info(%s.%s) failed: %v", table, column, err)
	}
	return typ
}

func TestMigrateToV2_StoresDecimalsAsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turb_tax.db")
	createV1Database(t, path)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if got := columnType(t, s, "entries", "amount"); got != "TEXT" {
		t.Errorf("entries.amount type = %q, want TEXT", got)
	}
	if got := columnType(t, s, "books", "apr"); got != "TEXT" {
		t.Errorf("books.apr type = %q, want TEXT", got)
	}
	if err := s.verifyPragma("user_version", "2"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}

	b, err := s.GetBook(ctx, "savings")
	if err != nil {
		t.Fatalf("GetBook() failed: %v", err)
	}
	if !b.APR.Valid || !b.APR.Decimal.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("apr = %v, want 0.05", b.APR)
	}

	rent, err := s.ListEntries(ctx, "rent")
	if err != nil {
		t.Fatalf("ListEntries() failed: %v", err)
	}
	if len(rent) != 1 || rent[0].ID != 2 || rent[0].Amount.String() != "-1200.5" {
		t.Fatalf("rent entries = %+v, want id 2 amount -1200.5", rent)
	}

	next := insertTestEntry(t, s, "rent", "2024-03-01", "-1200")
	if next.ID != 4 {
		t.Errorf("next id = %d, want 4 (sequence preserved)", next.ID)
	}

	if _, err := s.InsertEntry(ctx, ledger.Entry{
		Book:   "missing",
		Date:   ledger.MustParseDate("2024-01-01"),
		Amount: decimal.NewFromInt(1),
	}); err == nil {
		t.Error("expected foreign key violation after rebuild")
	}
}

func TestOpen_DecimalPrecisionRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	e := insertTestEntry(t, s, "rent", "2024-01-01", "-1200")
	e.Amount = decimal.RequireFromString("12345678.123456789")
	if _, err := s.UpdateEntry(ctx, e); err != nil {
		t.Fatalf("UpdateEntry() failed: %v", err)
	}

	apr := decimal.RequireFromString("0.123456789012345678")
	if _, err := s.UpdateBookAPR(ctx, "rent", decimal.NewNullDecimal(apr)); err != nil {
		t.Fatalf("UpdateBookAPR() failed: %v", err)
	}

	got, err := s.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if got.Amount.String() != "12345678.123456789" {
		t.Errorf("amount = %s, want 12345678.123456789", got.Amount)
	}

	b, err := s.GetBook(ctx, "rent")
	if err != nil {
		t.Fatalf("GetBook() failed: %v", err)
	}
	if !b.APR.Decimal.Equal(apr) {
		t.Errorf("apr = %s, want %s", b.APR.Decimal, apr)
	}
}
