package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// insertTestEntry ensures the book and inserts an entry, failing the test on error.
func insertTestEntry(t *testing.T, s *Store, book, date, amount string) ledger.Entry {
	t.Helper()
	ctx := context.Background()
	if _, err := s.EnsureBook(ctx, book); err != nil {
		t.Fatalf("EnsureBook(%q) failed: %v", book, err)
	}
	e, err := s.InsertEntry(ctx, ledger.Entry{
		Book:   book,
		Date:   ledger.MustParseDate(date),
		Amount: decimal.RequireFromString(amount),
	})
	if err != nil {
		t.Fatalf("InsertEntry() failed: %v", err)
	}
	return e
}

func countRows(t *testing.T, s *Store, query string, args ...any) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}
